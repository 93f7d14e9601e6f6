package job

import (
	"github.com/bazaarpanel/bazaar/logger"
	"github.com/bazaarpanel/bazaar/web/service"
)

// ReferralInformJob pushes accumulated referral counters to the configured
// external endpoint.
type ReferralInformJob struct {
	referralService service.ReferralService
}

func NewReferralInformJob() *ReferralInformJob {
	return new(ReferralInformJob)
}

func (j *ReferralInformJob) Run() {
	if err := j.referralService.InformExternal(); err != nil {
		logger.Warning("referral inform failed:", err)
	}
}
