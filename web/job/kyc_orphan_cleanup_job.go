// Package job contains the scheduled background jobs run by the web server's
// cron scheduler.
package job

import (
	"github.com/bazaarpanel/bazaar/logger"
	"github.com/bazaarpanel/bazaar/web/service"
)

// KycOrphanCleanupJob periodically reclaims KYC records whose owning user was
// deleted.
type KycOrphanCleanupJob struct {
	kycService   service.KycService
	tgbotService service.Tgbot
}

func NewKycOrphanCleanupJob() *KycOrphanCleanupJob {
	return new(KycOrphanCleanupJob)
}

func (j *KycOrphanCleanupJob) Run() {
	result, err := j.kycService.ReconcileOrphans()
	if err != nil {
		logger.Warning("kyc orphan cleanup failed:", err)
		return
	}
	if result.Deleted > 0 {
		logger.Infof("kyc orphan cleanup: scanned %d, deleted %d", result.Scanned, result.Deleted)
	}
	j.tgbotService.KycReportNotify(*result)
}
