package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bazaarpanel/bazaar/config"
	"github.com/bazaarpanel/bazaar/database"
	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/logger"

	"github.com/doyensec/safeurl"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

// ErrUpstreamTimeout marks an outbound call that exceeded the proxy timeout,
// distinct from other transport faults.
var ErrUpstreamTimeout = errors.New("upstream request timed out")

var upstreamTimeout = 10 * time.Second

// maxUpstreamBody caps relayed upstream payloads.
const maxUpstreamBody = 4 << 20

type ReferralService struct {
	settingService SettingService
}

// UpstreamResult is the relayed outcome of a proxied backend call.
type UpstreamResult struct {
	Status int
	Body   []byte
}

func (s *ReferralService) GetOrCreateReferral(userId int) (*model.Referral, error) {
	db := database.GetDB()
	referral := &model.Referral{}
	err := db.Model(model.Referral{}).Where("user_id = ?", userId).First(referral).Error
	if err == nil {
		return referral, nil
	}
	if !database.IsNotFound(err) {
		return nil, err
	}

	referral = &model.Referral{
		UserId: userId,
		Code:   strings.Split(uuid.NewString(), "-")[0],
	}
	if err := db.Create(referral).Error; err != nil {
		return nil, err
	}
	return referral, nil
}

func (s *ReferralService) GetByCode(code string) (*model.Referral, error) {
	db := database.GetDB()
	referral := &model.Referral{}
	err := db.Model(model.Referral{}).Where("code = ?", code).First(referral).Error
	if err != nil {
		return nil, err
	}
	return referral, nil
}

// TrackVisit bumps the visit counter of the code. Unknown codes are ignored
// so the tracking endpoint stays unguessable-silent.
func (s *ReferralService) TrackVisit(code string) {
	db := database.GetDB()
	result := db.Model(model.Referral{}).
		Where("code = ?", code).
		Update("visits", gorm.Expr("visits + 1"))
	if result.Error != nil {
		logger.Warning("track referral visit err:", result.Error)
	}
}

// TrackSignup credits a signup to the code.
func (s *ReferralService) TrackSignup(code string) {
	db := database.GetDB()
	result := db.Model(model.Referral{}).
		Where("code = ?", code).
		Update("signups", gorm.Expr("signups + 1"))
	if result.Error != nil {
		logger.Warning("track referral signup err:", result.Error)
	}
}

// ReferralLink builds the outward link for a code, preferring the configured
// link base over the request host.
func (s *ReferralService) ReferralLink(code, fallbackHost string) string {
	base, err := s.settingService.GetReferralLinkBase()
	if err != nil || base == "" {
		base = "https://" + fallbackHost
	}
	return fmt.Sprintf("%s/r/%s", strings.TrimSuffix(base, "/"), code)
}

// ReferralQR renders the referral link as a PNG QR code.
func (s *ReferralService) ReferralQR(link string) ([]byte, error) {
	return qrcode.Encode(link, qrcode.Medium, 256)
}

// FetchUpstream forwards a GET to the configured backend, relaying the
// incoming cookie header verbatim and attaching the bearer token when one
// exists. The outbound call carries a bounded timeout and disables caching.
// A non-2xx upstream status is returned as a result, not an error; transport
// faults come back as errors (ErrUpstreamTimeout for deadline overruns).
func (s *ReferralService) FetchUpstream(path, cookieHeader, bearer string) (*UpstreamResult, error) {
	target := config.GetBackendBaseURL() + path

	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("Cache-Control", "no-store")

	client := &http.Client{
		Timeout: upstreamTimeout,
	}

	resp, err := client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, ErrUpstreamTimeout
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return nil, err
	}

	return &UpstreamResult{
		Status: resp.StatusCode,
		Body:   body,
	}, nil
}

// referralEvent is the payload pushed to the external inform endpoint.
type referralEvent struct {
	Code    string `json:"code"`
	Visits  int64  `json:"visits"`
	Signups int64  `json:"signups"`
}

// InformExternal pushes current referral counters to the settings-configured
// inform URI. The URI is operator-supplied, so the outbound client refuses
// private and link-local destinations.
func (s *ReferralService) InformExternal() error {
	enabled, err := s.settingService.GetReferralInformEnable()
	if err != nil || !enabled {
		return err
	}
	informURI, err := s.settingService.GetReferralInformURI()
	if err != nil {
		return err
	}
	if informURI == "" {
		return nil
	}

	db := database.GetDB()
	referrals := make([]*model.Referral, 0)
	if err := db.Model(model.Referral{}).Find(&referrals).Error; err != nil {
		return err
	}

	events := make([]referralEvent, 0, len(referrals))
	for _, r := range referrals {
		events = append(events, referralEvent{
			Code:    r.Code,
			Visits:  r.Visits,
			Signups: r.Signups,
		})
	}

	payload, err := json.Marshal(events)
	if err != nil {
		return err
	}

	cfg := safeurl.GetConfigBuilder().
		SetTimeout(upstreamTimeout).
		SetAllowedSchemes("http", "https").
		Build()
	client := safeurl.Client(cfg).Client

	resp, err := client.Post(informURI, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("inform endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
