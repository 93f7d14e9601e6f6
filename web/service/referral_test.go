package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bazaarpanel/bazaar/database/model"

	"github.com/stretchr/testify/assert"
)

func TestGetOrCreateReferral(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	service := ReferralService{}

	user, err := userService.CreateUser("ref@example.com", "R", "pw123456", model.RoleUser)
	assert.NoError(t, err)

	first, err := service.GetOrCreateReferral(user.Id)
	assert.NoError(t, err)
	assert.NotEmpty(t, first.Code)

	// A second call returns the same record instead of minting a new code.
	second, err := service.GetOrCreateReferral(user.Id)
	assert.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, first.Code, second.Code)
}

func TestTrackVisitAndSignup(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	service := ReferralService{}

	user, err := userService.CreateUser("ref@example.com", "R", "pw123456", model.RoleUser)
	assert.NoError(t, err)
	referral, err := service.GetOrCreateReferral(user.Id)
	assert.NoError(t, err)

	service.TrackVisit(referral.Code)
	service.TrackVisit(referral.Code)
	service.TrackSignup(referral.Code)
	// Unknown codes are ignored.
	service.TrackVisit("no-such-code")

	got, err := service.GetByCode(referral.Code)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, got.Visits)
	assert.EqualValues(t, 1, got.Signups)
}

func TestFetchUpstreamRelaysResponse(t *testing.T) {
	var gotCookie, gotAuth, gotCache string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotAuth = r.Header.Get("Authorization")
		gotCache = r.Header.Get("Cache-Control")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()
	t.Setenv("BAZAAR_BACKEND_URL", srv.URL)

	service := ReferralService{}
	result, err := service.FetchUpstream("/api/referral/dashboard", "sid=abc123", "tok-456")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Status)
	assert.Equal(t, `{"ok":true}`, string(result.Body))
	assert.Equal(t, "sid=abc123", gotCookie)
	assert.Equal(t, "Bearer tok-456", gotAuth)
	assert.Equal(t, "no-store", gotCache)
}

func TestFetchUpstreamRefusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"internal detail"}`, http.StatusForbidden)
	}))
	defer srv.Close()
	t.Setenv("BAZAAR_BACKEND_URL", srv.URL)

	service := ReferralService{}
	result, err := service.FetchUpstream("/api/referral/dashboard", "", "")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, result.Status)
}

func TestFetchUpstreamTransportFault(t *testing.T) {
	// A closed server gives a connection refusal.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	t.Setenv("BAZAAR_BACKEND_URL", url)

	service := ReferralService{}
	_, err := service.FetchUpstream("/api/referral/dashboard", "", "")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUpstreamTimeout)
}

func TestFetchUpstreamTimeout(t *testing.T) {
	oldTimeout := upstreamTimeout
	upstreamTimeout = 50 * time.Millisecond
	defer func() { upstreamTimeout = oldTimeout }()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()
	t.Setenv("BAZAAR_BACKEND_URL", srv.URL)

	service := ReferralService{}
	_, err := service.FetchUpstream("/api/referral/dashboard", "", "")
	assert.ErrorIs(t, err, ErrUpstreamTimeout)
}

func TestReferralQR(t *testing.T) {
	service := ReferralService{}
	png, err := service.ReferralQR("https://bazaar.example.com/r/abc123")
	assert.NoError(t, err)
	// PNG magic bytes.
	assert.True(t, len(png) > 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
