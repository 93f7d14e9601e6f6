package controller

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/bazaarpanel/bazaar/database"
	"github.com/bazaarpanel/bazaar/logger"

	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.InitLogger(logging.DEBUG)
	dbPath := "test.db"
	os.Remove(dbPath)
	if err := database.InitDB(dbPath); err != nil {
		panic(err)
	}
	code := m.Run()
	if db, err := database.GetDB().DB(); err == nil {
		db.Close()
	}
	os.Remove(dbPath)
	os.Exit(code)
}

func newProxyRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewPublicReferralController(engine.Group("/"))
	return engine
}

func TestLeaderboardRelaysUpstreamStatusWithGenericBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"secret upstream detail"}`, http.StatusForbidden)
	}))
	defer upstream.Close()
	t.Setenv("BAZAAR_BACKEND_URL", upstream.URL)

	router := newProxyRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/referral/leaderboard", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	// The upstream error body must never reach the client.
	assert.NotContains(t, w.Body.String(), "secret upstream detail")
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestLeaderboardRelaysSuccessBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"leaders":[]}`))
	}))
	defer upstream.Close()
	t.Setenv("BAZAAR_BACKEND_URL", upstream.URL)

	router := newProxyRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/referral/leaderboard", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"leaders":[]}`, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestLeaderboardUpstreamDownIs500(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := upstream.URL
	upstream.Close()
	t.Setenv("BAZAAR_BACKEND_URL", url)

	router := newProxyRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/referral/leaderboard", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestTrackVisitRedirects(t *testing.T) {
	router := newProxyRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/r/abc123", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?ref=abc123", w.Header().Get("Location"))
}
