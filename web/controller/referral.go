package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/bazaarpanel/bazaar/util/metrics"
	"github.com/bazaarpanel/bazaar/web/service"

	"github.com/gin-gonic/gin"
)

// ReferralController serves the authenticated referral program endpoints. The
// dashboard is relayed from the backend service rather than assembled here.
type ReferralController struct {
	referralService service.ReferralService
}

// NewReferralController creates a new ReferralController and sets up its routes.
func NewReferralController(g *gin.RouterGroup) *ReferralController {
	a := &ReferralController{}
	a.initRouter(g)
	return a
}

func (a *ReferralController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/referral")

	g.GET("/my", a.getMyReferral)
	g.GET("/qr", a.getReferralQR)
	g.GET("/dashboard", a.getDashboard)
}

// getMyReferral returns the caller's referral record, creating it on first use.
func (a *ReferralController) getMyReferral(c *gin.Context) {
	identity := loginIdentity(c)
	referral, err := a.referralService.GetOrCreateReferral(identity.Id)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "get"), err)
		return
	}
	jsonObj(c, gin.H{
		"referral": referral,
		"link":     a.referralService.ReferralLink(referral.Code, c.Request.Host),
	}, nil)
}

// getReferralQR renders the caller's referral link as a PNG QR code.
func (a *ReferralController) getReferralQR(c *gin.Context) {
	identity := loginIdentity(c)
	referral, err := a.referralService.GetOrCreateReferral(identity.Id)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "get"), err)
		return
	}
	png, err := a.referralService.ReferralQR(a.referralService.ReferralLink(referral.Code, c.Request.Host))
	if err != nil {
		jsonMsg(c, I18nWeb(c, "get"), err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// getDashboard relays the caller's referral dashboard from the backend,
// forwarding the caller's cookies and bearer token.
func (a *ReferralController) getDashboard(c *gin.Context) {
	relayUpstream(c, &a.referralService, "/api/referral/dashboard", "dashboard",
		c.GetHeader("Cookie"), bearerToken(c))
}

// PublicReferralController serves the unauthenticated referral surface:
// the tracking redirect behind shared links and the public leaderboard.
type PublicReferralController struct {
	referralService service.ReferralService
}

// NewPublicReferralController creates the controller for the public referral routes.
func NewPublicReferralController(g *gin.RouterGroup) *PublicReferralController {
	a := &PublicReferralController{}
	a.initRouter(g)
	return a
}

func (a *PublicReferralController) initRouter(g *gin.RouterGroup) {
	g.GET("/r/:code", a.trackVisit)
	g.GET("/referral/leaderboard", a.getLeaderboard)
}

// trackVisit counts the visit and sends the visitor on to the storefront with
// the code preserved in the query string.
func (a *PublicReferralController) trackVisit(c *gin.Context) {
	code := c.Param("code")
	a.referralService.TrackVisit(code)
	c.Redirect(http.StatusFound, "/?ref="+code)
}

// getLeaderboard relays the public leaderboard from the backend. No caller
// credentials are forwarded on this route.
func (a *PublicReferralController) getLeaderboard(c *gin.Context) {
	relayUpstream(c, &a.referralService, "/api/referral/leaderboard", "leaderboard", "", "")
}

// relayUpstream forwards a backend GET and relays the response. Backend
// refusals keep their status code but the body is replaced with a fixed
// failure envelope so upstream error detail never leaks to the browser.
// Transport faults map to 500 and deadline overruns to 504.
func relayUpstream(c *gin.Context, svc *service.ReferralService, path, endpoint, cookieHeader, bearer string) {
	start := time.Now()
	result, err := svc.FetchUpstream(path, cookieHeader, bearer)
	metrics.ProxyDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, service.ErrUpstreamTimeout) {
			metrics.ProxyRequests.WithLabelValues(endpoint, "timeout").Inc()
			pureJsonMsg(c, http.StatusGatewayTimeout, false, I18nWeb(c, "pages.referral.toasts.fetchFailed"))
			return
		}
		metrics.ProxyRequests.WithLabelValues(endpoint, "error").Inc()
		pureJsonMsg(c, http.StatusInternalServerError, false, I18nWeb(c, "pages.referral.toasts.fetchFailed"))
		return
	}

	c.Header("Cache-Control", "no-store")
	if result.Status < 200 || result.Status > 299 {
		metrics.ProxyRequests.WithLabelValues(endpoint, "refused").Inc()
		pureJsonMsg(c, result.Status, false, I18nWeb(c, "pages.referral.toasts.fetchFailed"))
		return
	}

	metrics.ProxyRequests.WithLabelValues(endpoint, "ok").Inc()
	c.Data(http.StatusOK, "application/json", result.Body)
}
