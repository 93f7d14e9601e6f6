package controller

import (
	"errors"
	"net/http"
	"text/template"

	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/logger"
	"github.com/bazaarpanel/bazaar/util/metrics"
	"github.com/bazaarpanel/bazaar/web/service"
	"github.com/bazaarpanel/bazaar/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm represents the login request structure.
type LoginForm struct {
	Email         string `json:"email" form:"email"`
	Password      string `json:"password" form:"password"`
	TwoFactorCode string `json:"twoFactorCode" form:"twoFactorCode"`
}

// RegisterForm represents the self-service signup request.
type RegisterForm struct {
	Email    string `json:"email" form:"email"`
	Name     string `json:"name" form:"name"`
	Password string `json:"password" form:"password"`
	RefCode  string `json:"refCode" form:"refCode"`
}

// IndexController handles the login, logout and signup routes.
type IndexController struct {
	BaseController

	settingService  service.SettingService
	userService     service.UserService
	referralService service.ReferralService
	tgbot           service.Tgbot
}

// NewIndexController creates a new IndexController and initializes its routes.
func NewIndexController(g *gin.RouterGroup) *IndexController {
	a := &IndexController{}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/logout", a.logout)

	g.POST("/login", a.login)
	g.POST("/register", a.register)
	g.POST("/getTwoFactorEnable", a.getTwoFactorEnable)
}

// login authenticates the caller and establishes both the cookie session and
// the bearer token used for proxied backend calls. Unknown accounts and wrong
// passwords share one response so the endpoint cannot be used to probe emails.
func (a *IndexController) login(c *gin.Context) {
	var form LoginForm

	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.invalidFormData"))
		return
	}
	if form.Email == "" {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.emptyEmail"))
		return
	}
	if form.Password == "" {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.emptyPassword"))
		return
	}

	identity, err := a.userService.CheckUser(form.Email, form.Password, form.TwoFactorCode)
	safeEmail := template.HTMLEscapeString(form.Email)

	if err != nil {
		if errors.Is(err, service.ErrVerifierUnavailable) {
			metrics.LoginAttempts.WithLabelValues("error").Inc()
			logger.Warning("credential verification unavailable:", err)
			jsonMsg(c, I18nWeb(c, "fail"), err)
			return
		}
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		logger.Warningf("wrong credentials for %q, IP: %q", safeEmail, getRemoteIp(c))
		a.tgbot.UserLoginNotify(safeEmail, getRemoteIp(c), service.LoginFail)
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.wrongEmailOrPassword"))
		return
	}

	sessionMaxAge, err := a.settingService.GetSessionMaxAge()
	if err != nil {
		logger.Warning("Unable to get session's max age from DB")
	}

	if err := session.SetMaxAge(c, sessionMaxAge*60); err != nil {
		logger.Warning("Unable to set session's max age:", err)
	}
	if err := session.SetLoginIdentity(c, identity); err != nil {
		logger.Warning("Unable to save session:", err)
		return
	}

	token, err := a.tokenService.Issue(identity)
	if err != nil {
		logger.Warning("Unable to issue access token:", err)
	} else {
		c.SetCookie("accessToken", token, sessionMaxAge*60, "/", "", false, true)
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	logger.Infof("%s logged in successfully, IP: %s", safeEmail, getRemoteIp(c))
	a.tgbot.UserLoginNotify(safeEmail, getRemoteIp(c), service.LoginSuccess)
	jsonMsg(c, I18nWeb(c, "pages.login.toasts.successLogin"), nil)
}

// register creates a marketplace account, crediting the referral code when
// one was carried along.
func (a *IndexController) register(c *gin.Context) {
	var form RegisterForm

	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.invalidFormData"))
		return
	}
	if form.Email == "" {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.emptyEmail"))
		return
	}
	if form.Password == "" {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.emptyPassword"))
		return
	}

	_, err := a.userService.CreateUser(form.Email, form.Name, form.Password, model.RoleUser)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "fail"), err)
		return
	}
	if form.RefCode != "" {
		a.referralService.TrackSignup(form.RefCode)
	}
	jsonMsg(c, I18nWeb(c, "success"), nil)
}

// logout clears the session and redirects to the login page.
func (a *IndexController) logout(c *gin.Context) {
	if identity := session.GetLoginIdentity(c); identity != nil {
		logger.Infof("%s logged out successfully", identity.Email)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to clear session:", err)
	}
	c.SetCookie("accessToken", "", -1, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
}

// getTwoFactorEnable retrieves the current status of two-factor authentication.
func (a *IndexController) getTwoFactorEnable(c *gin.Context) {
	status, err := a.settingService.GetTwoFactorEnable()
	if err == nil {
		jsonObj(c, status, nil)
	}
}
