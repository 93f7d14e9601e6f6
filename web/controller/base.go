// Package controller provides HTTP request handlers for the bazaar web panel.
// It handles routing, authentication, and the JSON API for listings, referrals,
// settings, and server status.
package controller

import (
	"net/http"
	"strings"

	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/logger"
	"github.com/bazaarpanel/bazaar/web/locale"
	"github.com/bazaarpanel/bazaar/web/service"
	"github.com/bazaarpanel/bazaar/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides the authentication gate shared by all controllers.
type BaseController struct {
	tokenService service.TokenService
}

// checkLogin verifies the caller's identity before the request proceeds.
// A cookie session wins; failing that, a bearer token from the Authorization
// header or the accessToken cookie is accepted. Unauthenticated API calls
// get a 401 envelope, browser navigation is sent back to the login page.
func (a *BaseController) checkLogin(c *gin.Context) {
	if session.IsLogin(c) {
		c.Next()
		return
	}

	if token := bearerToken(c); token != "" {
		if identity, err := a.tokenService.Parse(token); err == nil {
			c.Set("tokenIdentity", identity)
			c.Next()
			return
		}
	}

	if isAjax(c) {
		pureJsonMsg(c, http.StatusUnauthorized, false, I18nWeb(c, "pages.login.loginAgain"))
	} else {
		c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
	}
	c.Abort()
}

// loginIdentity resolves the caller's identity from the session or, when the
// request was admitted on a bearer token, from the parsed claims.
func loginIdentity(c *gin.Context) *model.Identity {
	if identity := session.GetLoginIdentity(c); identity != nil {
		return identity
	}
	if obj, ok := c.Get("tokenIdentity"); ok {
		if identity, ok := obj.(*model.Identity); ok {
			return identity
		}
	}
	return nil
}

// bearerToken extracts a bearer credential from the request, preferring the
// Authorization header over the accessToken cookie.
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := c.Cookie("accessToken"); err == nil {
		return cookie
	}
	return ""
}

// I18nWeb retrieves an internationalized message for the web interface based on the current locale.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	anyfunc, funcExists := c.Get("I18n")
	if !funcExists {
		logger.Warning("I18n function not exists in gin context!")
		return ""
	}
	i18nFunc, _ := anyfunc.(func(i18nType locale.I18nType, key string, keyParams ...string) string)
	msg := i18nFunc(locale.Web, name, params...)
	return msg
}
