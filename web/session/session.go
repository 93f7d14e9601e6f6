// Package session stores the authenticated identity in the cookie session.
// Only the minimized identity is persisted, never the credential record.
package session

import (
	"encoding/gob"

	"github.com/bazaarpanel/bazaar/database/model"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const loginIdentity = "LOGIN_IDENTITY"

func init() {
	gob.Register(model.Identity{})
}

func SetLoginIdentity(c *gin.Context, identity *model.Identity) error {
	s := sessions.Default(c)
	s.Set(loginIdentity, *identity)
	return s.Save()
}

func SetMaxAge(c *gin.Context, maxAge int) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
	return s.Save()
}

func GetLoginIdentity(c *gin.Context) *model.Identity {
	s := sessions.Default(c)
	if obj := s.Get(loginIdentity); obj != nil {
		if identity, ok := obj.(model.Identity); ok {
			return &identity
		}
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetLoginIdentity(c) != nil
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	if err := s.Save(); err != nil {
		return err
	}
	c.SetCookie("bazaar", "", -1, "/", "", false, true)
	return nil
}
