package controller

import (
	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/web/middleware"

	"github.com/gin-gonic/gin"
)

// PanelController groups the authenticated panel routes and wires the
// sub-controllers behind the login gate.
type PanelController struct {
	BaseController

	listingController  *ListingController
	referralController *ReferralController
	settingController  *SettingController
	serverController   *ServerController
	kycController      *KycController
}

// NewPanelController creates a new PanelController and initializes its routes.
func NewPanelController(g *gin.RouterGroup) *PanelController {
	a := &PanelController{}
	a.initRouter(g)
	return a
}

func (a *PanelController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/panel")
	g.Use(a.checkLogin)

	g.GET("/api/me", a.me)

	a.listingController = NewListingController(g)
	a.referralController = NewReferralController(g)
	a.kycController = NewKycController(g)

	admin := g.Group("/", middleware.RoleRequired(model.RoleAdmin))
	a.settingController = NewSettingController(admin)
	a.serverController = NewServerController(admin)
}

// me returns the caller's current identity. Clients treat this as the source
// of truth for who is logged in; anything they cached locally is only a hint.
func (a *PanelController) me(c *gin.Context) {
	jsonObj(c, loginIdentity(c), nil)
}
