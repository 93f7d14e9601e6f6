package controller

import (
	"errors"
	"time"

	"github.com/bazaarpanel/bazaar/util/crypto"
	"github.com/bazaarpanel/bazaar/web/entity"
	"github.com/bazaarpanel/bazaar/web/service"

	"github.com/gin-gonic/gin"
)

// updateUserForm represents the form for updating account credentials.
type updateUserForm struct {
	OldEmail    string `json:"oldEmail" form:"oldEmail"`
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewEmail    string `json:"newEmail" form:"newEmail"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

// SettingController handles settings and account management operations.
type SettingController struct {
	settingService service.SettingService
	userService    service.UserService
	panelService   service.PanelService
}

// NewSettingController creates a new SettingController and initializes its routes.
func NewSettingController(g *gin.RouterGroup) *SettingController {
	a := &SettingController{}
	a.initRouter(g)
	return a
}

func (a *SettingController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/setting")

	g.POST("/all", a.getAllSetting)
	g.POST("/update", a.updateSetting)
	g.POST("/updateUser", a.updateUser)
	g.POST("/restartPanel", a.restartPanel)
}

// getAllSetting retrieves all current settings.
func (a *SettingController) getAllSetting(c *gin.Context) {
	allSetting, err := a.settingService.GetAllSetting()
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.settings.toasts.getSettings"), err)
		return
	}
	jsonObj(c, allSetting, nil)
}

// updateSetting updates all settings with the provided data.
func (a *SettingController) updateSetting(c *gin.Context) {
	allSetting := &entity.AllSetting{}
	err := c.ShouldBind(allSetting)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.settings.toasts.modifySettings"), err)
		return
	}
	err = a.settingService.UpdateAllSetting(allSetting)
	jsonMsg(c, I18nWeb(c, "pages.settings.toasts.modifySettings"), err)
}

// updateUser changes the caller's email and password after re-verifying the
// current credentials.
func (a *SettingController) updateUser(c *gin.Context) {
	form := &updateUserForm{}
	err := c.ShouldBind(form)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.settings.toasts.modifyUser"), err)
		return
	}

	identity := loginIdentity(c)
	user, err := a.userService.GetUser(identity.Id)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.settings.toasts.modifyUser"), err)
		return
	}
	if user.External {
		jsonMsg(c, I18nWeb(c, "pages.settings.toasts.modifyUser"), errors.New("externally managed account"))
		return
	}
	if user.Email != form.OldEmail || !crypto.CheckPasswordHash(user.Password, form.OldPassword) {
		jsonMsg(c, I18nWeb(c, "pages.settings.toasts.originalUserPassIncorrect"), errors.New("invalid credentials"))
		return
	}
	if form.NewEmail == "" || form.NewPassword == "" {
		jsonMsg(c, I18nWeb(c, "pages.settings.toasts.userPassMustBeNotEmpty"), errors.New("empty credentials"))
		return
	}

	err = a.userService.UpdateUser(identity.Id, form.NewEmail, form.NewPassword)
	jsonMsg(c, I18nWeb(c, "pages.settings.toasts.modifyUser"), err)
}

// restartPanel restarts the panel service after a delay.
func (a *SettingController) restartPanel(c *gin.Context) {
	err := a.panelService.RestartPanel(time.Second * 3)
	jsonMsg(c, I18nWeb(c, "pages.settings.restartPanelSuccess"), err)
}
