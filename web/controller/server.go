package controller

import (
	"github.com/bazaarpanel/bazaar/web/service"

	"github.com/gin-gonic/gin"
)

// ServerController exposes host status and application logs to admins.
type ServerController struct {
	serverService service.ServerService
	kycService    service.KycService

	lastStatus *service.Status
}

// NewServerController creates a new ServerController and sets up its routes.
func NewServerController(g *gin.RouterGroup) *ServerController {
	a := &ServerController{}
	a.initRouter(g)
	return a
}

func (a *ServerController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/server")

	g.POST("/status", a.status)
	g.POST("/logs/:count", a.getLogs)
	g.POST("/kycReconcile", a.kycReconcile)
}

func (a *ServerController) refreshStatus() {
	a.lastStatus = a.serverService.GetStatus(a.lastStatus)
}

func (a *ServerController) status(c *gin.Context) {
	a.refreshStatus()
	jsonObj(c, a.lastStatus, nil)
}

func (a *ServerController) getLogs(c *gin.Context) {
	count := c.Param("count")
	level := c.PostForm("level")
	logs := a.serverService.GetLogs(count, level)
	jsonObj(c, logs, nil)
}

// kycReconcile runs the orphan cleanup on demand instead of waiting for the
// scheduled job.
func (a *ServerController) kycReconcile(c *gin.Context) {
	result, err := a.kycService.ReconcileOrphans()
	jsonMsgObj(c, I18nWeb(c, "success"), result, err)
}
