package controller

import (
	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/web/service"

	"github.com/gin-gonic/gin"
)

// kycSubmitForm carries a verification document submission.
type kycSubmitForm struct {
	Document string `json:"document" form:"document"`
}

// KycController lets users submit verification documents and review their
// submission history.
type KycController struct {
	kycService service.KycService
}

// NewKycController creates a new KycController and sets up its routes.
func NewKycController(g *gin.RouterGroup) *KycController {
	a := &KycController{}
	a.initRouter(g)
	return a
}

func (a *KycController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/kyc")

	g.GET("/list", a.getRecords)
	g.POST("/submit", a.submit)
}

func (a *KycController) getRecords(c *gin.Context) {
	identity := loginIdentity(c)
	records, err := a.kycService.GetRecordsForUser(identity.Id)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "get"), err)
		return
	}
	jsonObj(c, records, nil)
}

func (a *KycController) submit(c *gin.Context) {
	form := &kycSubmitForm{}
	if err := c.ShouldBind(form); err != nil {
		jsonMsg(c, I18nWeb(c, "fail"), err)
		return
	}
	identity := loginIdentity(c)
	record := &model.KycRecord{
		UserId:   identity.Id,
		Status:   model.KycPending,
		Document: form.Document,
	}
	err := a.kycService.AddRecord(record)
	jsonMsgObj(c, I18nWeb(c, "save"), record, err)
}
