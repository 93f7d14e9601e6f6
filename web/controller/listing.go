package controller

import (
	"errors"
	"strconv"

	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/logger"
	"github.com/bazaarpanel/bazaar/web/middleware"
	"github.com/bazaarpanel/bazaar/web/service"

	"github.com/gin-gonic/gin"
)

// ListingController handles storefront browsing, the vendor catalog and the
// buyer's saved listings.
type ListingController struct {
	listingService service.ListingService
	settingService service.SettingService
}

// NewListingController creates a new ListingController and sets up its routes.
func NewListingController(g *gin.RouterGroup) *ListingController {
	a := &ListingController{}
	a.initRouter(g)
	return a
}

func (a *ListingController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/listing")

	g.GET("/list", a.getListings)
	g.GET("/get/:id", a.getListing)
	g.GET("/saved", a.getSavedListings)

	g.POST("/save/:id", a.saveListing)
	g.POST("/unsave/:id", a.unsaveListing)

	vendor := g.Group("/vendor", middleware.RoleRequired(model.RoleVendor, model.RoleAdmin))
	vendor.GET("/list", a.getVendorListings)
	vendor.POST("/add", a.addListing)
	vendor.POST("/update/:id", a.updateListing)
	vendor.POST("/del/:id", a.delListing)
}

// getListings returns the enabled listings for the storefront.
func (a *ListingController) getListings(c *gin.Context) {
	pageSize, err := a.settingService.GetPageSize()
	if err != nil {
		logger.Warning("Unable to get page size from DB")
	}
	listings, err := a.listingService.GetListings(true, pageSize)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.listings.toasts.obtain"), err)
		return
	}
	jsonObj(c, listings, nil)
}

// getListing returns one listing together with its vendor identity. A listing
// whose vendor account has been removed still renders, just without a vendor.
func (a *ListingController) getListing(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, I18nWeb(c, "get"), err)
		return
	}
	listing, err := a.listingService.GetListingWithVendor(id)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			jsonMsg(c, I18nWeb(c, "pages.listings.toasts.notFound"), err)
			return
		}
		jsonMsg(c, I18nWeb(c, "pages.listings.toasts.obtain"), err)
		return
	}
	jsonObj(c, listing, nil)
}

func (a *ListingController) getSavedListings(c *gin.Context) {
	identity := loginIdentity(c)
	listings, err := a.listingService.GetSavedListings(identity.Id)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.listings.toasts.obtain"), err)
		return
	}
	jsonObj(c, listings, nil)
}

func (a *ListingController) saveListing(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, I18nWeb(c, "get"), err)
		return
	}
	identity := loginIdentity(c)
	err = a.listingService.SaveListing(identity.Id, id)
	jsonMsg(c, I18nWeb(c, "pages.listings.toasts.saved"), err)
}

func (a *ListingController) unsaveListing(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, I18nWeb(c, "get"), err)
		return
	}
	identity := loginIdentity(c)
	err = a.listingService.UnsaveListing(identity.Id, id)
	jsonMsg(c, I18nWeb(c, "pages.listings.toasts.removed"), err)
}

// getVendorListings returns the caller's own catalog, disabled entries included.
func (a *ListingController) getVendorListings(c *gin.Context) {
	identity := loginIdentity(c)
	listings, err := a.listingService.GetVendorListings(identity.Id)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.listings.toasts.obtain"), err)
		return
	}
	jsonObj(c, listings, nil)
}

func (a *ListingController) addListing(c *gin.Context) {
	listing := &model.Listing{}
	if err := c.ShouldBind(listing); err != nil {
		logger.Errorf("Failed to bind listing data: %v", err)
		jsonMsg(c, I18nWeb(c, "pages.listings.toasts.createSuccess"), err)
		return
	}
	identity := loginIdentity(c)
	listing.VendorId = identity.Id
	err := a.listingService.AddListing(listing)
	jsonMsgObj(c, I18nWeb(c, "pages.listings.toasts.createSuccess"), listing, err)
}

// updateListing rewrites one of the caller's listings. Ownership is enforced
// in the service, so a vendor cannot touch another vendor's catalog.
func (a *ListingController) updateListing(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, I18nWeb(c, "get"), err)
		return
	}
	listing := &model.Listing{}
	if err := c.ShouldBind(listing); err != nil {
		jsonMsg(c, I18nWeb(c, "pages.listings.toasts.updateSuccess"), err)
		return
	}
	listing.Id = id
	identity := loginIdentity(c)
	err = a.listingService.UpdateListing(identity.Id, listing)
	jsonMsg(c, I18nWeb(c, "pages.listings.toasts.updateSuccess"), err)
}

func (a *ListingController) delListing(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, I18nWeb(c, "get"), err)
		return
	}
	identity := loginIdentity(c)
	err = a.listingService.DelListing(identity.Id, id)
	jsonMsg(c, I18nWeb(c, "pages.listings.toasts.deleteSuccess"), err)
}
