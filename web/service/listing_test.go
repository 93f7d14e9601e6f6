package service

import (
	"testing"

	"github.com/bazaarpanel/bazaar/database"
	"github.com/bazaarpanel/bazaar/database/model"

	"github.com/stretchr/testify/assert"
)

func TestListingCRUDOwnership(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	service := ListingService{}

	vendor, err := userService.CreateUser("v1@example.com", "V1", "pw123456", model.RoleVendor)
	assert.NoError(t, err)
	other, err := userService.CreateUser("v2@example.com", "V2", "pw123456", model.RoleVendor)
	assert.NoError(t, err)

	listing := &model.Listing{
		VendorId:   vendor.Id,
		Title:      "Handmade mug",
		PriceCents: 1500,
		Enable:     true,
	}
	assert.NoError(t, service.AddListing(listing))
	assert.NotZero(t, listing.Id)
	assert.NotEmpty(t, listing.Sid)

	// Another vendor must not be able to update or delete it.
	listing.Title = "Hijacked"
	err = service.UpdateListing(other.Id, listing)
	assert.ErrorIs(t, err, ErrListingNotFound)

	err = service.DelListing(other.Id, listing.Id)
	assert.ErrorIs(t, err, ErrListingNotFound)

	listing.Title = "Handmade mug v2"
	assert.NoError(t, service.UpdateListing(vendor.Id, listing))

	got, err := service.GetListing(listing.Id)
	assert.NoError(t, err)
	assert.Equal(t, "Handmade mug v2", got.Title)

	assert.NoError(t, service.DelListing(vendor.Id, listing.Id))
	_, err = service.GetListing(listing.Id)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestGetListingWithVendor(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	service := ListingService{}

	vendor, err := userService.CreateUser("v@example.com", "V", "pw123456", model.RoleVendor)
	assert.NoError(t, err)

	listing := &model.Listing{VendorId: vendor.Id, Title: "Lamp", Enable: true}
	assert.NoError(t, service.AddListing(listing))

	withVendor, err := service.GetListingWithVendor(listing.Id)
	assert.NoError(t, err)
	if assert.NotNil(t, withVendor.Vendor) {
		assert.Equal(t, vendor.Id, withVendor.Vendor.Id)
	}

	// Delete the owner out from under the listing. The listing still
	// renders, just without a vendor.
	db := database.GetDB()
	assert.NoError(t, db.Delete(model.User{}, vendor.Id).Error)

	withVendor, err = service.GetListingWithVendor(listing.Id)
	assert.NoError(t, err)
	assert.Nil(t, withVendor.Vendor)
	assert.Equal(t, listing.Id, withVendor.Listing.Id)
}

func TestSavedListings(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	service := ListingService{}

	buyer, err := userService.CreateUser("buyer@example.com", "B", "pw123456", model.RoleUser)
	assert.NoError(t, err)
	vendor, err := userService.CreateUser("seller@example.com", "S", "pw123456", model.RoleVendor)
	assert.NoError(t, err)

	listing := &model.Listing{VendorId: vendor.Id, Title: "Chair", Enable: true}
	assert.NoError(t, service.AddListing(listing))

	assert.NoError(t, service.SaveListing(buyer.Id, listing.Id))
	// Saving twice is a no-op, not an error.
	assert.NoError(t, service.SaveListing(buyer.Id, listing.Id))

	saved, err := service.GetSavedListings(buyer.Id)
	assert.NoError(t, err)
	assert.Len(t, saved, 1)

	// Saving a nonexistent listing is rejected.
	err = service.SaveListing(buyer.Id, 4242)
	assert.ErrorIs(t, err, ErrListingNotFound)

	assert.NoError(t, service.UnsaveListing(buyer.Id, listing.Id))
	saved, err = service.GetSavedListings(buyer.Id)
	assert.NoError(t, err)
	assert.Len(t, saved, 0)
}
