package service

import (
	"errors"

	"github.com/bazaarpanel/bazaar/database"
	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrListingNotFound = errors.New("listing not found")

type ListingService struct{}

// ListingWithVendor pairs a listing with its owning vendor's identity. Vendor
// is nil when the owner no longer exists.
type ListingWithVendor struct {
	Listing *model.Listing  `json:"listing"`
	Vendor  *model.Identity `json:"vendor"`
}

func (s *ListingService) GetListings(enabledOnly bool, limit int) ([]*model.Listing, error) {
	db := database.GetDB()
	listings := make([]*model.Listing, 0)
	q := db.Model(model.Listing{})
	if enabledOnly {
		q = q.Where("enable = ?", true)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("id desc").Find(&listings).Error
	return listings, err
}

func (s *ListingService) GetVendorListings(vendorId int) ([]*model.Listing, error) {
	db := database.GetDB()
	listings := make([]*model.Listing, 0)
	err := db.Model(model.Listing{}).
		Where("vendor_id = ?", vendorId).
		Order("id desc").
		Find(&listings).Error
	return listings, err
}

func (s *ListingService) GetListing(id int) (*model.Listing, error) {
	db := database.GetDB()
	listing := &model.Listing{}
	err := db.Model(model.Listing{}).Where("id = ?", id).First(listing).Error
	if database.IsNotFound(err) {
		return nil, ErrListingNotFound
	} else if err != nil {
		return nil, err
	}
	return listing, nil
}

// GetListingWithVendor fetches the listing and then its vendor as a separate
// nullable lookup. The vendor row may have been deleted out from under the
// listing, so the relation is never loaded eagerly; a missing owner yields a
// nil Vendor, not an error.
func (s *ListingService) GetListingWithVendor(id int) (*ListingWithVendor, error) {
	listing, err := s.GetListing(id)
	if err != nil {
		return nil, err
	}

	db := database.GetDB()
	owner := &model.User{}
	err = db.Model(model.User{}).Where("id = ?", listing.VendorId).First(owner).Error
	if err == gorm.ErrRecordNotFound {
		return &ListingWithVendor{Listing: listing, Vendor: nil}, nil
	} else if err != nil {
		return nil, err
	}

	return &ListingWithVendor{Listing: listing, Vendor: owner.Identity()}, nil
}

func (s *ListingService) AddListing(listing *model.Listing) error {
	if listing.Sid == "" {
		listing.Sid = uuid.NewString()
	}
	db := database.GetDB()
	return db.Create(listing).Error
}

// UpdateListing updates a listing owned by vendorId. Ownership is enforced in
// the query so a vendor cannot touch another vendor's listing.
func (s *ListingService) UpdateListing(vendorId int, listing *model.Listing) error {
	db := database.GetDB()
	result := db.Model(model.Listing{}).
		Where("id = ? and vendor_id = ?", listing.Id, vendorId).
		Updates(map[string]any{
			"title":       listing.Title,
			"description": listing.Description,
			"price_cents": listing.PriceCents,
			"currency":    listing.Currency,
			"enable":      listing.Enable,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (s *ListingService) DelListing(vendorId, id int) error {
	db := database.GetDB()
	result := db.Where("id = ? and vendor_id = ?", id, vendorId).Delete(model.Listing{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

// SaveListing records a saved listing for the user. Saving the same listing
// twice is a no-op.
func (s *ListingService) SaveListing(userId, listingId int) error {
	if _, err := s.GetListing(listingId); err != nil {
		return err
	}

	db := database.GetDB()
	var count int64
	err := db.Model(model.SavedListing{}).
		Where("user_id = ? and listing_id = ?", userId, listingId).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Create(&model.SavedListing{
		UserId:    userId,
		ListingId: listingId,
	}).Error
}

func (s *ListingService) UnsaveListing(userId, listingId int) error {
	db := database.GetDB()
	return db.Where("user_id = ? and listing_id = ?", userId, listingId).
		Delete(model.SavedListing{}).Error
}

// GetSavedListings returns the user's saved listings. Saved rows pointing at
// listings that no longer exist are skipped.
func (s *ListingService) GetSavedListings(userId int) ([]*model.Listing, error) {
	db := database.GetDB()
	saved := make([]*model.SavedListing, 0)
	err := db.Model(model.SavedListing{}).
		Where("user_id = ?", userId).
		Order("id desc").
		Find(&saved).Error
	if err != nil {
		return nil, err
	}

	listings := make([]*model.Listing, 0, len(saved))
	for _, sl := range saved {
		listing, err := s.GetListing(sl.ListingId)
		if err == ErrListingNotFound {
			logger.Debugf("saved listing %d points at a removed listing", sl.ListingId)
			continue
		} else if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, nil
}
