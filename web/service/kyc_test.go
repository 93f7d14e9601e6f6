package service

import (
	"testing"

	"github.com/bazaarpanel/bazaar/database"
	"github.com/bazaarpanel/bazaar/database/model"

	"github.com/stretchr/testify/assert"
)

func TestReconcileOrphans(t *testing.T) {
	setup()
	defer teardown()

	db := database.GetDB()
	userService := UserService{}
	kycService := KycService{}

	alive, err := userService.CreateUser("alive@example.com", "Alive", "pw123456", model.RoleVendor)
	assert.NoError(t, err)

	// Three records for a live user, two pointing at owners that never
	// existed or were already deleted.
	for i := 0; i < 3; i++ {
		assert.NoError(t, kycService.AddRecord(&model.KycRecord{
			UserId: alive.Id, Status: model.KycPending, Document: "doc",
		}))
	}
	assert.NoError(t, kycService.AddRecord(&model.KycRecord{UserId: 9999, Status: model.KycPending}))
	assert.NoError(t, kycService.AddRecord(&model.KycRecord{UserId: 10000, Status: model.KycApproved}))

	result, err := kycService.ReconcileOrphans()
	assert.NoError(t, err)
	assert.Equal(t, 5, result.Scanned)
	assert.Equal(t, 2, result.Deleted)

	var remaining int64
	assert.NoError(t, db.Model(model.KycRecord{}).Count(&remaining).Error)
	assert.EqualValues(t, 3, remaining)

	// A second run finds nothing left to reclaim.
	result, err = kycService.ReconcileOrphans()
	assert.NoError(t, err)
	assert.Equal(t, 3, result.Scanned)
	assert.Equal(t, 0, result.Deleted)
}

func TestGetRecordsForUser(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	kycService := KycService{}

	user, err := userService.CreateUser("kyc@example.com", "Kyc", "pw123456", model.RoleUser)
	assert.NoError(t, err)

	assert.NoError(t, kycService.AddRecord(&model.KycRecord{UserId: user.Id, Status: model.KycPending}))
	assert.NoError(t, kycService.AddRecord(&model.KycRecord{UserId: user.Id + 1, Status: model.KycPending}))

	records, err := kycService.GetRecordsForUser(user.Id)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, user.Id, records[0].UserId)
}
