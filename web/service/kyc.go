package service

import (
	"github.com/bazaarpanel/bazaar/database"
	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/logger"
	"github.com/bazaarpanel/bazaar/util/metrics"
)

type KycService struct{}

// ReconcileResult reports one reconciliation run.
type ReconcileResult struct {
	Scanned int `json:"scanned"`
	Deleted int `json:"deleted"`
}

// ReconcileOrphans enumerates KYC records and deletes those whose owning
// user no longer exists. Only the identifying fields are projected; the owner
// is checked with a separate existence query because the owning row may be
// gone. Deleting an already-deleted record affects zero rows and is not
// counted.
func (s *KycService) ReconcileOrphans() (*ReconcileResult, error) {
	db := database.GetDB()

	records := make([]*model.KycRecord, 0)
	err := db.Model(model.KycRecord{}).
		Select("id", "user_id").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{}
	for _, record := range records {
		result.Scanned++
		metrics.KycRecordsScanned.Inc()

		var count int64
		err := db.Model(model.User{}).
			Where("id = ?", record.UserId).
			Count(&count).Error
		if err != nil {
			return result, err
		}
		if count > 0 {
			continue
		}

		del := db.Where("id = ?", record.Id).Delete(model.KycRecord{})
		if del.Error != nil {
			return result, del.Error
		}
		if del.RowsAffected == 0 {
			// A concurrent run already reclaimed this record.
			continue
		}

		logger.Debugf("deleted orphaned kyc record %d (owner %d missing)", record.Id, record.UserId)
		result.Deleted++
		metrics.KycOrphansDeleted.Inc()
	}

	return result, nil
}

func (s *KycService) AddRecord(record *model.KycRecord) error {
	db := database.GetDB()
	return db.Create(record).Error
}

func (s *KycService) GetRecordsForUser(userId int) ([]*model.KycRecord, error) {
	db := database.GetDB()
	records := make([]*model.KycRecord, 0)
	err := db.Model(model.KycRecord{}).
		Where("user_id = ?", userId).
		Find(&records).Error
	return records, err
}
