package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/persistence/models"
)

// GormCredentialRepository implements marketplace.CredentialRepository using GORM
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

var _ marketplace.CredentialRepository = (*GormCredentialRepository)(nil)

// FindActive returns the tenant's active credential record for the marketplace
func (r *GormCredentialRepository) FindActive(ctx context.Context, tenantID uuid.UUID, code marketplace.Code) (*marketplace.CredentialRecord, error) {
	var model models.MarketplaceCredentialModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND marketplace = ? AND is_active = ?", tenantID, code, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, marketplace.ErrRecordNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates the record or rotates the existing active record in place,
// preserving the invariant of at most one active record per (tenant, marketplace).
func (r *GormCredentialRepository) Save(ctx context.Context, record *marketplace.CredentialRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.MarketplaceCredentialModel
		err := tx.
			Where("tenant_id = ? AND marketplace = ? AND is_active = ?", record.TenantID, record.Marketplace, true).
			First(&existing).Error

		now := time.Now()
		switch {
		case err == nil:
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
			record.UpdatedAt = now
			return tx.Model(&models.MarketplaceCredentialModel{}).
				Where("id = ?", existing.ID).
				Updates(map[string]interface{}{
					"encrypted_api_key":    record.EncryptedAPIKey,
					"encrypted_api_secret": record.EncryptedAPISecret,
					"encrypted_identifier": record.EncryptedIdentifier,
					"key_name":             record.KeyName,
					"updated_at":           now,
				}).Error

		case errors.Is(err, gorm.ErrRecordNotFound):
			if record.ID == uuid.Nil {
				record.ID = uuid.New()
			}
			record.IsActive = true
			record.CreatedAt = now
			record.UpdatedAt = now
			return tx.Create(models.MarketplaceCredentialModelFromDomain(record)).Error

		default:
			return err
		}
	})
}

// Deactivate soft-deletes the tenant's active record for the marketplace
func (r *GormCredentialRepository) Deactivate(ctx context.Context, tenantID uuid.UUID, code marketplace.Code) error {
	return r.db.WithContext(ctx).
		Model(&models.MarketplaceCredentialModel{}).
		Where("tenant_id = ? AND marketplace = ? AND is_active = ?", tenantID, code, true).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
}

// DeactivateTenant soft-deletes all of a tenant's credential records
func (r *GormCredentialRepository) DeactivateTenant(ctx context.Context, tenantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.MarketplaceCredentialModel{}).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
}

// TouchUsed stamps LastUsedAt on the record
func (r *GormCredentialRepository) TouchUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.MarketplaceCredentialModel{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}
