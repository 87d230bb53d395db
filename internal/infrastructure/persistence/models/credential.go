package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
)

// MarketplaceCredentialModel is the persistence model for a tenant's stored
// credential set. Secret columns hold the vault's "ivHex:cipherHex" output.
type MarketplaceCredentialModel struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primary_key"`
	TenantID            uuid.UUID        `gorm:"type:uuid;not null;index:idx_mp_credentials_tenant,priority:1"`
	Marketplace         marketplace.Code `gorm:"type:varchar(20);not null;index:idx_mp_credentials_tenant,priority:2"`
	EncryptedAPIKey     string           `gorm:"type:text;not null;column:encrypted_api_key"`
	EncryptedAPISecret  string           `gorm:"type:text;column:encrypted_api_secret"`
	EncryptedIdentifier string           `gorm:"type:text;column:encrypted_identifier"`
	KeyName             string           `gorm:"type:varchar(100)"`
	IsActive            bool             `gorm:"not null;default:true;index"`
	LastUsedAt          *time.Time       `gorm:"index"`
	CreatedAt           time.Time        `gorm:"not null"`
	UpdatedAt           time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MarketplaceCredentialModel) TableName() string {
	return "marketplace_credentials"
}

// ToDomain converts the persistence model to a domain CredentialRecord
func (m *MarketplaceCredentialModel) ToDomain() *marketplace.CredentialRecord {
	return &marketplace.CredentialRecord{
		ID:                  m.ID,
		TenantID:            m.TenantID,
		Marketplace:         m.Marketplace,
		EncryptedAPIKey:     m.EncryptedAPIKey,
		EncryptedAPISecret:  m.EncryptedAPISecret,
		EncryptedIdentifier: m.EncryptedIdentifier,
		KeyName:             m.KeyName,
		IsActive:            m.IsActive,
		LastUsedAt:          m.LastUsedAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain CredentialRecord
func (m *MarketplaceCredentialModel) FromDomain(r *marketplace.CredentialRecord) {
	m.ID = r.ID
	m.TenantID = r.TenantID
	m.Marketplace = r.Marketplace
	m.EncryptedAPIKey = r.EncryptedAPIKey
	m.EncryptedAPISecret = r.EncryptedAPISecret
	m.EncryptedIdentifier = r.EncryptedIdentifier
	m.KeyName = r.KeyName
	m.IsActive = r.IsActive
	m.LastUsedAt = r.LastUsedAt
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
}

// MarketplaceCredentialModelFromDomain creates a new persistence model from a
// domain CredentialRecord
func MarketplaceCredentialModelFromDomain(r *marketplace.CredentialRecord) *MarketplaceCredentialModel {
	m := &MarketplaceCredentialModel{}
	m.FromDomain(r)
	return m
}
