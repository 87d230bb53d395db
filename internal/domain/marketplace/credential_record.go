package marketplace

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRecordNotFound indicates no active credential record exists for the
// (tenant, marketplace) pair. The vault treats it as a signal to try the
// operator-default fallback.
var ErrRecordNotFound = errors.New("marketplace: credential record not found")

// CredentialRecord is a tenant's stored credential set for one marketplace.
// Secret fields are encrypted at rest in the "ivHex:cipherHex" format.
//
// Invariant: at most one active record exists per (tenant, marketplace).
// Rotation updates the active record in place; offboarding clears IsActive.
// Records are never hard-deleted, preserving audit history.
type CredentialRecord struct {
	// ID is the record's unique identifier
	ID uuid.UUID
	// TenantID is the owning tenant
	TenantID uuid.UUID
	// Marketplace the credentials apply to
	Marketplace Code
	// EncryptedAPIKey is the encrypted primary key/token
	EncryptedAPIKey string
	// EncryptedAPISecret is the encrypted secondary secret (optional)
	EncryptedAPISecret string
	// EncryptedIdentifier is the encrypted vendor-specific account id
	// such as supplier_id, seller_id or shop domain (optional)
	EncryptedIdentifier string
	// KeyName is an operator-chosen label for the credential set
	KeyName string
	// IsActive is cleared on soft delete; at most one active record exists
	// per (tenant, marketplace)
	IsActive bool
	// LastUsedAt is touched whenever the vault resolves this record
	LastUsedAt *time.Time
	// CreatedAt is when the record was first saved
	CreatedAt time.Time
	// UpdatedAt is bumped on rotation
	UpdatedAt time.Time
}

// CredentialRepository is the persistence port for credential records
type CredentialRepository interface {
	// FindActive returns the tenant's active record for the marketplace,
	// or ErrRecordNotFound
	FindActive(ctx context.Context, tenantID uuid.UUID, code Code) (*CredentialRecord, error)

	// Save creates the record, or rotates the existing active record in
	// place, preserving the single-active invariant
	Save(ctx context.Context, record *CredentialRecord) error

	// Deactivate soft-deletes the active record for the pair
	Deactivate(ctx context.Context, tenantID uuid.UUID, code Code) error

	// DeactivateTenant soft-deletes all of a tenant's records
	DeactivateTenant(ctx context.Context, tenantID uuid.UUID) error

	// TouchUsed stamps LastUsedAt on the record
	TouchUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}
