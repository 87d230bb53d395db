package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
)

// OperatorDefaults holds the operator-wide fallback credential sets, keyed
// by marketplace. They are consulted only when a tenant has no usable active
// record, and are populated from deployment configuration.
type OperatorDefaults map[marketplace.Code]DefaultCredentials

// DefaultCredentials is one operator-wide fallback credential set
type DefaultCredentials struct {
	APIKey     string
	APISecret  string
	Identifier string
	// Extra carries vendor-specific auxiliary fields, e.g. the Amazon LWA
	// client pair and refresh token which have no column in the credential
	// record schema
	Extra map[string]string
}

// isUsable reports whether the default set carries at least a primary key
func (d DefaultCredentials) isUsable() bool {
	return d.APIKey != ""
}

// Vault resolves effective credentials for (tenant, marketplace) pairs.
// Tenant records take precedence; operator defaults are the fallback.
type Vault struct {
	cipher   *Cipher
	repo     marketplace.CredentialRepository
	defaults OperatorDefaults
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a Vault
func New(cipher *Cipher, repo marketplace.CredentialRepository, defaults OperatorDefaults, logger *zap.Logger) *Vault {
	if defaults == nil {
		defaults = OperatorDefaults{}
	}
	return &Vault{
		cipher:   cipher,
		repo:     repo,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

// SafeDecrypt recovers a stored value, tolerating legacy plaintext.
// Values without a ":" separator predate encryption at rest and are returned
// unchanged. Values that look encrypted but fail to decrypt are logged and
// returned raw rather than failing the whole resolution; the colon heuristic
// keeps this fallback from ever rewriting genuinely-encrypted data.
func (v *Vault) SafeDecrypt(value string) string {
	if value == "" || !IsEncrypted(value) {
		return value
	}
	plaintext, err := v.cipher.Decrypt(value)
	if err != nil {
		v.logger.Warn("vault: stored value failed decryption, returning raw",
			zap.Error(err),
		)
		return value
	}
	return plaintext
}

// Resolve returns the decrypted effective credentials for the pair.
// The tenant's active record wins even when an operator default exists;
// the Source tag records which path was taken.
func (v *Vault) Resolve(ctx context.Context, tenantID uuid.UUID, code marketplace.Code) (*marketplace.ResolvedCredentials, error) {
	if tenantID == uuid.Nil {
		return nil, marketplace.ErrInvalidTenantID
	}
	if !code.IsValid() {
		return nil, marketplace.ErrInvalidMarketplaceCode
	}

	record, err := v.repo.FindActive(ctx, tenantID, code)
	switch {
	case err == nil:
		resolved := &marketplace.ResolvedCredentials{
			Marketplace: code,
			Source:      marketplace.SourceTenant,
			APIKey:      v.SafeDecrypt(record.EncryptedAPIKey),
			APISecret:   v.SafeDecrypt(record.EncryptedAPISecret),
			Identifier:  v.SafeDecrypt(record.EncryptedIdentifier),
			Extra:       v.defaultExtra(code),
		}
		if resolved.APIKey == "" {
			// Incomplete record; fall through to the operator default
			v.logger.Warn("vault: active record incomplete, trying operator default",
				zap.String("tenant_id", tenantID.String()),
				zap.String("marketplace", code.String()),
			)
			return v.resolveDefault(code)
		}
		if touchErr := v.repo.TouchUsed(ctx, record.ID, v.now()); touchErr != nil {
			v.logger.Debug("vault: failed to stamp last_used_at", zap.Error(touchErr))
		}
		return resolved, nil

	case errors.Is(err, marketplace.ErrRecordNotFound):
		return v.resolveDefault(code)

	default:
		return nil, fmt.Errorf("vault: credential lookup failed: %w", err)
	}
}

// resolveDefault builds credentials from the operator-wide fallback
func (v *Vault) resolveDefault(code marketplace.Code) (*marketplace.ResolvedCredentials, error) {
	def, ok := v.defaults[code]
	if !ok || !def.isUsable() {
		return nil, marketplace.ErrCredentialsNotFound
	}
	return &marketplace.ResolvedCredentials{
		Marketplace: code,
		Source:      marketplace.SourceOperatorDefault,
		APIKey:      def.APIKey,
		APISecret:   def.APISecret,
		Identifier:  def.Identifier,
		Extra:       def.Extra,
	}, nil
}

// defaultExtra returns the operator-configured auxiliary fields for the
// marketplace. Tenant records have no column for these, so they always ride
// along from configuration.
func (v *Vault) defaultExtra(code marketplace.Code) map[string]string {
	if def, ok := v.defaults[code]; ok {
		return def.Extra
	}
	return nil
}

// SaveInput is the raw (unencrypted) credential set to store for a tenant
type SaveInput struct {
	TenantID    uuid.UUID
	Marketplace marketplace.Code
	APIKey      string
	APISecret   string
	Identifier  string
	KeyName     string
}

// Save validates, encrypts and stores a tenant credential set. An existing
// active record for the pair is rotated in place.
func (v *Vault) Save(ctx context.Context, input SaveInput) error {
	if input.TenantID == uuid.Nil {
		return marketplace.ErrInvalidTenantID
	}
	if !input.Marketplace.IsValid() {
		return marketplace.ErrInvalidMarketplaceCode
	}
	if !ValidateRawKey(input.APIKey) {
		return fmt.Errorf("%w: api_key", ErrInvalidRawKey)
	}
	if input.APISecret != "" && !ValidateRawKey(input.APISecret) {
		return fmt.Errorf("%w: api_secret", ErrInvalidRawKey)
	}

	record := &marketplace.CredentialRecord{
		TenantID:    input.TenantID,
		Marketplace: input.Marketplace,
		KeyName:     input.KeyName,
		IsActive:    true,
	}

	var err error
	if record.EncryptedAPIKey, err = v.cipher.Encrypt(input.APIKey); err != nil {
		return err
	}
	if input.APISecret != "" {
		if record.EncryptedAPISecret, err = v.cipher.Encrypt(input.APISecret); err != nil {
			return err
		}
	}
	if input.Identifier != "" {
		if record.EncryptedIdentifier, err = v.cipher.Encrypt(input.Identifier); err != nil {
			return err
		}
	}

	if err := v.repo.Save(ctx, record); err != nil {
		return fmt.Errorf("vault: failed to save credentials: %w", err)
	}
	return nil
}

// Deactivate soft-deletes the tenant's active record for the marketplace
func (v *Vault) Deactivate(ctx context.Context, tenantID uuid.UUID, code marketplace.Code) error {
	if tenantID == uuid.Nil {
		return marketplace.ErrInvalidTenantID
	}
	if !code.IsValid() {
		return marketplace.ErrInvalidMarketplaceCode
	}
	return v.repo.Deactivate(ctx, tenantID, code)
}

// OffboardTenant soft-deletes every credential record the tenant owns
func (v *Vault) OffboardTenant(ctx context.Context, tenantID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return marketplace.ErrInvalidTenantID
	}
	return v.repo.DeactivateTenant(ctx, tenantID)
}
