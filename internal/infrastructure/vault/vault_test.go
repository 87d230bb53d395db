package vault

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
)

// fakeCredentialRepository is an in-memory CredentialRepository for tests
type fakeCredentialRepository struct {
	records map[string]*marketplace.CredentialRecord
	findErr error
}

func newFakeCredentialRepository() *fakeCredentialRepository {
	return &fakeCredentialRepository{records: make(map[string]*marketplace.CredentialRecord)}
}

func repoKey(tenantID uuid.UUID, code marketplace.Code) string {
	return tenantID.String() + "/" + code.String()
}

func (f *fakeCredentialRepository) FindActive(_ context.Context, tenantID uuid.UUID, code marketplace.Code) (*marketplace.CredentialRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	record, ok := f.records[repoKey(tenantID, code)]
	if !ok || !record.IsActive {
		return nil, marketplace.ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeCredentialRepository) Save(_ context.Context, record *marketplace.CredentialRecord) error {
	key := repoKey(record.TenantID, record.Marketplace)
	if existing, ok := f.records[key]; ok && existing.IsActive {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		record.ID = uuid.New()
		record.CreatedAt = time.Now()
	}
	record.UpdatedAt = time.Now()
	f.records[key] = record
	return nil
}

func (f *fakeCredentialRepository) Deactivate(_ context.Context, tenantID uuid.UUID, code marketplace.Code) error {
	if record, ok := f.records[repoKey(tenantID, code)]; ok {
		record.IsActive = false
	}
	return nil
}

func (f *fakeCredentialRepository) DeactivateTenant(_ context.Context, tenantID uuid.UUID) error {
	for _, record := range f.records {
		if record.TenantID == tenantID {
			record.IsActive = false
		}
	}
	return nil
}

func (f *fakeCredentialRepository) TouchUsed(_ context.Context, id uuid.UUID, at time.Time) error {
	for _, record := range f.records {
		if record.ID == id {
			record.LastUsedAt = &at
		}
	}
	return nil
}

var _ marketplace.CredentialRepository = (*fakeCredentialRepository)(nil)

func testVault(t *testing.T, repo marketplace.CredentialRepository, defaults OperatorDefaults) *Vault {
	t.Helper()
	cipher, err := NewCipherFromSecret("vault-test-master-passphrase")
	require.NoError(t, err)
	return New(cipher, repo, defaults, zap.NewNop())
}

func TestVault_SafeDecrypt(t *testing.T) {
	v := testVault(t, newFakeCredentialRepository(), nil)

	t.Run("legacy plaintext passes through", func(t *testing.T) {
		assert.Equal(t, "legacy-plain-key", v.SafeDecrypt("legacy-plain-key"))
		assert.Equal(t, "", v.SafeDecrypt(""))
	})

	t.Run("encrypted value round trips", func(t *testing.T) {
		encrypted, err := v.cipher.Encrypt("actual-secret")
		require.NoError(t, err)
		assert.Equal(t, "actual-secret", v.SafeDecrypt(encrypted))
	})

	t.Run("corrupted value returns raw", func(t *testing.T) {
		assert.Equal(t, "aa:corrupted", v.SafeDecrypt("aa:corrupted"))
	})
}

func TestVault_Resolve_TenantRecordWins(t *testing.T) {
	repo := newFakeCredentialRepository()
	tenantID := uuid.New()
	defaults := OperatorDefaults{
		marketplace.CodeTrendyol: {APIKey: "default-key", APISecret: "default-secret", Identifier: "100"},
	}
	v := testVault(t, repo, defaults)

	require.NoError(t, v.Save(context.Background(), SaveInput{
		TenantID:    tenantID,
		Marketplace: marketplace.CodeTrendyol,
		APIKey:      "tenant-api-key",
		APISecret:   "tenant-api-secret",
		Identifier:  "tenant-supplier-9001",
	}))

	resolved, err := v.Resolve(context.Background(), tenantID, marketplace.CodeTrendyol)
	require.NoError(t, err)
	assert.Equal(t, marketplace.SourceTenant, resolved.Source)
	assert.Equal(t, "tenant-api-key", resolved.APIKey)
	assert.Equal(t, "tenant-api-secret", resolved.APISecret)
	assert.Equal(t, "tenant-supplier-9001", resolved.Identifier)

	record, err := repo.FindActive(context.Background(), tenantID, marketplace.CodeTrendyol)
	require.NoError(t, err)
	assert.NotNil(t, record.LastUsedAt)
}

func TestVault_Resolve_FallsBackToOperatorDefault(t *testing.T) {
	defaults := OperatorDefaults{
		marketplace.CodeShopify: {
			APIKey:     "shpat_default",
			Identifier: "acme.myshopify.com",
			Extra:      map[string]string{"api_version": "2024-01"},
		},
	}
	v := testVault(t, newFakeCredentialRepository(), defaults)

	resolved, err := v.Resolve(context.Background(), uuid.New(), marketplace.CodeShopify)
	require.NoError(t, err)
	assert.Equal(t, marketplace.SourceOperatorDefault, resolved.Source)
	assert.Equal(t, "shpat_default", resolved.APIKey)
	assert.Equal(t, "acme.myshopify.com", resolved.Identifier)
	assert.Equal(t, "2024-01", resolved.Extra["api_version"])
}

func TestVault_Resolve_NoCredentialsAnywhere(t *testing.T) {
	v := testVault(t, newFakeCredentialRepository(), nil)

	_, err := v.Resolve(context.Background(), uuid.New(), marketplace.CodeN11)
	assert.ErrorIs(t, err, marketplace.ErrCredentialsNotFound)
}

func TestVault_Resolve_InvalidInputs(t *testing.T) {
	v := testVault(t, newFakeCredentialRepository(), nil)

	_, err := v.Resolve(context.Background(), uuid.Nil, marketplace.CodeTrendyol)
	assert.ErrorIs(t, err, marketplace.ErrInvalidTenantID)

	_, err = v.Resolve(context.Background(), uuid.New(), marketplace.Code("ebay"))
	assert.ErrorIs(t, err, marketplace.ErrInvalidMarketplaceCode)
}

func TestVault_Resolve_RepositoryFailure(t *testing.T) {
	repo := newFakeCredentialRepository()
	repo.findErr = errors.New("connection refused")
	v := testVault(t, repo, nil)

	_, err := v.Resolve(context.Background(), uuid.New(), marketplace.CodeTrendyol)
	require.Error(t, err)
	assert.NotErrorIs(t, err, marketplace.ErrCredentialsNotFound)
}

func TestVault_Save_ValidatesRawValues(t *testing.T) {
	v := testVault(t, newFakeCredentialRepository(), nil)

	err := v.Save(context.Background(), SaveInput{
		TenantID:    uuid.New(),
		Marketplace: marketplace.CodeTrendyol,
		APIKey:      "short",
	})
	assert.ErrorIs(t, err, ErrInvalidRawKey)
}

func TestVault_Save_EncryptsAtRest(t *testing.T) {
	repo := newFakeCredentialRepository()
	tenantID := uuid.New()
	v := testVault(t, repo, nil)

	require.NoError(t, v.Save(context.Background(), SaveInput{
		TenantID:    tenantID,
		Marketplace: marketplace.CodeTrendyol,
		APIKey:      "tenant-api-key",
		APISecret:   "tenant-api-secret",
	}))

	record, err := repo.FindActive(context.Background(), tenantID, marketplace.CodeTrendyol)
	require.NoError(t, err)
	assert.NotEqual(t, "tenant-api-key", record.EncryptedAPIKey)
	assert.True(t, IsEncrypted(record.EncryptedAPIKey))
	assert.True(t, IsEncrypted(record.EncryptedAPISecret))
}

func TestVault_Save_RotatesInPlace(t *testing.T) {
	repo := newFakeCredentialRepository()
	tenantID := uuid.New()
	v := testVault(t, repo, nil)

	require.NoError(t, v.Save(context.Background(), SaveInput{
		TenantID:    tenantID,
		Marketplace: marketplace.CodeTrendyol,
		APIKey:      "first-api-key",
	}))
	first, err := repo.FindActive(context.Background(), tenantID, marketplace.CodeTrendyol)
	require.NoError(t, err)

	require.NoError(t, v.Save(context.Background(), SaveInput{
		TenantID:    tenantID,
		Marketplace: marketplace.CodeTrendyol,
		APIKey:      "rotated-api-key",
	}))
	second, err := repo.FindActive(context.Background(), tenantID, marketplace.CodeTrendyol)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	resolved, err := v.Resolve(context.Background(), tenantID, marketplace.CodeTrendyol)
	require.NoError(t, err)
	assert.Equal(t, "rotated-api-key", resolved.APIKey)
}

func TestVault_DeactivateAndOffboard(t *testing.T) {
	repo := newFakeCredentialRepository()
	tenantID := uuid.New()
	defaults := OperatorDefaults{}
	v := testVault(t, repo, defaults)

	require.NoError(t, v.Save(context.Background(), SaveInput{
		TenantID:    tenantID,
		Marketplace: marketplace.CodeTrendyol,
		APIKey:      "tenant-api-key",
	}))
	require.NoError(t, v.Save(context.Background(), SaveInput{
		TenantID:    tenantID,
		Marketplace: marketplace.CodeN11,
		APIKey:      "tenant-n11-key",
	}))

	require.NoError(t, v.Deactivate(context.Background(), tenantID, marketplace.CodeTrendyol))
	_, err := v.Resolve(context.Background(), tenantID, marketplace.CodeTrendyol)
	assert.ErrorIs(t, err, marketplace.ErrCredentialsNotFound)

	require.NoError(t, v.OffboardTenant(context.Background(), tenantID))
	_, err = v.Resolve(context.Background(), tenantID, marketplace.CodeN11)
	assert.ErrorIs(t, err, marketplace.ErrCredentialsNotFound)
}
