package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return &Database{DB: db}
}

func TestConnectionStats_Struct(t *testing.T) {
	t.Run("creates ConnectionStats with custom values", func(t *testing.T) {
		stats := ConnectionStats{
			MaxOpenConnections: 25,
			OpenConnections:    10,
			InUse:              5,
			Idle:               5,
			WaitCount:          100,
			WaitDuration:       5 * time.Second,
			MaxIdleClosed:      50,
			MaxIdleTimeClosed:  30,
			MaxLifetimeClosed:  20,
		}

		assert.Equal(t, 25, stats.MaxOpenConnections)
		assert.Equal(t, int64(100), stats.WaitCount)
		assert.Equal(t, 5*time.Second, stats.WaitDuration)
	})

	t.Run("InUse plus Idle equals OpenConnections", func(t *testing.T) {
		stats := ConnectionStats{
			OpenConnections: 10,
			InUse:           6,
			Idle:            4,
		}

		assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
	})
}

func TestDatabase_Ping(t *testing.T) {
	db := newTestDatabase(t)
	defer db.Close()

	assert.NoError(t, db.Ping())
}

func TestDatabase_Stats(t *testing.T) {
	db := newTestDatabase(t)
	defer db.Close()

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.GreaterOrEqual(t, stats.WaitCount, int64(0))
}

func TestDatabase_Close(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.Close())

	// Operations after close fail
	assert.Error(t, db.Ping())
}

func TestDatabase_Transaction(t *testing.T) {
	type record struct {
		ID   uint `gorm:"primaryKey"`
		Name string
	}

	t.Run("commits on success", func(t *testing.T) {
		db := newTestDatabase(t)
		defer db.Close()
		require.NoError(t, db.DB.AutoMigrate(&record{}))

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&record{Name: "test"}).Error
		})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.DB.Model(&record{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db := newTestDatabase(t)
		defer db.Close()
		require.NoError(t, db.DB.AutoMigrate(&record{}))

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&record{Name: "doomed"}).Error; err != nil {
				return err
			}
			return assert.AnError
		})
		require.Error(t, err)

		var count int64
		require.NoError(t, db.DB.Model(&record{}).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})
}
