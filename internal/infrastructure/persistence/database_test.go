package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"
)

func TestOpen(t *testing.T) {
	t.Run("opens with zap logger and tracing", func(t *testing.T) {
		db, err := Open(sqlite.Open(":memory:"), "einvoice", Options{
			Logger:   zap.NewNop(),
			LogLevel: gormlogger.Warn,
			Tracing:  true,
		})
		require.NoError(t, err)
		defer db.Close()

		assert.NotNil(t, db.DB.Config.Plugins["otelgorm"])
		assert.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, db.DB.Exec("SELECT 1").Error)
	})

	t.Run("opens silently without a logger", func(t *testing.T) {
		db, err := Open(sqlite.Open(":memory:"), "einvoice", Options{})
		require.NoError(t, err)
		defer db.Close()

		assert.Empty(t, db.DB.Config.Plugins)
		assert.True(t, db.DB.Config.TranslateError)
	})
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		gormDB, mock, _ := newMockGormDB(t, sqlmock.MonitorPingsOption(true))
		db := &Database{DB: gormDB}

		mock.ExpectPing()

		assert.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping", func(t *testing.T) {
		gormDB, mock, _ := newMockGormDB(t, sqlmock.MonitorPingsOption(true))
		db := &Database{DB: gormDB}

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		assert.EqualError(t, db.Ping(context.Background()), "connection refused")
	})
}

func TestDatabase_Stats(t *testing.T) {
	gormDB, _, _ := newMockGormDB(t)
	db := &Database{DB: gormDB}

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
}

func TestDatabase_Close(t *testing.T) {
	gormDB, mock, _ := newMockGormDB(t)
	db := &Database{DB: gormDB}

	mock.ExpectClose()

	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
