// AngelaMos | 2026
// database_test.go

package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	name, ok := UniqueViolation(fmt.Errorf("insert user: %w", dup))
	assert.True(t, ok)
	assert.Equal(t, "users_email_key", name)

	_, ok = UniqueViolation(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)

	_, ok = UniqueViolation(errors.New("boom"))
	assert.False(t, ok)
}

func TestWithJitter(t *testing.T) {
	assert.Equal(t, time.Duration(3), withJitter(3))
	assert.Equal(t, time.Duration(0), withJitter(0))

	for range 50 {
		got := withJitter(time.Hour)
		assert.GreaterOrEqual(t, got, time.Hour)
		assert.Less(t, got, time.Hour+time.Hour/lifetimeJitterPart)
	}
}

func TestDatabasePing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	d := &Database{DB: sqlx.NewDb(db, "pgx")}
	t.Cleanup(func() { _ = d.Close() })

	mock.ExpectPing()
	assert.NoError(t, d.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err = d.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping database")

	assert.NoError(t, mock.ExpectationsWereMet())
}
