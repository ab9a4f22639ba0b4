package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSubsMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresSubscriptionsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresSubscriptionsRepository(db)
}

func TestFindCurrentByUser(t *testing.T) {
	db, mock, repo := setupSubsMockDB(t)
	defer db.Close()

	start := time.Now().Add(-30 * 24 * time.Hour)
	rows := sqlmock.NewRows([]string{
		"subscription_id", "user_id", "status", "plan_id", "start_date", "end_date",
		"p_plan_id", "slug", "name", "features",
	}).AddRow(
		"sub-1", "u-1", "active", "plan-1", start, nil,
		"plan-1", "business", "Business", pq.StringArray{"custom_fields", "reports"},
	)

	mock.ExpectQuery(`SELECT.+FROM subscriptions s.+JOIN plans p.+WHERE s\.user_id = \$1 AND s\.status = 'active'`).
		WithArgs("u-1").
		WillReturnRows(rows)

	sub, err := repo.FindCurrentByUser(context.Background(), "u-1")

	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "business", sub.Plan.Slug)
	assert.Equal(t, []string{"custom_fields", "reports"}, sub.Plan.Features)
	require.NotNil(t, sub.StartDate)
	assert.Nil(t, sub.EndDate)
	assert.True(t, sub.IsActive())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCurrentByUser_NoneReturnsNil(t *testing.T) {
	db, mock, repo := setupSubsMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs("u-1").
		WillReturnError(sql.ErrNoRows)

	sub, err := repo.FindCurrentByUser(context.Background(), "u-1")

	require.NoError(t, err)
	assert.Nil(t, sub)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanHasFeature(t *testing.T) {
	db, mock, repo := setupSubsMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("business", "custom_fields").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := repo.PlanHasFeature(context.Background(), "business", "custom_fields")

	require.NoError(t, err)
	assert.True(t, has)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanHasFeature_EmptySlug(t *testing.T) {
	db, mock, repo := setupSubsMockDB(t)
	defer db.Close()

	has, err := repo.PlanHasFeature(context.Background(), "", "custom_fields")

	require.NoError(t, err)
	assert.False(t, has)
	require.NoError(t, mock.ExpectationsWereMet())
}
