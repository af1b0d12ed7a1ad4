package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"dinedash/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM scratch").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err = WithinTx(context.Background(), mock, func(q Querier) error {
		_, err := q.Exec(context.Background(), "DELETE FROM scratch")
		return err
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err = WithinTx(context.Background(), mock, func(q Querier) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_JoinsRollbackFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("connection lost"))

	err = WithinTx(context.Background(), mock, func(q Querier) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "rollback transaction")
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = WithinTx(context.Background(), mock, func(q Querier) error {
			panic("bad")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_BeginFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	called := false
	err = WithinTx(context.Background(), mock, func(q Querier) error {
		called = true
		return nil
	})
	assert.ErrorContains(t, err, "begin transaction")
	assert.False(t, called)
}

func TestMealRepo_GetByIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMealRepo(mock)
	restaurantID := uuid.New()
	burger, fries, missing := uuid.New(), uuid.New(), uuid.New()
	ids := []uuid.UUID{burger, fries, missing}

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = ANY($1)`)).
		WithArgs(ids).
		WillReturnRows(pgxmock.NewRows(mealColumns).
			AddRow(burger, restaurantID, "Burger", int64(1000)).
			AddRow(fries, restaurantID, "Fries", int64(500)))

	meals, err := repo.GetByIDs(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, meals, 2)
	assert.Equal(t, models.Money(1000), meals[burger].Price)
	assert.Equal(t, "Fries", meals[fries].Title)
	assert.NotContains(t, meals, missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMealRepo_GetByIDs_EmptySkipsQuery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	meals, err := NewMealRepo(mock).GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, meals)
	assert.NoError(t, mock.ExpectationsWereMet())
}
