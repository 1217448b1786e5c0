package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	apperrors "github.com/fieldops/duty-assignment-api/internal/errors"
	"github.com/fieldops/duty-assignment-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (AssignmentStore, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewAssignmentStore(db), mock
}

// TestUpdateStatus_Conditional verifies the write is guarded by the expected
// status, so a concurrent transition cannot be silently overwritten.
func TestUpdateStatus_Conditional(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now()
	decidedBy := uint64(500)
	patch := StatusPatch{
		Status:        models.AssignmentStatusActive,
		DecidedByID:   &decidedBy,
		DecidedByRole: models.RoleManager,
		DecidedByName: "Manager",
		DecidedAt:     &now,
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `assignments` SET .+ WHERE id = \\? AND status = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.UpdateStatus(context.Background(), 42, patch, models.AssignmentStatusPending)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUpdateStatus_ZeroRowsIsConflict verifies that losing the race surfaces
// as a concurrency conflict rather than a silent no-op. The re-read finding
// the row distinguishes a lost race from a missing id.
func TestUpdateStatus_ZeroRowsIsConflict(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `assignments` SET .+ WHERE id = \\? AND status = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `assignments` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := store.UpdateStatus(context.Background(), 42,
		StatusPatch{Status: models.AssignmentStatusActive}, models.AssignmentStatusPending)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConcurrencyConflict, apperrors.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUpdateStatus_UnknownIDIsNotFound verifies a conditional write against an
// id that never existed reports NotFound, not a conflict.
func TestUpdateStatus_UnknownIDIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `assignments` SET .+ WHERE id = \\? AND status = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `assignments` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := store.UpdateStatus(context.Background(), 999,
		StatusPatch{Status: models.AssignmentStatusActive}, models.AssignmentStatusPending)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestActivateGuarded_CountsUnderLock verifies the activation re-counts the
// post's ACTIVE assignments inside the same transaction as the status write,
// with the assignment and post rows locked first.
func TestActivateGuarded_CountsUnderLock(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `assignments` WHERE `assignments`.`id` = \\? .+FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "status"}).
			AddRow(42, 7, string(models.AssignmentStatusPending)))
	mock.ExpectQuery("SELECT \\* FROM `posts` WHERE `posts`.`id` = \\? .+FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "required_headcount", "is_active"}).
			AddRow(7, 1, true))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `assignments` WHERE post_id = \\? AND status = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("UPDATE `assignments` SET .+ WHERE id = \\? AND status = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.ActivateGuarded(context.Background(), 42,
		StatusPatch{Status: models.AssignmentStatusActive}, false)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestActivateGuarded_FullPostRollsBack verifies a full post aborts the
// transaction before any status write happens.
func TestActivateGuarded_FullPostRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `assignments` WHERE `assignments`.`id` = \\? .+FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "status"}).
			AddRow(42, 7, string(models.AssignmentStatusPending)))
	mock.ExpectQuery("SELECT \\* FROM `posts` WHERE `posts`.`id` = \\? .+FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "required_headcount", "is_active"}).
			AddRow(7, 1, true))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `assignments` WHERE post_id = \\? AND status = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := store.ActivateGuarded(context.Background(), 42,
		StatusPatch{Status: models.AssignmentStatusActive}, false)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindPostUnavailable, apperrors.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountActiveByPost(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `assignments` WHERE post_id = \\? AND status = \\?").
		WithArgs(7, string(models.AssignmentStatusActive)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := store.CountActiveByPost(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT \\* FROM `assignments` WHERE `assignments`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.FindByID(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
