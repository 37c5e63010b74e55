package logs

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gigbook/internal/client/models"
	"github.com/dmitrijs2005/gigbook/internal/client/testutil"
	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*sql.DB, *SQLiteRepository, int64, int64) {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.InsertUser(t, db, "u1", "u1@example.com")
	testutil.InsertUser(t, db, "u2", "u2@example.com")
	e1 := testutil.InsertEvent(t, db, "Fontaines D.C.", "Roundhouse", day)
	e2 := testutil.InsertEvent(t, db, "Fontaines D.C.", "Roundhouse", day.AddDate(0, 0, 1))
	return db, NewSQLiteRepository(db), e1, e2
}

func rating(v float64) *float64 { return &v }

func TestCreateOrUpdateLog_SamePairKeepsOneRow(t *testing.T) {
	db, r, ev, _ := setup(t)
	ctx := context.Background()

	id1, err := r.CreateOrUpdateLog(ctx, &models.UserLog{UserID: "u1", EventID: ev, Rating: rating(4), Note: "loud"})
	require.NoError(t, err)
	id2, err := r.CreateOrUpdateLog(ctx, &models.UserLog{
		UserID: "u1", EventID: ev, Note: "even better on reflection",
		Seat: models.Seat{Section: "GA"},
	})
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, testutil.Count(t, db, "user_logs", ""))

	got, err := r.GetLog(ctx, "u1", ev)
	require.NoError(t, err)
	assert.Equal(t, id1, got.ID)
	assert.Nil(t, got.Rating)
	assert.Equal(t, "even better on reflection", got.Note)
	assert.Equal(t, "GA", got.Seat.Section)
	assert.Equal(t, "Fontaines D.C.", got.Event.Artist.Name)
	assert.Equal(t, "Roundhouse", got.Event.Venue.Name)
	assert.True(t, day.Equal(got.Event.Date))
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestCreateOrUpdateLog_ConcurrentSamePair(t *testing.T) {
	db, r, ev, _ := setup(t)
	ctx := context.Background()

	const n = 8
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := r.CreateOrUpdateLog(ctx, &models.UserLog{UserID: "u1", EventID: ev, Rating: rating(float64(i % 5))})
			if assert.NoError(t, err) {
				ids[i] = id
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, testutil.Count(t, db, "user_logs", ""))
}

func TestGetLog_NotFound(t *testing.T) {
	_, r, ev, _ := setup(t)
	_, err := r.GetLog(context.Background(), "u1", ev)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestListAndCountForUser(t *testing.T) {
	_, r, ev1, ev2 := setup(t)
	ctx := context.Background()

	_, err := r.CreateOrUpdateLog(ctx, &models.UserLog{UserID: "u1", EventID: ev1, Rating: rating(3.5)})
	require.NoError(t, err)
	_, err = r.CreateOrUpdateLog(ctx, &models.UserLog{UserID: "u1", EventID: ev2})
	require.NoError(t, err)
	_, err = r.CreateOrUpdateLog(ctx, &models.UserLog{UserID: "u2", EventID: ev1})
	require.NoError(t, err)

	list, err := r.ListLogsForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ev2, list[0].EventID)
	assert.Equal(t, ev1, list[1].EventID)
	require.NotNil(t, list[1].Rating)
	assert.InDelta(t, 3.5, *list[1].Rating, 0.0001)

	n, err := r.CountForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = r.CountForUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDelete_OnlyOwner(t *testing.T) {
	db, r, ev, _ := setup(t)
	ctx := context.Background()

	id, err := r.CreateOrUpdateLog(ctx, &models.UserLog{UserID: "u1", EventID: ev})
	require.NoError(t, err)

	require.ErrorIs(t, r.Delete(ctx, "u2", id), common.ErrNotFound)
	require.NoError(t, r.Delete(ctx, "u1", id))
	require.ErrorIs(t, r.Delete(ctx, "u1", id), common.ErrNotFound)
	assert.Equal(t, 0, testutil.Count(t, db, "user_logs", ""))
}

func TestReassign_TargetVersionWinsOnConflict(t *testing.T) {
	db, r, ev1, ev2 := setup(t)
	ctx := context.Background()

	_, err := r.CreateOrUpdateLog(ctx, &models.UserLog{UserID: "u1", EventID: ev1, Note: "from u1"})
	require.NoError(t, err)
	_, err = r.CreateOrUpdateLog(ctx, &models.UserLog{UserID: "u1", EventID: ev2, Note: "only u1"})
	require.NoError(t, err)
	_, err = r.CreateOrUpdateLog(ctx, &models.UserLog{UserID: "u2", EventID: ev1, Note: "kept"})
	require.NoError(t, err)

	require.NoError(t, r.Reassign(ctx, "u1", "u2"))

	assert.Equal(t, 0, testutil.Count(t, db, "user_logs", "user_id = ?", "u1"))
	list, err := r.ListLogsForUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, list, 2)

	got, err := r.GetLog(ctx, "u2", ev1)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Note)
	got, err = r.GetLog(ctx, "u2", ev2)
	require.NoError(t, err)
	assert.Equal(t, "only u1", got.Note)
}

func TestCreateOrUpdateLog_DriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO user_logs").WillReturnError(errors.New("disk full"))

	r := NewSQLiteRepository(db)
	_, err = r.CreateOrUpdateLog(context.Background(), &models.UserLog{UserID: "u1", EventID: 1})
	require.ErrorContains(t, err, "failed to save log")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReassign_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE OR IGNORE user_logs").WithArgs("u2", "u1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM user_logs").WithArgs("u1").WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	r := NewSQLiteRepository(db)
	require.Error(t, r.Reassign(context.Background(), "u1", "u2"))
	require.NoError(t, mock.ExpectationsWereMet())
}
