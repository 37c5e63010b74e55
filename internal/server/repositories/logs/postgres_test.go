package logs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gigbook/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

const (
	upsertLog = `(?s)^\s*INSERT\s+INTO\s+show_logs\b.*ON\s+CONFLICT\s+\(user_id,\s*artist_key,\s*venue_key,\s*city_key,\s*show_date\)\s+DO\s+UPDATE\b.*RETURNING\s+id,\s*artist_name,\s*venue_name,\s*city,\s*created_at,\s*updated_at\s*$`
	listLogs  = `(?s)^\s*SELECT\s+.*FROM\s+show_logs\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+show_date\s+DESC,\s*created_at\s+DESC\s*$`
)

func TestPostgresUpsert_KeysOnFoldedNamesAndInstant(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	riga := time.FixedZone("EEST", 3*60*60)
	date := time.Date(2024, 5, 10, 22, 30, 0, 0, riga)
	rating := 4.5
	created := time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(upsertLog).
		WithArgs(sqlmock.AnyArg(), "u1",
			"BEYONCÉ", "beyoncé",
			"Arena", "arena",
			"Riga", "riga",
			date.UTC(), "", &rating, "great", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "artist_name", "venue_name", "city", "created_at", "updated_at"}).
			AddRow("log-1", "Beyoncé", "Arena", "Riga", created, time.Now()))

	l, err := repo.Upsert(context.Background(), &models.Log{
		UserID:     "u1",
		ArtistName: "BEYONCÉ",
		VenueName:  "Arena",
		City:       "Riga",
		Date:       date,
		Rating:     &rating,
		Note:       "great",
	})
	require.NoError(t, err)
	assert.Equal(t, "log-1", l.ID)
	assert.Equal(t, "Beyoncé", l.ArtistName, "the first spelling stored wins")
	assert.Equal(t, created, l.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsert_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(upsertLog).WillReturnError(errors.New("db down"))

	_, err := repo.Upsert(context.Background(), &models.Log{UserID: "u1", ArtistName: "Drake", VenueName: "O2", Date: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestPostgresListByUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	cols := []string{"id", "user_id", "artist_name", "venue_name", "city", "show_date", "tour_name",
		"rating", "note", "created_at", "updated_at"}
	now := time.Now()

	mock.ExpectQuery(listLogs).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("l2", "u1", "Drake", "O2", "London", now, "", 4.0, "", now, now).
			AddRow("l1", "u1", "Lorde", "O2", "London", now.AddDate(0, 0, -1), "", nil, "", now, now))

	out, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.NotNil(t, out[0].Rating)
	assert.InDelta(t, 4.0, *out[0].Rating, 0.001)
	assert.Nil(t, out[1].Rating)

	mock.ExpectQuery(listLogs).WithArgs("nobody").WillReturnRows(sqlmock.NewRows(cols))
	none, err := repo.ListByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	require.NoError(t, mock.ExpectationsWereMet())
}

var _ Repository = (*PostgresRepository)(nil)
