package logs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/common"
	"github.com/dmitrijs2005/gigbook/internal/server/models"
	"github.com/google/uuid"
)

type key struct {
	userID string
	artist string
	venue  string
	city   string
	date   int64
}

type MemoryRepository struct {
	mu   sync.RWMutex
	logs map[key]*models.Log
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{logs: make(map[key]*models.Log)}
}

func keyOf(l *models.Log) key {
	return key{
		userID: l.UserID,
		artist: common.FoldKey(l.ArtistName),
		venue:  common.FoldKey(l.VenueName),
		city:   common.FoldKey(l.City),
		date:   l.Date.UnixMilli(),
	}
}

func (r *MemoryRepository) Upsert(ctx context.Context, log *models.Log) (*models.Log, error) {
	now := time.Now().UTC()
	k := keyOf(log)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.logs[k]; ok {
		existing.TourName = log.TourName
		existing.Rating = log.Rating
		existing.Note = log.Note
		existing.UpdatedAt = now
		out := *existing
		return &out, nil
	}

	l := *log
	l.ID = uuid.NewString()
	l.CreatedAt = now
	l.UpdatedAt = now
	r.logs[k] = &l

	out := l
	return &out, nil
}

// ListByUser returns the user's logs, newest show first.
func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]models.Log, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Log, 0)
	for _, l := range r.logs {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
