package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/api"
	"github.com/dmitrijs2005/gigbook/internal/server/models"
	"github.com/dmitrijs2005/gigbook/internal/server/repositories/logs"
)

// LogService keeps the server copy of users' show logs.
type LogService struct {
	logs logs.Repository
}

func NewLogService(r logs.Repository) *LogService {
	return &LogService{logs: r}
}

// Save stores req for userID, replacing an earlier log of the same show.
func (s *LogService) Save(ctx context.Context, userID string, req api.LogRequest) (*models.Log, error) {
	l, err := s.logs.Upsert(ctx, &models.Log{
		UserID:     userID,
		ArtistName: strings.TrimSpace(req.ArtistName),
		VenueName:  strings.TrimSpace(req.VenueName),
		City:       strings.TrimSpace(req.City),
		Date:       req.Date.UTC().Truncate(time.Millisecond),
		TourName:   strings.TrimSpace(req.TourName),
		Rating:     req.Rating,
		Note:       req.Note,
	})
	if err != nil {
		return nil, fmt.Errorf("save log: %w", err)
	}
	return l, nil
}

func (s *LogService) List(ctx context.Context, userID string) ([]models.Log, error) {
	out, err := s.logs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return out, nil
}
