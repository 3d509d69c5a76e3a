// File: internal/services/health_service.go
package services

import (
	"context"
	"errors"

	"github.com/healthadvisor/advisor-server/internal/domain"
	"github.com/healthadvisor/advisor-server/internal/repository/healthrecord"
)

const (
	healthPageDefault = 20
	healthPageMax     = 50
)

// HealthService manages the user's logged health records: the data the
// context assembler draws from on every chat turn.
type HealthService struct {
	repo   healthrecord.HealthRecordRepository
	logger Logger
}

func NewHealthService(repo healthrecord.HealthRecordRepository, logger Logger) *HealthService {
	return &HealthService{repo: repo, logger: logger}
}

func (s *HealthService) AddRecord(ctx context.Context, record *domain.HealthRecord) (*domain.HealthRecord, error) {
	if record == nil {
		return nil, errors.New("record is required")
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("health record added",
		"user_id", created.UserID,
		"category", string(created.Category),
		"record_id", created.ID)
	return created, nil
}

// ListRecentByCategory returns the newest records of one category, the same
// window the context assembler sees.
func (s *HealthService) ListRecentByCategory(ctx context.Context, userID uint, category domain.RecordCategory, limit int) ([]domain.HealthRecord, error) {
	switch category {
	case domain.CategoryMeal, domain.CategoryLabResult, domain.CategorySymptom:
	default:
		return nil, errors.New("unknown record category")
	}
	items, err := s.repo.FindRecentByCategory(ctx, userID, category, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.HealthRecord{}
	}
	return items, nil
}

func (s *HealthService) ListRecords(ctx context.Context, userID uint, page, limit int) ([]domain.HealthRecord, int64, int, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = healthPageDefault
	}
	if limit > healthPageMax {
		limit = healthPageMax
	}

	items, total, err := s.repo.FindByUserWithPagination(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, page, err
	}
	if items == nil {
		items = []domain.HealthRecord{}
	}
	return items, total, page, nil
}
