// File: internal/services/health/provider.go
package health

import (
	"context"

	"github.com/healthadvisor/advisor-server/internal/domain"
	"github.com/healthadvisor/advisor-server/internal/repository/healthrecord"
)

// StoreProvider serves recent records straight from the health-record store.
type StoreProvider struct {
	repo healthrecord.HealthRecordRepository
}

func NewStoreProvider(repo healthrecord.HealthRecordRepository) *StoreProvider {
	return &StoreProvider{repo: repo}
}

func (p *StoreProvider) GetRecent(ctx context.Context, userID uint, category domain.RecordCategory, limit int) ([]domain.HealthRecord, error) {
	return p.repo.FindRecentByCategory(ctx, userID, category, limit)
}
