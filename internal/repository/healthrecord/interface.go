// File: internal/repository/healthrecord/interface.go
package healthrecord

import (
	"context"

	"github.com/healthadvisor/advisor-server/internal/domain"
)

// HealthRecordRepository is the durable store for health records. Records
// come back with the tagged-union variant decoded for the given category.
type HealthRecordRepository interface {
	Create(ctx context.Context, record *domain.HealthRecord) (*domain.HealthRecord, error)
	FindRecentByCategory(ctx context.Context, userID uint, category domain.RecordCategory, limit int) ([]domain.HealthRecord, error)
	FindByUserWithPagination(ctx context.Context, userID uint, limit, offset int) ([]domain.HealthRecord, int64, error)
}
