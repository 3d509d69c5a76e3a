// File: internal/services/health/interface.go
package health

import (
	"context"

	"github.com/healthadvisor/advisor-server/internal/domain"
)

// Provider supplies a user's most recent health records for one category,
// most-recent-first. The context assembler calls it once per category per
// chat turn; results are never cached across turns.
type Provider interface {
	GetRecent(ctx context.Context, userID uint, category domain.RecordCategory, limit int) ([]domain.HealthRecord, error)
}
