// File: internal/repository/healthrecord/health_record_repository.go
package healthrecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/healthadvisor/advisor-server/internal/domain"
)

type gormHealthRecordRepository struct {
	db *gorm.DB
}

func NewHealthRecordRepository(db *gorm.DB) HealthRecordRepository {
	return &gormHealthRecordRepository{db: db}
}

func (r *gormHealthRecordRepository) Create(ctx context.Context, record *domain.HealthRecord) (*domain.HealthRecord, error) {
	if record == nil {
		return nil, errors.New("record cannot be nil")
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now().UTC()
	}
	if err := encodeVariant(record); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		log.Printf("[HealthRecordRepository] Database error creating record for user ID %d: %v", record.UserID, err)
		return nil, errors.New("database error creating health record")
	}
	return record, nil
}

func (r *gormHealthRecordRepository) FindRecentByCategory(ctx context.Context, userID uint, category domain.RecordCategory, limit int) ([]domain.HealthRecord, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}
	if limit <= 0 || limit > 100 {
		limit = 5
	}

	var records []domain.HealthRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND category = ?", userID, category).
		Order("recorded_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		log.Printf("[HealthRecordRepository] Database error finding recent %s records for user ID %d: %v", category, userID, err)
		return nil, errors.New("database error finding health records")
	}

	return decodeVariants(records)
}

func (r *gormHealthRecordRepository) FindByUserWithPagination(ctx context.Context, userID uint, limit, offset int) ([]domain.HealthRecord, int64, error) {
	if userID == 0 {
		return nil, 0, errors.New("invalid user ID")
	}
	if limit <= 0 || limit > 1000 {
		return nil, 0, errors.New("invalid limit: must be between 1 and 1000")
	}
	if offset < 0 {
		return nil, 0, errors.New("invalid offset: must be >= 0")
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.HealthRecord{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		log.Printf("[HealthRecordRepository] Database error counting records for user ID %d: %v", userID, err)
		return nil, 0, errors.New("database error counting health records")
	}

	var records []domain.HealthRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		log.Printf("[HealthRecordRepository] Database error in paginated query for user ID %d: %v", userID, err)
		return nil, 0, errors.New("database error retrieving health records")
	}

	decoded, err := decodeVariants(records)
	if err != nil {
		return nil, 0, err
	}
	return decoded, total, nil
}

// encodeVariant serializes the populated variant into the Data column.
func encodeVariant(record *domain.HealthRecord) error {
	var payload any
	switch record.Category {
	case domain.CategoryMeal:
		payload = record.Meal
	case domain.CategoryLabResult:
		payload = record.LabResult
	case domain.CategorySymptom:
		payload = record.Symptom
	default:
		return errors.New("unknown record category")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding record data: %w", err)
	}
	record.Data = string(data)
	return nil
}

// decodeVariants rehydrates the typed variant for each record from its Data
// column, switching exhaustively on the category tag.
func decodeVariants(records []domain.HealthRecord) ([]domain.HealthRecord, error) {
	for i := range records {
		record := &records[i]
		switch record.Category {
		case domain.CategoryMeal:
			record.Meal = &domain.Meal{}
			if err := json.Unmarshal([]byte(record.Data), record.Meal); err != nil {
				return nil, fmt.Errorf("decoding meal record %d: %w", record.ID, err)
			}
		case domain.CategoryLabResult:
			record.LabResult = &domain.LabResult{}
			if err := json.Unmarshal([]byte(record.Data), record.LabResult); err != nil {
				return nil, fmt.Errorf("decoding lab result record %d: %w", record.ID, err)
			}
		case domain.CategorySymptom:
			record.Symptom = &domain.Symptom{}
			if err := json.Unmarshal([]byte(record.Data), record.Symptom); err != nil {
				return nil, fmt.Errorf("decoding symptom record %d: %w", record.ID, err)
			}
		default:
			return nil, fmt.Errorf("record %d has unknown category %q", record.ID, record.Category)
		}
	}
	return records, nil
}
