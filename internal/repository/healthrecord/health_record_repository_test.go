// File: internal/repository/healthrecord/health_record_repository_test.go
package healthrecord

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/healthadvisor/advisor-server/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.HealthRecord{}))
	return db
}

func TestCreate_EncodesVariant(t *testing.T) {
	repo := NewHealthRecordRepository(setupTestDB(t))

	created, err := repo.Create(context.Background(), &domain.HealthRecord{
		UserID:   1,
		Category: domain.CategoryMeal,
		Meal:     &domain.Meal{Description: "lentil soup", Calories: 320, MealTime: "lunch"},
	})

	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.RecordedAt.IsZero())
	assert.Contains(t, created.Data, "lentil soup")
}

func TestCreate_RejectsMismatchedVariant(t *testing.T) {
	repo := NewHealthRecordRepository(setupTestDB(t))

	_, err := repo.Create(context.Background(), &domain.HealthRecord{
		UserID:   1,
		Category: domain.CategoryMeal,
		Symptom:  &domain.Symptom{Description: "headache"},
	})
	assert.Error(t, err)

	_, err = repo.Create(context.Background(), &domain.HealthRecord{
		UserID:   1,
		Category: "mood",
	})
	assert.Error(t, err)
}

func TestFindRecentByCategory_DecodesAndOrders(t *testing.T) {
	repo := NewHealthRecordRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Millisecond)

	for i, desc := range []string{"oatmeal", "salad", "soup"} {
		_, err := repo.Create(ctx, &domain.HealthRecord{
			UserID:     1,
			Category:   domain.CategoryMeal,
			RecordedAt: base.Add(time.Duration(i) * time.Hour),
			Meal:       &domain.Meal{Description: desc},
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &domain.HealthRecord{
		UserID:     1,
		Category:   domain.CategorySymptom,
		RecordedAt: base,
		Symptom:    &domain.Symptom{Description: "fatigue", Severity: 3},
	})
	require.NoError(t, err)

	meals, err := repo.FindRecentByCategory(ctx, 1, domain.CategoryMeal, 2)
	require.NoError(t, err)
	require.Len(t, meals, 2)
	require.NotNil(t, meals[0].Meal)
	assert.Equal(t, "soup", meals[0].Meal.Description)
	assert.Equal(t, "salad", meals[1].Meal.Description)

	symptoms, err := repo.FindRecentByCategory(ctx, 1, domain.CategorySymptom, 5)
	require.NoError(t, err)
	require.Len(t, symptoms, 1)
	require.NotNil(t, symptoms[0].Symptom)
	assert.Equal(t, 3, symptoms[0].Symptom.Severity)
}

func TestFindRecentByCategory_ScopedToUser(t *testing.T) {
	repo := NewHealthRecordRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.HealthRecord{
		UserID:   2,
		Category: domain.CategoryMeal,
		Meal:     &domain.Meal{Description: "not yours"},
	})
	require.NoError(t, err)

	meals, err := repo.FindRecentByCategory(ctx, 1, domain.CategoryMeal, 5)
	require.NoError(t, err)
	assert.Empty(t, meals)
}

func TestFindByUserWithPagination(t *testing.T) {
	repo := NewHealthRecordRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Millisecond)

	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, &domain.HealthRecord{
			UserID:     1,
			Category:   domain.CategorySymptom,
			RecordedAt: base.Add(time.Duration(i) * time.Hour),
			Symptom:    &domain.Symptom{Description: "entry"},
		})
		require.NoError(t, err)
	}

	items, total, err := repo.FindByUserWithPagination(ctx, 1, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, items, 2)
	// newest first: offset 2 skips the two most recent
	assert.True(t, items[0].RecordedAt.After(items[1].RecordedAt))
}
