// File: internal/repository/message/message_repository_test.go
package message

import (
	"context"
	"fmt"
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
	require.NoError(t, db.AutoMigrate(&domain.Message{}))
	return db
}

func seedTurns(t *testing.T, repo MessageRepository, conversationID uint, turns int) time.Time {
	t.Helper()
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	ts := base
	for i := 0; i < turns; i++ {
		_, err := repo.Append(context.Background(), &domain.Message{
			ConversationID: conversationID,
			UserID:         1,
			Role:           domain.RoleUser,
			Content:        fmt.Sprintf("question %d", i),
			Timestamp:      ts,
		})
		require.NoError(t, err)
		ts = ts.Add(time.Second)
		_, err = repo.Append(context.Background(), &domain.Message{
			ConversationID: conversationID,
			UserID:         1,
			Role:           domain.RoleAssistant,
			Content:        fmt.Sprintf("answer %d", i),
			Timestamp:      ts,
		})
		require.NoError(t, err)
		ts = ts.Add(time.Second)
	}
	return base
}

func TestAppend_StoresMetadata(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t))

	created, err := repo.Append(context.Background(), &domain.Message{
		ConversationID: 1,
		UserID:         1,
		Role:           domain.RoleAssistant,
		Content:        "hello",
		Timestamp:      time.Now().UTC(),
		Metadata:       map[string]string{"model": "gpt-4o-mini", "total_tokens": "30"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	items, _, err := repo.FindByConversationWithPagination(context.Background(), 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "gpt-4o-mini", items[0].Metadata["model"])
}

func TestAppend_RejectsInvalidInput(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Append(ctx, &domain.Message{UserID: 1, Role: domain.RoleUser, Content: "x"})
	assert.Error(t, err)

	_, err = repo.Append(ctx, &domain.Message{ConversationID: 1, UserID: 1, Role: "narrator", Content: "x"})
	assert.Error(t, err)

	_, err = repo.Append(ctx, &domain.Message{ConversationID: 1, UserID: 1, Role: domain.RoleUser, Content: ""})
	assert.Error(t, err)
}

func TestFindByConversationWithPagination_OldestFirst(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t))
	seedTurns(t, repo, 1, 3)

	items, total, err := repo.FindByConversationWithPagination(context.Background(), 1, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	require.Len(t, items, 4)
	assert.Equal(t, "question 0", items[0].Content)
	assert.Equal(t, "answer 0", items[1].Content)
	assert.Equal(t, "question 1", items[2].Content)

	items, total, err = repo.FindByConversationWithPagination(context.Background(), 1, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	require.Len(t, items, 2)
	assert.Equal(t, "question 2", items[0].Content)
}

func TestFindByConversationWithPagination_IsolatesConversations(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t))
	seedTurns(t, repo, 1, 2)
	seedTurns(t, repo, 2, 1)

	_, total, err := repo.FindByConversationWithPagination(context.Background(), 2, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestFindRecent_NewestFirstWithLimit(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t))
	seedTurns(t, repo, 1, 4)

	items, err := repo.FindRecent(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "answer 3", items[0].Content)
	assert.Equal(t, "question 3", items[1].Content)
	assert.Equal(t, "answer 2", items[2].Content)
}

func TestFindRecent_ClampsBadLimit(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t))
	seedTurns(t, repo, 1, 8)

	items, err := repo.FindRecent(context.Background(), 1, -5)
	require.NoError(t, err)
	assert.Len(t, items, 10)
}

func TestCountByConversation(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t))
	seedTurns(t, repo, 1, 2)

	count, err := repo.CountByConversation(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	count, err = repo.CountByConversation(context.Background(), 2)
	require.NoError(t, err)
	assert.Zero(t, count)
}
