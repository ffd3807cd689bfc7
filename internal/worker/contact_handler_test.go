package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/database"
	"jobboard/internal/database/dbtest"
	"jobboard/internal/tasks"
)

func TestContactTaskHandlerPersistsMessage(t *testing.T) {
	db := dbtest.New(t)
	handler := NewContactTaskHandler(db, nil)

	task, err := tasks.NewContactMessageTask(tasks.ContactMessagePayload{
		Name: " Ada ", Email: "ada@example.com", Message: "Hello there", CorrelationID: "c-1",
		Meta: map[string]any{"remote_ip": "192.0.2.1", "user_agent": "test"},
	})
	require.NoError(t, err)
	require.NoError(t, handler.ProcessTask(context.Background(), task))

	var saved []database.ContactMessage
	require.NoError(t, db.Find(&saved).Error)
	require.Len(t, saved, 1)
	assert.Equal(t, "Ada", saved[0].Name)
	assert.Equal(t, "Hello there", saved[0].Message)
	assert.False(t, saved[0].CreatedAt.IsZero())
	assert.Equal(t, "192.0.2.1", saved[0].Meta["remote_ip"])
}

func TestContactTaskHandlerSkipsBadPayload(t *testing.T) {
	db := dbtest.New(t)
	handler := NewContactTaskHandler(db, nil)

	err := handler.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeContactMessage, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	empty, err := tasks.NewContactMessageTask(tasks.ContactMessagePayload{Message: "   "})
	require.NoError(t, err)
	require.NoError(t, handler.ProcessTask(context.Background(), empty))

	var count int64
	require.NoError(t, db.Model(&database.ContactMessage{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIsFinalAsynqAttemptWithoutTaskContext(t *testing.T) {
	assert.False(t, isFinalAsynqAttempt(context.Background()))
}
