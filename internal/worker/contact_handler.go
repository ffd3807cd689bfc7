package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jobboard/internal/database"
	"jobboard/internal/tasks"
)

// ContactTaskHandler 负责把联系表单写入数据库。
type ContactTaskHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewContactTaskHandler 创建任务处理器。
func NewContactTaskHandler(db *gorm.DB, logger *slog.Logger) *ContactTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactTaskHandler{db: db, logger: logger}
}

// ProcessTask 实现 asynq.Handler。
func (h *ContactTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.ContactMessagePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		// 载荷损坏时重试没有意义。
		return fmt.Errorf("decode contact payload: %v: %w", err, asynq.SkipRetry)
	}

	log := h.logger.With(slog.String("correlation_id", payload.CorrelationID))

	message := database.ContactMessage{
		Name:    strings.TrimSpace(payload.Name),
		Email:   strings.TrimSpace(payload.Email),
		Message: strings.TrimSpace(payload.Message),
	}
	if len(payload.Meta) > 0 {
		message.Meta = datatypes.JSONMap(payload.Meta)
	}
	if message.Message == "" {
		log.Warn("empty contact message, skipping task")
		return nil
	}

	if err := h.db.WithContext(ctx).Create(&message).Error; err != nil {
		log.Error("save contact message failed",
			slog.Any("error", err),
			slog.Bool("final_attempt", isFinalAsynqAttempt(ctx)),
		)
		return err
	}

	log.Info("contact message saved", slog.Uint64("contact_message_id", uint64(message.ID)))
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
