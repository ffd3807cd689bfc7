package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeContactMessage = "contact:message"
)

// ContactMessagePayload 是联系表单提交的内容。
type ContactMessagePayload struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id"`

	// 提交时的客户端信息（remote_ip、user_agent），原样存入 contact_message.meta。
	Meta map[string]any `json:"meta,omitempty"`
}

// NewContactMessageTask 构造联系表单持久化任务。
func NewContactMessageTask(p ContactMessagePayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeContactMessage, payload, asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}
