package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskPageWarm recomputes the first page of an invalidated view.
	TaskPageWarm = "page:warm"
)

type PageWarmPayload struct {
	Path string `json:"path"`
}

// NewPageWarmTask builds a low priority page warm-up task for path.
func NewPageWarmTask(path string) (*asynq.Task, error) {
	payload, err := json.Marshal(PageWarmPayload{Path: path})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskPageWarm,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("low"),
		asynq.Timeout(30*time.Second),
	), nil
}
