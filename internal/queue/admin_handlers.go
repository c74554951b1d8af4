package queue

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Inspector is the subset of *asynq.Inspector used by AdminHandler.
type Inspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	ListArchivedTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	RunTask(queue, id string) error
}

// AdminHandler exposes queue depth and dead-letter (archived) task operations.
type AdminHandler struct {
	Inspector Inspector
	PageSize  int
	Logger    zerolog.Logger
}

type queueStats struct {
	Queue     string `json:"queue"`
	Size      int    `json:"size"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Paused    bool   `json:"paused"`
}

type archivedTask struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Payload      string    `json:"payload"`
	Retried      int       `json:"retried"`
	MaxRetry     int       `json:"maxRetry"`
	LastError    string    `json:"lastError,omitempty"`
	LastFailedAt time.Time `json:"lastFailedAt,omitempty"`
}

// Stats handles GET /api/v1/admin/queues/{queue}.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Inspector == nil {
		common.JSONError(w, http.StatusServiceUnavailable, "QUEUE_DISABLED", "queue inspector unavailable", nil)
		return
	}
	info, err := h.Inspector.GetQueueInfo(queueParam(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, queueStats{
		Queue:     info.Queue,
		Size:      info.Size,
		Pending:   info.Pending,
		Active:    info.Active,
		Scheduled: info.Scheduled,
		Retry:     info.Retry,
		Archived:  info.Archived,
		Processed: info.Processed,
		Failed:    info.Failed,
		Paused:    info.Paused,
	})
}

// ListArchived handles GET /api/v1/admin/queues/{queue}/archived?page=&limit=.
func (h *AdminHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Inspector == nil {
		common.JSONError(w, http.StatusServiceUnavailable, "QUEUE_DISABLED", "queue inspector unavailable", nil)
		return
	}
	def := h.PageSize
	if def <= 0 {
		def = 20
	}
	page, perPage := common.ParsePagination(r, def)
	tasks, err := h.Inspector.ListArchivedTasks(queueParam(r), asynq.Page(page), asynq.PageSize(perPage))
	if err != nil {
		h.writeError(w, err)
		return
	}
	items := make([]archivedTask, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, archivedTask{
			ID:           t.ID,
			Type:         t.Type,
			Payload:      string(t.Payload),
			Retried:      t.Retried,
			MaxRetry:     t.MaxRetry,
			LastError:    t.LastErr,
			LastFailedAt: t.LastFailedAt,
		})
	}
	common.Data(w, http.StatusOK, items, "page": page, "limit": perPage)
}

// Replay handles POST /api/v1/admin/queues/{queue}/archived/{taskId}/run.
func (h *AdminHandler) Replay(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Inspector == nil {
		common.JSONError(w, http.StatusServiceUnavailable, "QUEUE_DISABLED", "queue inspector unavailable", nil)
		return
	}
	queue, id := queueParam(r), chi.URLParam(r, "taskId")
	if err := h.Inspector.RunTask(queue, id); err != nil {
		h.writeError(w, err)
		return
	}
	h.Logger.Info().Str("queue", queue).Str("task_id", id).Msg("archived task replayed")
	common.Data(w, http.StatusAccepted, map[string]string{"id": id, "queue": queue})
}

func (h *AdminHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, asynq.ErrQueueNotFound):
		common.JSONError(w, http.StatusNotFound, "QUEUE_NOT_FOUND", "queue not found", nil)
	case errors.Is(err, asynq.ErrTaskNotFound):
		common.JSONError(w, http.StatusNotFound, "TASK_NOT_FOUND", "task not found", nil)
	default:
		h.Logger.Error().Err(err).Msg("queue inspector failed")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

func queueParam(r *http.Request) string {
	if q := chi.URLParam(r, "queue"); q != "" {
		return q
	}
	return DefaultQueue
}
