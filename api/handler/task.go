package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasklight/backend/api/transport"
	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/pkg/httpcontext"
	taskStore "github.com/tasklight/backend/usecase/task"
	"github.com/tasklight/backend/usecase/view"
)

var jsonNull = []byte("null")

type TaskHandler struct {
	baseHandler
	store *taskStore.Store
}

func NewTaskHandler(store *taskStore.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       store,
	}
}

// @Summary List tasks with optional filters and ordering
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	query := view.Query{
		Status: domain.Status(ctx.QueryArgs().Peek("status")),
		TagID:  string(ctx.QueryArgs().Peek("tag")),
		Search: string(ctx.QueryArgs().Peek("q")),
		Sort:   view.Order(ctx.QueryArgs().Peek("sort")),
	}
	tasks := view.Apply(h.store.List(), query)
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Tasks due today
// @Tags tasks
// @Router /api/v1/tasks/today [get]
func (h *TaskHandler) GetToday(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, view.Today(h.store.List(), time.Now()))
}

// @Summary Overdue incomplete tasks
// @Tags tasks
// @Router /api/v1/tasks/overdue [get]
func (h *TaskHandler) GetOverdue(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, view.Overdue(h.store.List(), time.Now()))
}

// @Summary Future tasks bucketed into week, month, and later
// @Tags tasks
// @Router /api/v1/tasks/upcoming [get]
func (h *TaskHandler) GetUpcoming(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, view.Upcoming(h.store.List(), time.Now()))
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	var req transport.TaskCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	input := taskStore.Input{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		Status:      domain.Status(req.Status),
		Tags:        toDomainTags(req.Tags),
		Completed:   req.Completed,
	}
	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}
	if input.Status == "" {
		input.Status = domain.StatusTodo
	}
	if req.DueDate != nil {
		due, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			h.respondInvalid(ctx, "invalid dueDate")
			return
		}
		input.DueDate = &due
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created := h.store.Add(stdCtx, input)
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Partially update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	var req transport.TaskPatchRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	patch, ok := h.buildPatch(ctx, req)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.store.Update(stdCtx, id, patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.store.Remove(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Toggle task completion
// @Tags tasks
// @Router /api/v1/tasks/{id}/toggle [post]
func (h *TaskHandler) ToggleTask(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.store.ToggleComplete(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// buildPatch maps the wire patch onto the store patch, keeping the
// absent / null / value distinction for dueDate and tags.
func (h *TaskHandler) buildPatch(ctx *fasthttp.RequestCtx, req transport.TaskPatchRequest) (taskStore.Patch, bool) {
	patch := taskStore.Patch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		patch.Priority = &p
	}
	if req.Status != nil {
		s := domain.Status(*req.Status)
		patch.Status = &s
	}
	if req.DueDate != nil {
		patch.SetDueDate = true
		if !bytes.Equal(bytes.TrimSpace(req.DueDate), jsonNull) {
			var raw string
			if err := json.Unmarshal(req.DueDate, &raw); err != nil {
				h.respondInvalid(ctx, "invalid dueDate")
				return taskStore.Patch{}, false
			}
			due, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				h.respondInvalid(ctx, "invalid dueDate")
				return taskStore.Patch{}, false
			}
			patch.DueDate = &due
		}
	}
	if req.Tags != nil {
		patch.SetTags = true
		if !bytes.Equal(bytes.TrimSpace(req.Tags), jsonNull) {
			var tags []transport.TagBody
			if err := json.Unmarshal(req.Tags, &tags); err != nil {
				h.respondInvalid(ctx, "invalid tags")
				return taskStore.Patch{}, false
			}
			patch.Tags = toDomainTags(tags)
		}
	}
	return patch, true
}

func toDomainTags(tags []transport.TagBody) []domain.Tag {
	if tags == nil {
		return nil
	}
	out := make([]domain.Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, domain.Tag{ID: t.ID, Name: t.Name, Color: t.Color})
	}
	return out
}
