package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/model"
	"github.com/sakif/todo-service/internal/service"
)

// TaskService is the subset of *service.TaskService the handler calls.
type TaskService interface {
	Create(ctx context.Context, identity service.Identity, input service.TaskInput) (*model.Task, error)
	ListForUser(ctx context.Context, identity service.Identity, status *model.Status) ([]model.Task, error)
	Get(ctx context.Context, taskID int64, identity service.Identity) (*model.Task, error)
	Update(ctx context.Context, taskID int64, input service.TaskInput, identity service.Identity) (*model.Task, error)
	Delete(ctx context.Context, taskID int64, identity service.Identity) error
}

// TaskHandler serves the /tasks routes.
type TaskHandler struct {
	tasks  TaskService
	logger *slog.Logger
}

func NewTaskHandler(tasks TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// Routes returns the /tasks subrouter.
//
//	POST   /create      → HandleCreate
//	GET    /            → HandleList
//	GET    /by-status   → HandleListByStatus
//	GET    /{taskId}    → HandleGet
//	PUT    /{taskId}    → HandleUpdate
//	DELETE /{taskId}    → HandleDelete
func (h *TaskHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/create", h.HandleCreate)
	r.Get("/", h.HandleList)
	r.Get("/by-status", h.HandleListByStatus)
	r.Get("/{taskId}", h.HandleGet)
	r.Put("/{taskId}", h.HandleUpdate)
	r.Delete("/{taskId}", h.HandleDelete)
	return r
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

func (req taskRequest) input() service.TaskInput {
	return service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
	}
}

// identityFromQuery reads ?username=&email=.
func identityFromQuery(r *http.Request) service.Identity {
	q := r.URL.Query()
	return service.Identity{Username: q.Get("username"), Email: q.Get("email")}
}

// taskIDFromRequest reads the task id from ?taskId= when present, otherwise
// from the {taskId} path segment. Older clients only fill the query parameter.
func taskIDFromRequest(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("taskId")
	if raw == "" {
		raw = chi.URLParam(r, "taskId")
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("taskId", "task id must be a positive integer")
	}
	return id, nil
}

// HandleCreate adds a task for the identified user. The task always starts as TODO.
//
// HTTP: POST /tasks/create?username=alice&email=a@x.com
// REQUEST BODY: {"title":"buy milk","description":"","priority":"HIGH"}
// RESPONSE: 201 with the task
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), identityFromQuery(r), req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// HandleList returns the user's tasks, HIGH priority first.
//
// HTTP: GET /tasks?username=alice&email=a@x.com
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListForUser(r.Context(), identityFromQuery(r), nil)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// HandleListByStatus is HandleList narrowed to one status.
//
// HTTP: GET /tasks/by-status?username=alice&email=a@x.com&status=TODO
func (h *TaskHandler) HandleListByStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := model.ParseStatus(r.URL.Query().Get("status"))
	if !ok {
		writeError(w, h.logger, apperror.ValidationFailed("status",
			"status must be one of TODO, IN_PROGRESS, COMPLETED"))
		return
	}

	tasks, err := h.tasks.ListForUser(r.Context(), identityFromQuery(r), &status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// HandleGet returns one task.
//
// HTTP: GET /tasks/{taskId}
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromRequest(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.tasks.Get(r.Context(), id, identityFromQuery(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// HandleUpdate replaces every mutable field of a task.
//
// HTTP: PUT /tasks/{taskId}
// REQUEST BODY: {"title":"...","description":"...","priority":"LOW","status":"COMPLETED"}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromRequest(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), id, req.input(), identityFromQuery(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// HandleDelete removes a task.
//
// HTTP: DELETE /tasks/{taskId}
// RESPONSE: 204 No Content
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromRequest(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.tasks.Delete(r.Context(), id, identityFromQuery(r)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
