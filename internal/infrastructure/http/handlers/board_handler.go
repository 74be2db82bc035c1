package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/taskboard/internal/application/ports"
	domerrors "github.com/amirhosseinghanipour/taskboard/internal/domain/errors"
	"github.com/amirhosseinghanipour/taskboard/internal/infrastructure/http/middleware"
)

// BoardHandler serves the /api user, project and task endpoints.
type BoardHandler struct {
	store    ports.UserProjectStore
	events   ports.TaskEnqueuer
	validate *validator.Validate
	log      zerolog.Logger
}

// NewBoardHandler creates the handler. events may be nil to skip change notifications.
func NewBoardHandler(store ports.UserProjectStore, events ports.TaskEnqueuer, log zerolog.Logger) *BoardHandler {
	return &BoardHandler{
		store:    store,
		events:   events,
		validate: validator.New(),
		log:      log,
	}
}

// Setup handles GET /api/setup. Returns { "userId" }.
func (h *BoardHandler) Setup(w http.ResponseWriter, r *http.Request) {
	userID, err := h.store.ProvisionUser(r.Context())
	if err != nil {
		h.fail(w, "provision_user", err)
		return
	}
	middleware.RecordStoreOperation("provision_user", "ok")
	emitChange(h.log, r, h.events, ports.ChangeEvent{Event: ports.EventUserProvisioned, UserID: userID})
	writeJSON(w, http.StatusOK, map[string]string{"userId": userID})
}

// CreateProject handles POST /api/project. Body: { "userId", "projectName" }.
// Redirects to the user's project list.
func (h *BoardHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID      string `json:"userId" validate:"required"`
		ProjectName string `json:"projectName"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	projects, err := h.store.CreateProject(r.Context(), body.UserID, body.ProjectName)
	if err != nil {
		h.fail(w, "create_project", err)
		return
	}
	middleware.RecordStoreOperation("create_project", "ok")
	event := ports.ChangeEvent{Event: ports.EventProjectCreated, UserID: body.UserID}
	if n := len(projects); n > 0 {
		event.ProjectID = projects[n-1].ProjectID
	}
	emitChange(h.log, r, h.events, event)
	http.Redirect(w, r, "/api/projects/"+url.PathEscape(body.UserID), http.StatusFound)
}

// ListProjects handles GET /api/projects/{id} where id is a user id. Returns [{ "projectId", "projectName" }].
func (h *BoardHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "list_projects", err)
		return
	}
	middleware.RecordStoreOperation("list_projects", "ok")
	writeJSON(w, http.StatusOK, projects)
}

// AddTask handles POST /api/task. Body: { "userId", "projectId", "task" }.
// An unknown user/project pair is not an error; nothing is stored.
func (h *BoardHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID    string  `json:"userId" validate:"required"`
		ProjectID string  `json:"projectId" validate:"required"`
		Task      newTask `json:"task"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	task, err := body.Task.toDomain()
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	added, err := h.store.AddTask(r.Context(), body.UserID, body.ProjectID, task)
	if err != nil {
		h.fail(w, "add_task", err)
		return
	}
	if added == nil {
		middleware.RecordStoreOperation("add_task", "no_match")
		h.log.Debug().Str("user_id", body.UserID).Str("project_id", body.ProjectID).Msg("add task matched no project")
	} else {
		middleware.RecordStoreOperation("add_task", "ok")
		emitChange(h.log, r, h.events, ports.ChangeEvent{
			Event:     ports.EventTaskAdded,
			UserID:    body.UserID,
			ProjectID: body.ProjectID,
			TaskIDs:   []string{added.ID},
		})
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "added successfully"})
}

// UpdateTask handles PATCH /api/task. Body: { "userId", "projectId", "taskId", "updatedFields" }.
// The stored task becomes exactly { _id: taskId, ...updatedFields }. Returns the user.
func (h *BoardHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID        string     `json:"userId" validate:"required"`
		ProjectID     string     `json:"projectId" validate:"required"`
		TaskID        string     `json:"taskId" validate:"required"`
		UpdatedFields taskFields `json:"updatedFields"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	fields, err := body.UpdatedFields.toDomain()
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	user, replaced, err := h.store.UpdateTask(r.Context(), body.UserID, body.ProjectID, body.TaskID, fields)
	if err != nil {
		h.fail(w, "update_task", err)
		return
	}
	if replaced {
		middleware.RecordStoreOperation("update_task", "ok")
		emitChange(h.log, r, h.events, ports.ChangeEvent{
			Event:     ports.EventTaskUpdated,
			UserID:    body.UserID,
			ProjectID: body.ProjectID,
			TaskIDs:   []string{body.TaskID},
		})
	} else {
		middleware.RecordStoreOperation("update_task", "no_match")
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteTasks handles DELETE /api/projects/{id} where id is a project id. Body: { "tasks": [ids] }.
// Returns { "message", "project" }. Ids that match nothing are not an error.
func (h *BoardHandler) DeleteTasks(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	var body struct {
		Tasks json.RawMessage `json:"tasks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "Invalid request data")
		return
	}
	taskIDs, err := parseTaskIDs(body.Tasks)
	if err != nil {
		h.fail(w, "delete_tasks", err)
		return
	}
	project, removed, err := h.store.DeleteTasks(r.Context(), projectID, taskIDs)
	if err != nil {
		h.fail(w, "delete_tasks", err)
		return
	}
	if removed > 0 {
		middleware.RecordStoreOperation("delete_tasks", "ok")
		emitChange(h.log, r, h.events, ports.ChangeEvent{
			Event:     ports.EventTasksDeleted,
			ProjectID: projectID,
			TaskIDs:   taskIDs,
		})
	} else {
		middleware.RecordStoreOperation("delete_tasks", "no_match")
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Tasks deleted successfully",
		"project": project,
	})
}

// ListTasks handles GET /api/projects/{id}/tasks.
func (h *BoardHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.ListTasks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "list_tasks", err)
		return
	}
	middleware.RecordStoreOperation("list_tasks", "ok")
	writeJSON(w, http.StatusOK, tasks)
}

// DeleteProject handles DELETE /api/project. Body: { "userId", "projectId" }.
// Returns the remaining [{ "projectId", "projectName" }].
func (h *BoardHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID    string `json:"userId" validate:"required"`
		ProjectID string `json:"projectId" validate:"required"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	projects, removed, err := h.store.DeleteProject(r.Context(), body.UserID, body.ProjectID)
	if err != nil {
		h.fail(w, "delete_project", err)
		return
	}
	if removed {
		middleware.RecordStoreOperation("delete_project", "ok")
		emitChange(h.log, r, h.events, ports.ChangeEvent{
			Event:     ports.EventProjectDeleted,
			UserID:    body.UserID,
			ProjectID: body.ProjectID,
		})
	} else {
		middleware.RecordStoreOperation("delete_project", "no_match")
	}
	writeJSON(w, http.StatusOK, projects)
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *BoardHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return false
	}
	return true
}

// fail maps a store error to its HTTP status and records the outcome.
func (h *BoardHandler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domerrors.ErrUserNotFound):
		middleware.RecordStoreOperation(op, "not_found")
		writeErr(w, http.StatusNotFound, "", "User not found")
	case errors.Is(err, domerrors.ErrNotFound):
		middleware.RecordStoreOperation(op, "not_found")
		writeErr(w, http.StatusNotFound, "", "Project not found")
	case errors.Is(err, domerrors.ErrInvalidRequest):
		middleware.RecordStoreOperation(op, "invalid")
		writeErr(w, http.StatusBadRequest, "", "Invalid request data")
	default:
		middleware.RecordStoreOperation(op, "error")
		h.log.Error().Err(err).Str("op", op).Msg("store operation failed")
		writeErr(w, http.StatusInternalServerError, "", "Server error")
	}
}
