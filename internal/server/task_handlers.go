package server

import (
	"net/http"

	"github.com/HeorhiiKortunov/CoreTask/internal/services/task"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/validation"
)

func (a *api) listTasks(w http.ResponseWriter, r *http.Request) {
	projectID, err := queryID(r, "projectId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter, err := task.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	tasks, err := a.services.Tasks.List(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(filter.Apply(tasks), toTaskResponse))
}

func (a *api) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	t, err := a.services.Tasks.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(t))
}

func (a *api) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskCreateRequest
	if err := a.decode(w, r, validation.SchemaTaskCreate, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := a.services.Tasks.Create(r.Context(), task.CreateInput{
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		DueTo:       req.DueTo,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(t))
}

func (a *api) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req taskUpdateRequest
	if err := a.decode(w, r, validation.SchemaTaskUpdate, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := a.services.Tasks.Update(r.Context(), id, task.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		DueTo:       req.DueTo,
		Status:      req.Status,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(t))
}

func (a *api) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.services.Tasks.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
