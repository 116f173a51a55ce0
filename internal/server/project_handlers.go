package server

import (
	"net/http"

	"github.com/HeorhiiKortunov/CoreTask/internal/services/project"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/validation"
)

func (a *api) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.services.Projects.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(projects, toProjectResponse))
}

func (a *api) getProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := a.services.Projects.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

func (a *api) createProject(w http.ResponseWriter, r *http.Request) {
	var req projectCreateRequest
	if err := a.decode(w, r, validation.SchemaProjectCreate, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := a.services.Projects.Create(r.Context(), project.CreateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

func (a *api) updateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req projectUpdateRequest
	if err := a.decode(w, r, validation.SchemaProjectUpdate, &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := a.services.Projects.Update(r.Context(), id, project.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

func (a *api) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.services.Projects.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
