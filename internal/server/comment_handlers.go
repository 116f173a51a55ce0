package server

import (
	"net/http"

	"github.com/HeorhiiKortunov/CoreTask/internal/services/validation"
)

func (a *api) listComments(w http.ResponseWriter, r *http.Request) {
	taskID, err := queryID(r, "taskId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if taskID == nil {
		writeError(w, r, validation.FieldErrors{"taskId": "is required"})
		return
	}

	comments, err := a.services.Comments.ListByTask(r.Context(), *taskID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(comments, toCommentResponse))
}

func (a *api) getComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := a.services.Comments.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponse(c))
}

func (a *api) createComment(w http.ResponseWriter, r *http.Request) {
	var req commentCreateRequest
	if err := a.decode(w, r, validation.SchemaCommentCreate, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := a.services.Comments.Create(r.Context(), req.TaskID, req.Contents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponse(c))
}

func (a *api) updateComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req commentUpdateRequest
	if err := a.decode(w, r, validation.SchemaCommentUpdate, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := a.services.Comments.Update(r.Context(), id, req.Contents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponse(c))
}

func (a *api) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.services.Comments.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
