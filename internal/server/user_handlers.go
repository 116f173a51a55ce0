package server

import (
	"net/http"

	"github.com/HeorhiiKortunov/CoreTask/internal/services/user"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/validation"
)

func (a *api) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.services.Users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(users, toUserResponse))
}

func (a *api) getMe(w http.ResponseWriter, r *http.Request) {
	u, err := a.services.Users.Me(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (a *api) updateMe(w http.ResponseWriter, r *http.Request) {
	var req userUpdateRequest
	if err := a.decode(w, r, validation.SchemaUserUpdate, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := a.services.Users.UpdateMyProfile(r.Context(), user.ProfileInput{
		DisplayedName: req.DisplayedName,
		Email:         req.Email,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (a *api) deleteMe(w http.ResponseWriter, r *http.Request) {
	if err := a.services.Users.DeleteMe(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	u, err := a.services.Users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (a *api) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req userUpdateRequest
	if err := a.decode(w, r, validation.SchemaUserUpdate, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := a.services.Users.UpdateProfile(r.Context(), id, user.ProfileInput{
		DisplayedName: req.DisplayedName,
		Email:         req.Email,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (a *api) updateUserRoles(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req userRolesRequest
	if err := a.decode(w, r, validation.SchemaUserRoles, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := a.services.Users.UpdateRoles(r.Context(), id, req.Roles)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (a *api) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.services.Users.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
