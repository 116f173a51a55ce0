package server

import (
	"net/http"
	"strconv"

	"github.com/HeorhiiKortunov/CoreTask/internal/services/company"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/invitation"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/validation"
)

// companyLocationPrefix is the base of the Location header returned on
// company registration.
const companyLocationPrefix = "/api/company/"

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := a.decode(w, r, validation.SchemaLogin, &req); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := a.services.Login.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (a *api) registerCompany(w http.ResponseWriter, r *http.Request) {
	var req registerCompanyRequest
	if err := a.decode(w, r, validation.SchemaRegisterCompany, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, _, err := a.services.Companies.Register(r.Context(), req.Name, company.OwnerInput{
		Username:      req.FirstAdmin.Username,
		DisplayedName: req.FirstAdmin.DisplayedName,
		Email:         req.FirstAdmin.Email,
		Password:      req.FirstAdmin.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", companyLocationPrefix+strconv.FormatInt(created.ID, 10))
	writeJSON(w, http.StatusCreated, toCompanyResponse(created))
}

func (a *api) createInvitation(w http.ResponseWriter, r *http.Request) {
	var req invitationCreateRequest
	if err := a.decode(w, r, validation.SchemaInvitationCreate, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := a.services.Invitations.Invite(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *api) acceptInvitation(w http.ResponseWriter, r *http.Request) {
	var req invitationAcceptRequest
	if err := a.decode(w, r, validation.SchemaInvitationAccept, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := a.services.Invitations.Accept(r.Context(), r.URL.Query().Get("token"), invitation.AcceptInput{
		Username:      req.Username,
		DisplayedName: req.DisplayedName,
		Password:      req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}
