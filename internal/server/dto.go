package server

import (
	"time"

	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
)

// Request bodies. Pointer fields are optional and nil means unchanged.

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ownerRequest struct {
	Username      string `json:"username"`
	DisplayedName string `json:"displayedName"`
	Email         string `json:"email"`
	Password      string `json:"password"`
}

type registerCompanyRequest struct {
	Name       string       `json:"name"`
	FirstAdmin ownerRequest `json:"firstAdmin"`
}

type userUpdateRequest struct {
	DisplayedName *string `json:"displayedName"`
	Email         *string `json:"email"`
}

type userRolesRequest struct {
	Roles []string `json:"roles"`
}

type projectCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type projectUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type taskCreateRequest struct {
	ProjectID   int64      `json:"projectId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	AssigneeID  *int64     `json:"assigneeId"`
	DueTo       *time.Time `json:"dueTo"`
}

type taskUpdateRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	AssigneeID  *int64             `json:"assigneeId"`
	DueTo       *time.Time         `json:"dueTo"`
	Status      *models.TaskStatus `json:"status"`
}

type commentCreateRequest struct {
	TaskID   int64  `json:"taskId"`
	Contents string `json:"contents"`
}

type commentUpdateRequest struct {
	Contents string `json:"contents"`
}

type invitationCreateRequest struct {
	Email string `json:"email"`
}

type invitationAcceptRequest struct {
	Username      string `json:"username"`
	DisplayedName string `json:"displayedName"`
	Password      string `json:"password"`
}

// Response bodies.

type loginResponse struct {
	Token string `json:"token"`
}

type companyResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type userResponse struct {
	ID            int64    `json:"id"`
	Username      string   `json:"username"`
	DisplayedName string   `json:"displayedName"`
	Email         string   `json:"email"`
	Roles         []string `json:"roles"`
}

type projectResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type taskResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	AssigneeID  *int64            `json:"assigneeId"`
	Status      models.TaskStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	DueTo       *time.Time        `json:"dueTo"`
}

type commentResponse struct {
	ID       int64  `json:"id"`
	TaskID   int64  `json:"taskId"`
	AuthorID int64  `json:"authorId"`
	Contents string `json:"contents"`
}

func toCompanyResponse(c *models.Company) companyResponse {
	return companyResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

func toUserResponse(u *models.User) userResponse {
	roles := []string(u.Roles)
	if roles == nil {
		roles = []string{}
	}
	return userResponse{
		ID:            u.ID,
		Username:      u.Username,
		DisplayedName: u.DisplayedName,
		Email:         u.Email,
		Roles:         roles,
	}
}

func toProjectResponse(p *models.Project) projectResponse {
	return projectResponse{ID: p.ID, Name: p.Name, Description: p.Description, CreatedAt: p.CreatedAt}
}

func toTaskResponse(t *models.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		AssigneeID:  t.AssigneeID,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		DueTo:       t.DueTo,
	}
}

func toCommentResponse(c *models.Comment) commentResponse {
	return commentResponse{ID: c.ID, TaskID: c.TaskID, AuthorID: c.AuthorID, Contents: c.Contents}
}

// mapSlice converts a list of models with fn.
func mapSlice[M any, R any](items []M, fn func(*M) R) []R {
	out := make([]R, len(items))
	for i := range items {
		out[i] = fn(&items[i])
	}
	return out
}
