package handler

import (
	"reflect"
	"strings"
	"time"

	"github.com/onduty/roster/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth / users ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=user manager admin"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	Token string        `json:"token,omitempty"`
	User  *userResponse `json:"user,omitempty"`
}

type listUsersResponse struct {
	Items []userResponse `json:"items"`
	Total int            `json:"total"`
}

// --- Duty requests ---

type createRequestRequest struct {
	Date   string `json:"date"   validate:"required"`
	Shift  string `json:"shift"`
	Reason string `json:"reason" validate:"required,max=1000"`
}

type requestLinks struct {
	Self    string `json:"self"`
	History string `json:"history"`
	Actions string `json:"actions"`
}

type dutyRequestResponse struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	UserName  string       `json:"user_name"`
	Date      string       `json:"date"`
	Shift     string       `json:"shift"`
	Reason    string       `json:"reason"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	HandledBy *string      `json:"handled_by"`
	HandledAt *time.Time   `json:"handled_at"`
	Links     requestLinks `json:"_links"`
}

type listRequestsResponse struct {
	Items []dutyRequestResponse `json:"items"`
	Total int                   `json:"total"`
}

type actionsResponse struct {
	RequestID string   `json:"request_id"`
	Actions   []string `json:"actions"`
}

type historyResponse struct {
	RequestID string                 `json:"request_id"`
	Events    []*domain.RequestEvent `json:"events"`
}

// jsonFieldName makes validator messages use the JSON field names clients send.
func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}
