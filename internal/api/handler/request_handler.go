package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onduty/roster/internal/api/metrics"
	"github.com/onduty/roster/internal/core/domain"
	"github.com/onduty/roster/internal/core/ports"
)

// RequestHandler handles HTTP requests for duty request operations.
type RequestHandler struct {
	service ports.RequestService
}

func NewRequestHandler(service ports.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// Create handles POST /api/requests.
//
// @Summary      Submit an on-duty request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRequestRequest  true  "Request details; unknown shifts default to morning"
// @Success      201   {object}  dutyRequestResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req createRequestRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	created, err := h.service.Create(c.Request().Context(), session, domain.NewRequest{
		Date:   req.Date,
		Shift:  req.Shift,
		Reason: req.Reason,
	})
	if err != nil {
		return err
	}

	metrics.RequestsCreatedTotal.WithLabelValues(string(created.Shift)).Inc()
	return c.JSON(http.StatusCreated, toRequestResponse(created))
}

// List handles GET /api/requests.
//
// @Summary      List duty requests
// @Description  Users see their own requests; managers and admins see every request.
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending, accepted, rejected, revoked or all"
// @Success      200     {object}  listRequestsResponse
// @Failure      400     {object}  errorResponse
// @Router       /api/requests [get]
func (h *RequestHandler) List(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	reqs, err := h.service.List(c.Request().Context(), session, ports.ListRequestsInput{
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return err
	}

	items := make([]dutyRequestResponse, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, toRequestResponse(r))
	}
	return c.JSON(http.StatusOK, listRequestsResponse{Items: items, Total: len(items)})
}

// Get handles GET /api/requests/:id.
//
// @Summary      Get a duty request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  dutyRequestResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) Get(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	req, err := h.service.Get(c.Request().Context(), session, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResponse(req))
}

// Accept handles POST /api/requests/:id/accept.
//
// @Summary      Accept a pending request (manager/admin)
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  dutyRequestResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/requests/{id}/accept [post]
func (h *RequestHandler) Accept(c echo.Context) error {
	return h.transition(c, domain.ActionAccept)
}

// Reject handles POST /api/requests/:id/reject.
//
// @Summary      Reject a pending request (manager/admin)
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  dutyRequestResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/requests/{id}/reject [post]
func (h *RequestHandler) Reject(c echo.Context) error {
	return h.transition(c, domain.ActionReject)
}

// Revoke handles POST /api/requests/:id/revoke.
//
// @Summary      Revoke your own pending request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  dutyRequestResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/requests/{id}/revoke [post]
func (h *RequestHandler) Revoke(c echo.Context) error {
	return h.transition(c, domain.ActionRevoke)
}

func (h *RequestHandler) transition(c echo.Context, action domain.Action) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	updated, err := h.service.Transition(c.Request().Context(), session, c.Param("id"), action)
	metrics.TransitionsTotal.WithLabelValues(string(action), transitionResult(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResponse(updated))
}

func transitionResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrRequestNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// Actions handles GET /api/requests/:id/actions.
//
// @Summary      List the transitions the caller may apply
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  actionsResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/requests/{id}/actions [get]
func (h *RequestHandler) Actions(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	actions, err := h.service.Permitted(c.Request().Context(), session, id)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, string(a))
	}
	return c.JSON(http.StatusOK, actionsResponse{RequestID: id, Actions: names})
}

// History handles GET /api/requests/:id/history.
//
// @Summary      Lifecycle history of a request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  historyResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/requests/{id}/history [get]
func (h *RequestHandler) History(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	events, err := h.service.History(c.Request().Context(), session, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, historyResponse{RequestID: id, Events: events})
}

// Delete handles DELETE /api/requests/:id.
//
// @Summary      Delete a request (owner or manager/admin)
// @Tags         requests
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/requests/{id} [delete]
func (h *RequestHandler) Delete(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), session, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
