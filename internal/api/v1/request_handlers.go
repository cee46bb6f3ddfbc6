package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/madhava-poojari/educonnect-api/internal/service"
	"github.com/madhava-poojari/educonnect-api/internal/session"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
	"github.com/sirupsen/logrus"
)

type RequestHandler struct {
	requests *service.RequestService
	log      logrus.FieldLogger
}

func NewRequestHandler(requests *service.RequestService, log logrus.FieldLogger) *RequestHandler {
	return &RequestHandler{requests: requests, log: log}
}

// POST /api/requests
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.RequestInput
	if err := utils.DecodeJSON(r, &req); err != nil {
		badBody(w, err)
		return
	}
	created, err := h.requests.Submit(r.Context(), session.FromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, true,
		"Your tuition request has been sent to "+created.TutorName+". They will contact you soon.", created, nil)
}

// GET /api/requests lists the caller's sent (student) or received (tutor) requests.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.requests.List(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", reqs, nil)
}

// POST /api/requests/{id}/accept
func (h *RequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	updated, err := h.requests.Accept(r.Context(), session.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "You have accepted the tuition request.", updated, nil)
}

// POST /api/requests/{id}/reject
func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	updated, err := h.requests.Reject(r.Context(), session.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "The tuition request has been rejected.", updated, nil)
}
