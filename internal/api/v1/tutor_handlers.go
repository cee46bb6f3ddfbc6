package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/madhava-poojari/educonnect-api/internal/search"
	"github.com/madhava-poojari/educonnect-api/internal/service"
	"github.com/madhava-poojari/educonnect-api/internal/session"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
	"github.com/sirupsen/logrus"
)

type TutorHandler struct {
	tutors *service.TutorService
	log    logrus.FieldLogger
}

func NewTutorHandler(tutors *service.TutorService, log logrus.FieldLogger) *TutorHandler {
	return &TutorHandler{tutors: tutors, log: log}
}

// GET /api/tutors?subject=&class=&location=&search=
func (h *TutorHandler) List(w http.ResponseWriter, r *http.Request) {
	c := search.CriteriaFromQuery(r.URL.Query())
	tutors, err := h.tutors.Search(r.Context(), c)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", map[string]interface{}{
		"tutors":   tutors,
		"count":    len(tutors),
		"criteria": c,
	}, nil)
}

// GET /api/tutors/{id}
func (h *TutorHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.tutors.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", t, nil)
}

// PUT /api/tutors/me
func (h *TutorHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req service.ProfileInput
	if err := utils.DecodeJSON(r, &req); err != nil {
		badBody(w, err)
		return
	}
	t, err := h.tutors.UpdateProfile(r.Context(), session.FromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "Profile updated successfully!", t, nil)
}
