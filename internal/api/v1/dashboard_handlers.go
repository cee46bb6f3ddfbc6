package v1

import (
	"net/http"

	"github.com/madhava-poojari/educonnect-api/internal/service"
	"github.com/madhava-poojari/educonnect-api/internal/session"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
	"github.com/sirupsen/logrus"
)

type DashboardHandler struct {
	dashboards *service.DashboardService
	log        logrus.FieldLogger
}

func NewDashboardHandler(dashboards *service.DashboardService, log logrus.FieldLogger) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, log: log}
}

// GET /api/dashboard/student
func (h *DashboardHandler) Student(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboards.Student(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", d, nil)
}

// GET /api/dashboard/tutor
func (h *DashboardHandler) Tutor(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboards.Tutor(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", d, nil)
}
