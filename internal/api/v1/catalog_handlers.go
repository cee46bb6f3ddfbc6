package v1

import (
	"net/http"

	"github.com/madhava-poojari/educonnect-api/internal/models"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
)

// GET /api/catalog lists the values the search and request forms offer.
func CatalogHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", map[string][]string{
		"subjects":   models.Subjects,
		"classes":    models.Classes,
		"time_slots": models.TimeSlots,
		"durations":  models.Durations,
	}, nil)
}
