package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/madhava-poojari/educonnect-api/internal/store"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
)

func HealthHandler(repo store.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		ok := repo.Ping(ctx) == nil
		data := map[string]interface{}{
			"db":   ok,
			"time": time.Now(),
		}
		if !ok {
			utils.WriteJSONResponse(w, http.StatusServiceUnavailable, false, "db unreachable", data, nil)
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, true, "ok", data, nil)
	}
}
