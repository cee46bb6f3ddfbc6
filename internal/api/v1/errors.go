package v1

import (
	"net/http"

	"github.com/madhava-poojari/educonnect-api/internal/apperrors"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// writeError renders err with the status its kind maps to. Field errors
// go in the error slot so forms can show them next to inputs.
func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusGatewayTimeout {
		log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
	}
	var detail interface{}
	if fields := apperrors.FieldsOf(err); len(fields) > 0 {
		detail = fields
	}
	utils.WriteJSONResponse(w, status, false, apperrors.PublicMessage(err, "something went wrong"), nil, detail)
}

func badBody(w http.ResponseWriter, err error) {
	utils.WriteJSONResponse(w, http.StatusBadRequest, false, "invalid request body", nil, err.Error())
}
