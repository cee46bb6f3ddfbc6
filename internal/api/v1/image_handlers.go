package v1

import (
	"net/http"

	"github.com/madhava-poojari/educonnect-api/internal/session"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
)

const maxAvatarBytes = 5 << 20

// POST /api/tutors/me/avatar (multipart, field "file")
func (h *TutorHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes+1<<10)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "file too large or invalid form", nil, err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "missing file field", nil, err.Error())
		return
	}
	defer file.Close()

	t, err := h.tutors.SetAvatar(r.Context(), session.FromContext(r.Context()), header.Filename, file)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "profile picture uploaded", map[string]string{
		"url": t.ProfilePictureURL,
	}, nil)
}

// DELETE /api/tutors/me/avatar
func (h *TutorHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	if _, err := h.tutors.ClearAvatar(r.Context(), session.FromContext(r.Context())); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "profile picture deleted", nil, nil)
}
