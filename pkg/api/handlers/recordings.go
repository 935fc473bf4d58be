package handlers

import (
	"net/http"

	"github.com/transpoze/drivegate/pkg/gateway"
)

// RecordingHandler serves POST /recordings/save.
type RecordingHandler struct {
	svc *gateway.Service
}

// NewRecordingHandler creates a RecordingHandler.
func NewRecordingHandler(svc *gateway.Service) *RecordingHandler {
	return &RecordingHandler{svc: svc}
}

// RecordingResponse is returned by POST /recordings/save.
type RecordingResponse struct {
	Success bool   `json:"success"`
	FileID  string `json:"fileId"`
	Path    string `json:"path"`
	Format  string `json:"format"`
}

// Save handles POST /recordings/save: convert, ensure the folder hierarchy,
// upload.
func (h *RecordingHandler) Save(w http.ResponseWriter, r *http.Request) {
	form, err := readMultipart(w, r, h.svc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := h.svc.SaveRecording(r.Context(), form.file, gateway.Recording{
		School:   form.value("schoolName"),
		Class:    form.value("classLevel"),
		Subject:  form.value("subject"),
		FileName: form.value("fileName"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	WriteJSONOK(w, RecordingResponse{
		Success: true,
		FileID:  saved.FileID,
		Path:    saved.Path,
		Format:  saved.Format,
	})
}
