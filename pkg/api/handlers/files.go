package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/transpoze/drivegate/pkg/gateway"
)

// FileHandler serves the /files and /search endpoints.
type FileHandler struct {
	svc *gateway.Service
}

// NewFileHandler creates a FileHandler.
func NewFileHandler(svc *gateway.Service) *FileHandler {
	return &FileHandler{svc: svc}
}

// ShareRequest is the body of POST /files/{id}/share.
type ShareRequest struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// ShareResponse is returned by POST /files/{id}/share.
type ShareResponse struct {
	Success      bool   `json:"success"`
	PermissionID string `json:"permissionId"`
	Message      string `json:"message"`
}

// LinkRequest is the body of POST /files/{id}/getLink.
type LinkRequest struct {
	Type string `json:"type,omitempty"`
}

// LinkResponse is returned by POST /files/{id}/getLink.
type LinkResponse struct {
	Success      bool   `json:"success"`
	FileID       string `json:"fileId"`
	ViewLink     string `json:"viewLink"`
	DownloadLink string `json:"downloadLink"`
}

// CopyRequest is the body of POST /files/{id}/copy.
type CopyRequest struct {
	TargetEmail string `json:"targetEmail"`
	NewName     string `json:"newName,omitempty"`
}

// CopyResponse is returned by POST /files/{id}/copy.
type CopyResponse struct {
	Success        bool   `json:"success"`
	OriginalFileID string `json:"originalFileId"`
	CopiedFileID   string `json:"copiedFileId"`
	Name           string `json:"name"`
	WebViewLink    string `json:"webViewLink"`
	Message        string `json:"message"`
}

// SearchResponse is returned by GET /search.
type SearchResponse struct {
	Items []SearchItem `json:"items"`
	Total int          `json:"total"`
}

// Upload handles POST /files/upload.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	form, err := readMultipart(w, r, h.svc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	mimeType := form.value("mimeType")
	if mimeType == "" {
		mimeType = form.fileMime
	}

	id, err := h.svc.UploadFile(r.Context(), form.file, gateway.Upload{
		FileName: form.value("fileName"),
		MimeType: mimeType,
		FolderID: form.value("folderId"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	WriteJSONOK(w, idResponse(id))
}

// Get handles GET /files/{id}.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	WriteJSONOK(w, toEntryResponse(e))
}

// Share handles POST /files/{id}/share.
func (h *FileHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	permID, err := h.svc.Share(r.Context(), chi.URLParam(r, "id"), req.Email, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	WriteJSONOK(w, ShareResponse{Success: true, PermissionID: permID, Message: sharedFileMessage(req.Email)})
}

// GetLink handles POST /files/{id}/getLink.
func (h *FileHandler) GetLink(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if !decodeOptionalJSONBody(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	e, err := h.svc.GetLink(r.Context(), id, req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	WriteJSONOK(w, LinkResponse{
		Success:      true,
		FileID:       id,
		ViewLink:     e.WebViewLink,
		DownloadLink: e.WebContentLink,
	})
}

// Copy handles POST /files/{id}/copy.
func (h *FileHandler) Copy(w http.ResponseWriter, r *http.Request) {
	var req CopyRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	c, err := h.svc.CopyToUser(r.Context(), id, req.TargetEmail, req.NewName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	WriteJSONOK(w, CopyResponse{
		Success:        true,
		OriginalFileID: id,
		CopiedFileID:   c.ID,
		Name:           c.Name,
		WebViewLink:    c.WebViewLink,
		Message:        copiedMessage(req.TargetEmail),
	})
}

// Search handles GET /search?query=&type=.
func (h *FileHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.svc.Search(r.Context(), q.Get("query"), q.Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]SearchItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, toSearchItem(e))
	}
	WriteJSONOK(w, SearchResponse{Items: items, Total: len(items)})
}
