package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/transpoze/drivegate/pkg/gateway"
)

// FolderHandler serves the /folders endpoints.
type FolderHandler struct {
	svc *gateway.Service
}

// NewFolderHandler creates a FolderHandler.
func NewFolderHandler(svc *gateway.Service) *FolderHandler {
	return &FolderHandler{svc: svc}
}

// FolderRequest is the body of find, create and ensure.
type FolderRequest struct {
	FolderName string `json:"folderName"`
	ParentID   string `json:"parentId,omitempty"`
}

// IDResponse carries a single id. ID is null when nothing was found.
type IDResponse struct {
	ID *string `json:"id"`
}

func idResponse(id string) IDResponse {
	return IDResponse{ID: &id}
}

// HierarchyRequest is the body of POST /folders/hierarchy.
type HierarchyRequest struct {
	SchoolName string `json:"schoolName"`
	ClassLevel string `json:"classLevel"`
	Subject    string `json:"subject"`
}

// HierarchyResponse carries the three resolved folder ids.
type HierarchyResponse struct {
	SchoolID  string `json:"schoolId"`
	ClassID   string `json:"classId"`
	SubjectID string `json:"subjectId"`
}

// ContentsResponse lists a folder's children.
type ContentsResponse struct {
	Folders []EntryResponse `json:"folders"`
	Files   []EntryResponse `json:"files,omitempty"`
	Total   int             `json:"total"`
}

// ShareAllRequest is the body of POST /folders/shareWithPersonal.
type ShareAllRequest struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// DeleteAllRequest is the body of DELETE /folders/deleteAll.
type DeleteAllRequest struct {
	Confirm string `json:"confirm"`
}

// BulkItem is the outcome for one folder of a bulk operation.
type BulkItem struct {
	Folder       string `json:"folder"`
	FolderID     string `json:"folderId"`
	Success      bool   `json:"success"`
	PermissionID string `json:"permissionId,omitempty"`
	Error        string `json:"error,omitempty"`
}

// BulkResponse is returned by the bulk endpoints.
type BulkResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Results []BulkItem `json:"results"`
}

func toBulkItems(res *gateway.BulkResult) []BulkItem {
	items := make([]BulkItem, 0, len(res.Results))
	for _, r := range res.Results {
		item := BulkItem{Folder: r.Folder, FolderID: r.FolderID, Success: r.Success, PermissionID: r.PermissionID}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		items = append(items, item)
	}
	return items
}

// MessageResponse is a bare success message.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Find handles POST /folders/find.
func (h *FolderHandler) Find(w http.ResponseWriter, r *http.Request) {
	var req FolderRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	id, found, err := h.svc.FindFolder(r.Context(), req.FolderName, req.ParentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !found {
		WriteJSONOK(w, IDResponse{})
		return
	}
	WriteJSONOK(w, idResponse(id))
}

// Create handles POST /folders/create.
func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req FolderRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	id, err := h.svc.CreateFolder(r.Context(), req.FolderName, req.ParentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	WriteJSONOK(w, idResponse(id))
}

// Ensure handles POST /folders/ensure.
func (h *FolderHandler) Ensure(w http.ResponseWriter, r *http.Request) {
	var req FolderRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	id, err := h.svc.EnsureFolder(r.Context(), req.FolderName, req.ParentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	WriteJSONOK(w, idResponse(id))
}

// Hierarchy handles POST /folders/hierarchy.
func (h *FolderHandler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	var req HierarchyRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	res, err := h.svc.EnsureHierarchy(r.Context(), req.SchoolName, req.ClassLevel, req.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	WriteJSONOK(w, HierarchyResponse{SchoolID: res.TopID, ClassID: res.MiddleID, SubjectID: res.LeafID})
}

// Contents handles GET /folders/{id}/contents.
func (h *FolderHandler) Contents(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.ListContents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	WriteJSONOK(w, ContentsResponse{
		Folders: toEntryResponses(c.Folders),
		Files:   toEntryResponses(c.Files),
		Total:   c.Total(),
	})
}

// Root handles GET /folders/root.
func (h *FolderHandler) Root(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListRootFolders(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	WriteJSONOK(w, ContentsResponse{Folders: toEntryResponses(entries), Total: len(entries)})
}

// Delete handles DELETE /folders/{id}.
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteFolder(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	WriteJSONOK(w, MessageResponse{Success: true, Message: "Folder " + id + " successfully deleted"})
}

// ShareWithPersonal handles POST /folders/shareWithPersonal.
func (h *FolderHandler) ShareWithPersonal(w http.ResponseWriter, r *http.Request) {
	var req ShareAllRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	res, err := h.svc.ShareRootFolders(r.Context(), req.Email, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	WriteJSONOK(w, BulkResponse{
		Success: true,
		Message: sharedMessage(res, req.Email),
		Results: toBulkItems(res),
	})
}

// DeleteAll handles DELETE /folders/deleteAll.
func (h *FolderHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	var req DeleteAllRequest
	if !decodeOptionalJSONBody(w, r, &req) {
		return
	}

	res, err := h.svc.DeleteAllFolders(r.Context(), req.Confirm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	WriteJSONOK(w, BulkResponse{
		Success: true,
		Message: deletedMessage(res),
		Results: toBulkItems(res),
	})
}
