package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/transpoze/drivegate/pkg/drive"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// decodeJSONBody decodes a JSON request body into the provided pointer.
// Returns true if successful, false if decoding fails (error response is written automatically).
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v); err != nil {
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// decodeOptionalJSONBody is decodeJSONBody for endpoints whose body may be
// omitted entirely. An empty body leaves v untouched.
func decodeOptionalJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// EntryResponse is the JSON form of a Drive entry.
type EntryResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	MimeType       string     `json:"mimeType"`
	Size           int64      `json:"size,omitempty"`
	CreatedTime    *time.Time `json:"createdTime,omitempty"`
	ModifiedTime   *time.Time `json:"modifiedTime,omitempty"`
	WebViewLink    string     `json:"webViewLink,omitempty"`
	WebContentLink string     `json:"webContentLink,omitempty"`
	Parents        []string   `json:"parents,omitempty"`
}

// SearchItem is an EntryResponse that also names its first parent.
type SearchItem struct {
	EntryResponse
	ParentID *string `json:"parentId"`
}

func toEntryResponse(e *drive.Entry) EntryResponse {
	out := EntryResponse{
		ID:             e.ID,
		Name:           e.Name,
		Type:           e.TypeName(),
		MimeType:       e.MimeType,
		Size:           e.Size,
		WebViewLink:    e.WebViewLink,
		WebContentLink: e.WebContentLink,
		Parents:        e.Parents,
	}
	if !e.CreatedTime.IsZero() {
		t := e.CreatedTime.UTC()
		out.CreatedTime = &t
	}
	if !e.ModifiedTime.IsZero() {
		t := e.ModifiedTime.UTC()
		out.ModifiedTime = &t
	}
	return out
}

func toEntryResponses(entries []*drive.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return out
}

func toSearchItem(e *drive.Entry) SearchItem {
	item := SearchItem{EntryResponse: toEntryResponse(e)}
	if p := e.FirstParent(); p != "" {
		item.ParentID = &p
	}
	return item
}
