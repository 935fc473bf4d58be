package drive

import (
	"time"
)

// FolderMimeType is the mime type Drive uses for folders.
const FolderMimeType = "application/vnd.google-apps.folder"

// RootID is the Drive alias for the authenticated account's root folder.
const RootID = "root"

// Kind filters list queries by entry type.
type Kind int

const (
	// KindAny matches folders and files.
	KindAny Kind = iota
	// KindFolder matches folders only.
	KindFolder
	// KindFile matches everything that is not a folder.
	KindFile
)

// ParseKind converts the "type" query parameter into a Kind.
// The empty string means KindAny.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "":
		return KindAny, true
	case "folder":
		return KindFolder, true
	case "file":
		return KindFile, true
	default:
		return KindAny, false
	}
}

// Entry is the subset of Drive file metadata the gateway exposes.
type Entry struct {
	ID             string
	Name           string
	MimeType       string
	Size           int64
	CreatedTime    time.Time
	ModifiedTime   time.Time
	WebViewLink    string
	WebContentLink string
	Parents        []string
	Trashed        bool
}

// IsFolder reports whether the entry is a Drive folder.
func (e *Entry) IsFolder() bool {
	return e.MimeType == FolderMimeType
}

// TypeName returns "folder" or "file".
func (e *Entry) TypeName() string {
	if e.IsFolder() {
		return "folder"
	}
	return "file"
}

// FirstParent returns the first parent id, or "" when the entry has none.
func (e *Entry) FirstParent() string {
	if len(e.Parents) == 0 {
		return ""
	}
	return e.Parents[0]
}

// Query selects entries for List.
type Query struct {
	// Name requires an exact name match.
	Name string

	// NameContains requires a substring match on the name.
	NameContains string

	// ParentID restricts results to direct children of the given folder.
	// Empty means any parent.
	ParentID string

	// Kind restricts results to folders or files.
	Kind Kind

	// IncludeTrashed includes soft-deleted entries.
	IncludeTrashed bool
}

// Role is a Drive permission role.
type Role string

const (
	RoleReader    Role = "reader"
	RoleWriter    Role = "writer"
	RoleCommenter Role = "commenter"
	RoleOwner     Role = "owner"
)

// ValidRoles lists the roles accepted by the share endpoints.
var ValidRoles = []Role{RoleReader, RoleWriter, RoleCommenter, RoleOwner}

// IsValid reports whether r is one of ValidRoles.
func (r Role) IsValid() bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// GranteeType is the Drive permission grantee type.
type GranteeType string

const (
	GranteeUser   GranteeType = "user"
	GranteeAnyone GranteeType = "anyone"
)

// Permission describes an access grant on an entry.
type Permission struct {
	Type         GranteeType
	Role         Role
	EmailAddress string
}

// About describes the authenticated Drive account.
type About struct {
	UserEmail    string
	UserName     string
	QuotaLimit   int64
	QuotaUsage   int64
	UsageInDrive int64
}
