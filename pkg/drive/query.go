package drive

import (
	"strings"
)

var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quote renders s as a Drive query string literal.
func quote(s string) string {
	return "'" + queryEscaper.Replace(s) + "'"
}

// BuildQuery renders q in the Drive v3 search syntax.
func BuildQuery(q Query) string {
	var clauses []string

	switch q.Kind {
	case KindFolder:
		clauses = append(clauses, "mimeType = "+quote(FolderMimeType))
	case KindFile:
		clauses = append(clauses, "mimeType != "+quote(FolderMimeType))
	}

	if q.Name != "" {
		clauses = append(clauses, "name = "+quote(q.Name))
	}
	if q.NameContains != "" {
		clauses = append(clauses, "name contains "+quote(q.NameContains))
	}
	if q.ParentID != "" {
		clauses = append(clauses, quote(q.ParentID)+" in parents")
	}
	if !q.IncludeTrashed {
		clauses = append(clauses, "trashed = false")
	}

	return strings.Join(clauses, " and ")
}
