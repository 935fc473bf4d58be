package drive

import (
	"testing"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{
			name: "folder by name under parent",
			q:    Query{Name: "Grade5", ParentID: "abc", Kind: KindFolder},
			want: "mimeType = 'application/vnd.google-apps.folder' and name = 'Grade5' and 'abc' in parents and trashed = false",
		},
		{
			name: "root folders",
			q:    Query{ParentID: RootID, Kind: KindFolder},
			want: "mimeType = 'application/vnd.google-apps.folder' and 'root' in parents and trashed = false",
		},
		{
			name: "file search",
			q:    Query{NameContains: "lesson", Kind: KindFile},
			want: "mimeType != 'application/vnd.google-apps.folder' and name contains 'lesson' and trashed = false",
		},
		{
			name: "children including trashed",
			q:    Query{ParentID: "p1", IncludeTrashed: true},
			want: "'p1' in parents",
		},
		{
			name: "quotes and backslashes are escaped",
			q:    Query{Name: `O'Brien\Class`},
			want: `name = 'O\'Brien\\Class' and trashed = false`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildQuery(tt.q); got != tt.want {
				t.Errorf("BuildQuery() = %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in     string
		want   Kind
		wantOK bool
	}{
		{"", KindAny, true},
		{"folder", KindFolder, true},
		{"file", KindFile, true},
		{"album", KindAny, false},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseKind(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestRoleIsValid(t *testing.T) {
	for _, r := range []Role{"reader", "writer", "commenter", "owner"} {
		if !r.IsValid() {
			t.Errorf("Expected role %q to be valid", r)
		}
	}
	if Role("admin").IsValid() {
		t.Error("Expected role admin to be invalid")
	}
}
