// Package drive is the gateway's view of the remote storage provider.
//
// Client is deliberately narrow: it covers the list/create/get/copy/delete
// and permission calls the gateway makes, and nothing else. The Google
// implementation lives in google.go; pkg/drive/memory provides an in-process
// implementation for tests and offline runs.
package drive

import (
	"context"
	"io"
)

// Client is the remote storage contract.
//
// Implementations return *errors.GatewayError values: NotFound for unknown
// ids, InvalidArguments for requests Drive rejects as malformed, and
// RemoteUnavailable for everything else.
type Client interface {
	// List returns every entry matching q, following pagination.
	List(ctx context.Context, q Query) ([]*Entry, error)

	// CreateFolder creates a folder named name under parentID.
	// An empty parentID creates it in the root.
	CreateFolder(ctx context.Context, name, parentID string) (*Entry, error)

	// CreateFile streams content into a new file under parentID.
	CreateFile(ctx context.Context, name, mimeType, parentID string, content io.Reader) (*Entry, error)

	// Get fetches metadata for id.
	Get(ctx context.Context, id string) (*Entry, error)

	// Copy duplicates id as a new file named name.
	Copy(ctx context.Context, id, name string) (*Entry, error)

	// Delete permanently removes id and, for folders, its descendants.
	Delete(ctx context.Context, id string) error

	// CreatePermission grants p on id and returns the permission id.
	CreatePermission(ctx context.Context, id string, p Permission) (string, error)

	// About returns account and quota information. It doubles as the
	// connectivity probe for health checks.
	About(ctx context.Context) (*About, error)
}
