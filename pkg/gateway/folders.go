package gateway

import (
	"context"

	"github.com/transpoze/drivegate/internal/logger"
	"github.com/transpoze/drivegate/pkg/drive"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
	"github.com/transpoze/drivegate/pkg/folders"
)

// Contents is a folder listing split by type.
type Contents struct {
	Folders []*drive.Entry
	Files   []*drive.Entry
}

// Total returns the number of entries in the listing.
func (c Contents) Total() int {
	return len(c.Folders) + len(c.Files)
}

// FindFolder looks a folder up without creating it. found is false when no
// such folder exists.
func (s *Service) FindFolder(ctx context.Context, name, parentID string) (id string, found bool, err error) {
	if err := requireName("gateway.find_folder", "folderName", name); err != nil {
		return "", false, err
	}
	return s.resolver.Find(ctx, name, parentID)
}

// CreateFolder creates a folder unconditionally.
func (s *Service) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	if err := requireName("gateway.create_folder", "folderName", name); err != nil {
		return "", err
	}
	return s.resolver.Create(ctx, name, parentID)
}

// EnsureFolder finds or creates a folder.
func (s *Service) EnsureFolder(ctx context.Context, name, parentID string) (string, error) {
	if err := requireName("gateway.ensure_folder", "folderName", name); err != nil {
		return "", err
	}
	return s.resolver.Ensure(ctx, name, parentID)
}

// EnsureHierarchy ensures school/class/subject exist and returns their ids.
func (s *Service) EnsureHierarchy(ctx context.Context, school, class, subject string) (folders.Hierarchy, error) {
	return s.hierarchy.EnsureHierarchy(ctx, school, class, subject)
}

// ListContents returns the non-trashed children of folderID.
func (s *Service) ListContents(ctx context.Context, folderID string) (Contents, error) {
	if err := requireName("gateway.list_contents", "folderId", folderID); err != nil {
		return Contents{}, err
	}

	entries, err := s.client.List(ctx, drive.Query{ParentID: folderID})
	if err != nil {
		return Contents{}, err
	}

	c := Contents{Folders: []*drive.Entry{}, Files: []*drive.Entry{}}
	for _, e := range entries {
		if e.IsFolder() {
			c.Folders = append(c.Folders, e)
		} else {
			c.Files = append(c.Files, e)
		}
	}
	return c, nil
}

// ListRootFolders returns the non-trashed folders directly under the root.
func (s *Service) ListRootFolders(ctx context.Context) ([]*drive.Entry, error) {
	return s.client.List(ctx, drive.Query{ParentID: drive.RootID, Kind: drive.KindFolder})
}

// DeleteFolder removes a folder and every cache entry pointing at it.
func (s *Service) DeleteFolder(ctx context.Context, id string) error {
	if err := requireName("gateway.delete_folder", "folderId", id); err != nil {
		return err
	}
	if err := s.client.Delete(ctx, id); err != nil {
		return err
	}
	n := s.resolver.Forget(id)
	logger.InfoCtx(ctx, "Folder deleted", logger.KeyFolderID, id, logger.KeyCount, n)
	return nil
}

// Search finds non-trashed entries whose name contains query.
// kind is "", "folder" or "file".
func (s *Service) Search(ctx context.Context, query, kind string) ([]*drive.Entry, error) {
	if err := requireName("gateway.search", "query", query); err != nil {
		return nil, err
	}
	k, ok := drive.ParseKind(kind)
	if !ok {
		return nil, gwerrors.NewInvalidArgumentsError("gateway.search", "type must be folder or file")
	}
	return s.client.List(ctx, drive.Query{NameContains: query, Kind: k})
}
