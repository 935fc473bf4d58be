package gateway

import (
	"context"

	"github.com/transpoze/drivegate/internal/logger"
	"github.com/transpoze/drivegate/pkg/drive"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
)

// DeleteAllConfirmation must be passed to DeleteAllFolders verbatim.
const DeleteAllConfirmation = "DELETE_ALL_FOLDERS"

// FolderResult is the per-folder outcome of a bulk operation.
type FolderResult struct {
	Folder       string
	FolderID     string
	Success      bool
	PermissionID string
	Err          error
}

// BulkResult is the outcome of a bulk operation over the root folders.
type BulkResult struct {
	Total   int
	Results []FolderResult
}

// Succeeded returns how many folders were processed successfully.
func (b *BulkResult) Succeeded() int {
	n := 0
	for _, r := range b.Results {
		if r.Success {
			n++
		}
	}
	return n
}

// forEachRootFolder runs fn on every root folder in order. A failing folder
// is recorded and the loop moves on.
func (s *Service) forEachRootFolder(ctx context.Context, fn func(*drive.Entry) FolderResult) (*BulkResult, error) {
	roots, err := s.ListRootFolders(ctx)
	if err != nil {
		return nil, err
	}

	res := &BulkResult{Total: len(roots), Results: make([]FolderResult, 0, len(roots))}
	for _, f := range roots {
		if ctx.Err() != nil {
			res.Results = append(res.Results, FolderResult{Folder: f.Name, FolderID: f.ID, Err: ctx.Err()})
			continue
		}
		r := fn(f)
		if r.Err != nil {
			logger.WarnCtx(ctx, "Bulk operation failed for folder",
				logger.KeyFolderName, f.Name, logger.KeyFolderID, f.ID, logger.KeyError, r.Err)
		}
		res.Results = append(res.Results, r)
	}
	return res, nil
}

// ShareRootFolders grants email the given role on every root folder.
func (s *Service) ShareRootFolders(ctx context.Context, email, role string) (*BulkResult, error) {
	const op = "gateway.share_root_folders"
	if err := s.requireEmail(op, "email", email); err != nil {
		return nil, err
	}
	r, err := parseRole(op, role)
	if err != nil {
		return nil, err
	}

	return s.forEachRootFolder(ctx, func(f *drive.Entry) FolderResult {
		permID, err := s.client.CreatePermission(ctx, f.ID, drive.Permission{
			Type:         drive.GranteeUser,
			Role:         r,
			EmailAddress: email,
		})
		return FolderResult{Folder: f.Name, FolderID: f.ID, Success: err == nil, PermissionID: permID, Err: err}
	})
}

// DeleteAllFolders deletes every root folder and clears the path cache.
// confirm must equal DeleteAllConfirmation; otherwise nothing is contacted.
func (s *Service) DeleteAllFolders(ctx context.Context, confirm string) (*BulkResult, error) {
	if confirm != DeleteAllConfirmation {
		return nil, gwerrors.NewInvalidArgumentsError("gateway.delete_all_folders",
			`confirmation required: include {"confirm": "`+DeleteAllConfirmation+`"} in the request body`)
	}

	res, err := s.forEachRootFolder(ctx, func(f *drive.Entry) FolderResult {
		err := s.client.Delete(ctx, f.ID)
		return FolderResult{Folder: f.Name, FolderID: f.ID, Success: err == nil, Err: err}
	})
	if err != nil {
		return nil, err
	}

	s.resolver.Reset()
	logger.WarnCtx(ctx, "All root folders deleted", logger.KeyCount, res.Succeeded())
	return res, nil
}
