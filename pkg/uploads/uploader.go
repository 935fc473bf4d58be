// Package uploads streams staged local files into Drive folders.
package uploads

import (
	"context"
	"os"
	"time"

	"github.com/transpoze/drivegate/internal/logger"
	"github.com/transpoze/drivegate/internal/telemetry"
	"github.com/transpoze/drivegate/pkg/drive"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
)

// Metrics records upload outcomes. A nil Metrics disables collection.
type Metrics interface {
	ObserveUpload(bytes int64, duration time.Duration, err error)
}

// Uploader creates Drive files from local paths.
type Uploader struct {
	client  drive.Client
	metrics Metrics
}

// New creates an Uploader.
func New(client drive.Client, metrics Metrics) *Uploader {
	return &Uploader{client: client, metrics: metrics}
}

// Upload streams localPath into a new file named displayName under
// parentID and returns its id. It does not retry and does not remove
// localPath; the caller owns the file.
func (u *Uploader) Upload(ctx context.Context, localPath, displayName, mimeType, parentID string) (string, error) {
	ctx, span := telemetry.StartUploadSpan(ctx, displayName, parentID)
	defer span.End()
	start := time.Now()

	id, size, err := u.upload(ctx, localPath, displayName, mimeType, parentID)
	if u.metrics != nil {
		u.metrics.ObserveUpload(size, time.Since(start), err)
	}
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.WarnCtx(ctx, "Upload failed",
			logger.KeyFileName, displayName,
			logger.KeyParentID, parentID,
			logger.KeyError, err)
		return "", err
	}

	logger.InfoCtx(ctx, "File uploaded",
		logger.KeyFileName, displayName,
		logger.KeyFileID, id,
		logger.KeyParentID, parentID,
		logger.KeySize, size,
		logger.KeyDurationMs, logger.Duration(start))
	return id, nil
}

func (u *Uploader) upload(ctx context.Context, localPath, displayName, mimeType, parentID string) (string, int64, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", 0, gwerrors.NewUploadFailedError("uploads.upload", "cannot open staged file", err)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	entry, err := u.client.CreateFile(ctx, displayName, mimeType, parentID, f)
	if err != nil {
		if gwerrors.CodeOf(err) != 0 {
			return "", size, err
		}
		return "", size, gwerrors.NewUploadFailedError("uploads.upload", "drive rejected upload", err)
	}
	if entry == nil || entry.ID == "" {
		return "", size, gwerrors.NewUploadFailedError("uploads.upload", "drive returned no file id", nil)
	}
	return entry.ID, size, nil
}
