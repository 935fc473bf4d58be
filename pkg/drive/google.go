package drive

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/transpoze/drivegate/internal/logger"
	"github.com/transpoze/drivegate/internal/telemetry"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
)

// entryFields is the partial-response selector for a single file.
const entryFields = "id, name, mimeType, size, createdTime, modifiedTime, webViewLink, webContentLink, parents, trashed"

// listFields is the partial-response selector for list calls.
const listFields = googleapi.Field("nextPageToken, files(" + entryFields + ")")

// Metrics records Drive call outcomes. A nil Metrics disables collection.
type Metrics interface {
	ObserveOperation(operation string, duration time.Duration, err error)
	RecordBytes(operation string, n int64)
}

// GoogleClient implements Client on top of the Drive v3 API.
type GoogleClient struct {
	svc       *drive.Service
	pageSize  int64
	chunkSize int
	metrics   Metrics
}

var _ Client = (*GoogleClient)(nil)

// NewGoogleClient authenticates with the configured service account (or
// Application Default Credentials) and returns a ready client.
func NewGoogleClient(ctx context.Context, cfg Config, metrics Metrics) (*GoogleClient, error) {
	cfg.ApplyDefaults()

	// oauth2 uses this client as the base transport for token and API calls.
	base := &http.Client{Timeout: cfg.Timeout}
	authCtx := context.WithValue(ctx, oauth2.HTTPClient, base)

	var httpClient *http.Client
	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		jwtCfg, err := google.JWTConfigFromJSON(data, drive.DriveScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account key: %w", err)
		}
		jwtCfg.Subject = cfg.Impersonate
		httpClient = jwtCfg.Client(authCtx)
		logger.Info("Drive client using service account",
			logger.KeyAccount, jwtCfg.Email,
			logger.KeyImpersonate, cfg.Impersonate)
	} else {
		creds, err := google.FindDefaultCredentials(authCtx, drive.DriveScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w", err)
		}
		httpClient = oauth2.NewClient(authCtx, creds.TokenSource)
		logger.Info("Drive client using application default credentials")
	}

	svc, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &GoogleClient{
		svc:       svc,
		pageSize:  cfg.PageSize,
		chunkSize: int(cfg.UploadChunkSize),
		metrics:   metrics,
	}, nil
}

// observe ends span and records metrics for a finished call.
func (c *GoogleClient) observe(ctx context.Context, op string, start time.Time, err error) {
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	if c.metrics != nil {
		c.metrics.ObserveOperation(op, time.Since(start), err)
	}
}

// List implements Client.
func (c *GoogleClient) List(ctx context.Context, q Query) ([]*Entry, error) {
	query := BuildQuery(q)
	ctx, span := telemetry.StartDriveSpan(ctx, "list", telemetry.DriveQuery(query))
	defer span.End()
	start := time.Now()

	var entries []*Entry
	call := c.svc.Files.List().
		Q(query).
		Spaces("drive").
		OrderBy("createdTime").
		PageSize(c.pageSize).
		Fields(listFields)

	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			entries = append(entries, toEntry(f))
		}
		return nil
	})
	if err != nil {
		err = mapError("drive.list", "", err)
	}
	c.observe(ctx, "list", start, err)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int(telemetry.AttrDriveResults, len(entries)))
	logger.DebugCtx(ctx, "Drive list", logger.KeyQuery, query, logger.KeyCount, len(entries))
	return entries, nil
}

// CreateFolder implements Client.
func (c *GoogleClient) CreateFolder(ctx context.Context, name, parentID string) (*Entry, error) {
	ctx, span := telemetry.StartDriveSpan(ctx, "create_folder",
		telemetry.FolderName(name), telemetry.ParentID(parentID))
	defer span.End()
	start := time.Now()

	meta := &drive.File{Name: name, MimeType: FolderMimeType}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	f, err := c.svc.Files.Create(meta).Fields(entryFields).Context(ctx).Do()
	if err != nil {
		err = mapError("drive.create_folder", parentID, err)
	}
	c.observe(ctx, "create_folder", start, err)
	if err != nil {
		return nil, err
	}
	return toEntry(f), nil
}

// CreateFile implements Client.
func (c *GoogleClient) CreateFile(ctx context.Context, name, mimeType, parentID string, content io.Reader) (*Entry, error) {
	ctx, span := telemetry.StartDriveSpan(ctx, "create_file",
		telemetry.FileName(name), telemetry.ParentID(parentID))
	defer span.End()
	start := time.Now()

	meta := &drive.File{Name: name, MimeType: mimeType}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	counter := &countingReader{r: content}
	f, err := c.svc.Files.Create(meta).
		Media(counter, googleapi.ContentType(mimeType), googleapi.ChunkSize(c.chunkSize)).
		Fields(entryFields).
		Context(ctx).
		Do()
	if err != nil {
		err = mapError("drive.create_file", parentID, err)
	}
	c.observe(ctx, "create_file", start, err)
	if c.metrics != nil {
		c.metrics.RecordBytes("create_file", counter.n)
	}
	if err != nil {
		return nil, err
	}
	return toEntry(f), nil
}

// Get implements Client.
func (c *GoogleClient) Get(ctx context.Context, id string) (*Entry, error) {
	ctx, span := telemetry.StartDriveSpan(ctx, "get", telemetry.FileID(id))
	defer span.End()
	start := time.Now()

	f, err := c.svc.Files.Get(id).Fields(entryFields).Context(ctx).Do()
	if err != nil {
		err = mapError("drive.get", id, err)
	}
	c.observe(ctx, "get", start, err)
	if err != nil {
		return nil, err
	}
	return toEntry(f), nil
}

// Copy implements Client.
func (c *GoogleClient) Copy(ctx context.Context, id, name string) (*Entry, error) {
	ctx, span := telemetry.StartDriveSpan(ctx, "copy", telemetry.FileID(id))
	defer span.End()
	start := time.Now()

	f, err := c.svc.Files.Copy(id, &drive.File{Name: name}).Fields(entryFields).Context(ctx).Do()
	if err != nil {
		err = mapError("drive.copy", id, err)
	}
	c.observe(ctx, "copy", start, err)
	if err != nil {
		return nil, err
	}
	return toEntry(f), nil
}

// Delete implements Client.
func (c *GoogleClient) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartDriveSpan(ctx, "delete", telemetry.FileID(id))
	defer span.End()
	start := time.Now()

	err := c.svc.Files.Delete(id).Context(ctx).Do()
	if err != nil {
		err = mapError("drive.delete", id, err)
	}
	c.observe(ctx, "delete", start, err)
	return err
}

// CreatePermission implements Client.
func (c *GoogleClient) CreatePermission(ctx context.Context, id string, p Permission) (string, error) {
	ctx, span := telemetry.StartDriveSpan(ctx, "create_permission",
		telemetry.FileID(id), attribute.String(telemetry.AttrPermissionRole, string(p.Role)))
	defer span.End()
	start := time.Now()

	call := c.svc.Permissions.Create(id, &drive.Permission{
		Type:         string(p.Type),
		Role:         string(p.Role),
		EmailAddress: p.EmailAddress,
	}).Fields("id").Context(ctx)

	// Notification mails are suppressed except for ownership transfers,
	// which Drive always notifies.
	if p.Type == GranteeUser {
		call = call.SendNotificationEmail(p.Role == RoleOwner)
	}
	if p.Role == RoleOwner {
		call = call.TransferOwnership(true)
	}

	perm, err := call.Do()
	if err != nil {
		err = mapError("drive.create_permission", id, err)
	}
	c.observe(ctx, "create_permission", start, err)
	if err != nil {
		return "", err
	}
	return perm.Id, nil
}

// About implements Client.
func (c *GoogleClient) About(ctx context.Context) (*About, error) {
	ctx, span := telemetry.StartDriveSpan(ctx, "about")
	defer span.End()
	start := time.Now()

	a, err := c.svc.About.Get().Fields("user, storageQuota").Context(ctx).Do()
	if err != nil {
		err = mapError("drive.about", "", err)
	}
	c.observe(ctx, "about", start, err)
	if err != nil {
		return nil, err
	}

	out := &About{}
	if a.User != nil {
		out.UserEmail = a.User.EmailAddress
		out.UserName = a.User.DisplayName
	}
	if a.StorageQuota != nil {
		out.QuotaLimit = a.StorageQuota.Limit
		out.QuotaUsage = a.StorageQuota.Usage
		out.UsageInDrive = a.StorageQuota.UsageInDrive
	}
	return out, nil
}

// toEntry converts a Drive API file into an Entry.
func toEntry(f *drive.File) *Entry {
	if f == nil {
		return &Entry{}
	}
	return &Entry{
		ID:             f.Id,
		Name:           f.Name,
		MimeType:       f.MimeType,
		Size:           f.Size,
		CreatedTime:    parseTime(f.CreatedTime),
		ModifiedTime:   parseTime(f.ModifiedTime),
		WebViewLink:    f.WebViewLink,
		WebContentLink: f.WebContentLink,
		Parents:        f.Parents,
		Trashed:        f.Trashed,
	}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// mapError converts a Drive API failure into the gateway taxonomy.
func mapError(op, id string, err error) error {
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return gwerrors.NewNotFoundError(op, id)
		case http.StatusBadRequest:
			return gwerrors.NewInvalidArgumentsError(op, apiErr.Message)
		}
	}
	return gwerrors.NewRemoteUnavailableError(op, err)
}

// countingReader counts bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
