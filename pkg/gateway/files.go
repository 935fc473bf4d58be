package gateway

import (
	"context"
	"io"
	"strings"

	"github.com/transpoze/drivegate/internal/logger"
	"github.com/transpoze/drivegate/internal/telemetry"
	"github.com/transpoze/drivegate/pkg/drive"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
	"github.com/transpoze/drivegate/pkg/staging"
)

// RecordingMimeType is the mime type of converted recordings.
const RecordingMimeType = "audio/wav"

// defaultMimeType is used when neither the client nor the form names one.
const defaultMimeType = "application/octet-stream"

// LinkView requests a read-only public link. Any other link type grants
// write access.
const LinkView = "view"

// Upload describes a file received through /files/upload.
type Upload struct {
	FileName string // display name; defaults to the original file name
	MimeType string
	FolderID string
}

// Recording describes a file received through /recordings/save.
type Recording struct {
	School   string
	Class    string
	Subject  string
	FileName string
}

// SavedRecording is the outcome of SaveRecording.
type SavedRecording struct {
	FileID string
	Path   string
	Format string
}

// Stage writes r into the staging area. The returned file is owned by the
// caller until passed to UploadFile or SaveRecording.
func (s *Service) Stage(r io.Reader, originalName string) (*staging.File, error) {
	return s.staging.Save(r, originalName)
}

// UploadFile uploads a staged file and removes it.
func (s *Service) UploadFile(ctx context.Context, f *staging.File, u Upload) (string, error) {
	defer f.Remove()

	if err := requireName("gateway.upload_file", "folderId", u.FolderID); err != nil {
		return "", err
	}

	name := u.FileName
	if name == "" {
		name = f.OriginalName
	}
	if err := requireName("gateway.upload_file", "fileName", name); err != nil {
		return "", err
	}
	mimeType := u.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	return s.uploader.Upload(ctx, f.Path, name, mimeType, u.FolderID)
}

// SaveRecording converts a staged recording to PCM, ensures the
// school/class/subject hierarchy and uploads the result into the subject
// folder. The staged original and the converted output are removed on
// every path.
func (s *Service) SaveRecording(ctx context.Context, f *staging.File, rec Recording) (saved *SavedRecording, err error) {
	defer f.Remove()

	telemetry.WithOperation(ctx, telemetry.SpanRecording, func(ctx context.Context) {
		saved, err = s.saveRecording(ctx, f, rec)
	})
	return saved, err
}

func (s *Service) saveRecording(ctx context.Context, f *staging.File, rec Recording) (*SavedRecording, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanRecording)
	defer span.End()

	var missing []string
	for _, field := range []struct{ name, value string }{
		{"schoolName", rec.School},
		{"classLevel", rec.Class},
		{"subject", rec.Subject},
		{"fileName", rec.FileName},
	} {
		if err := requireName("gateway.save_recording", field.name, field.value); err != nil {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return nil, gwerrors.NewInvalidArgumentsError("gateway.save_recording",
			"missing required parameters: "+strings.Join(missing, ", "))
	}

	converted := f.Derived("_converted.wav")
	if err := s.transcoder.ToPCM(ctx, f.Path, converted); err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	h, err := s.hierarchy.EnsureHierarchy(ctx, rec.School, rec.Class, rec.Subject)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	id, err := s.uploader.Upload(ctx, converted, rec.FileName, RecordingMimeType, h.LeafID)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	p := strings.Join([]string{rec.School, rec.Class, rec.Subject, rec.FileName}, "/")
	logger.InfoCtx(ctx, "Recording saved", logger.KeyFileID, id, logger.KeyPath, p)

	return &SavedRecording{FileID: id, Path: p, Format: s.transcoder.Format()}, nil
}

// GetFile returns metadata for id.
func (s *Service) GetFile(ctx context.Context, id string) (*drive.Entry, error) {
	if err := requireName("gateway.get_file", "fileId", id); err != nil {
		return nil, err
	}
	return s.client.Get(ctx, id)
}

// Share grants email the given role on id without sending a notification.
func (s *Service) Share(ctx context.Context, id, email, role string) (string, error) {
	const op = "gateway.share"
	if err := s.requireEmail(op, "email", email); err != nil {
		return "", err
	}
	r, err := parseRole(op, role)
	if err != nil {
		return "", err
	}

	permID, err := s.client.CreatePermission(ctx, id, drive.Permission{
		Type:         drive.GranteeUser,
		Role:         r,
		EmailAddress: email,
	})
	if err != nil {
		return "", err
	}
	logger.InfoCtx(ctx, "File shared", logger.KeyFileID, id, logger.KeyEmail, email, logger.KeyRole, string(r))
	return permID, nil
}

// GetLink makes id reachable by anyone with the link and returns its
// metadata, which carries the view and download links.
func (s *Service) GetLink(ctx context.Context, id, linkType string) (*drive.Entry, error) {
	role := drive.RoleWriter
	if linkType == "" || linkType == LinkView {
		role = drive.RoleReader
	}

	if _, err := s.client.CreatePermission(ctx, id, drive.Permission{Type: drive.GranteeAnyone, Role: role}); err != nil {
		return nil, err
	}
	return s.client.Get(ctx, id)
}

// CopyToUser grants targetEmail write access to id and then copies it.
// The copy is named newName, or "Copy of <name>" when newName is empty.
func (s *Service) CopyToUser(ctx context.Context, id, targetEmail, newName string) (*drive.Entry, error) {
	if err := s.requireEmail("gateway.copy", "targetEmail", targetEmail); err != nil {
		return nil, err
	}

	if _, err := s.client.CreatePermission(ctx, id, drive.Permission{
		Type:         drive.GranteeUser,
		Role:         drive.RoleWriter,
		EmailAddress: targetEmail,
	}); err != nil {
		return nil, err
	}

	name := newName
	if name == "" {
		orig, err := s.client.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		name = "Copy of " + orig.Name
	}

	return s.client.Copy(ctx, id, name)
}
