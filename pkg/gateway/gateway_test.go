package gateway

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transpoze/drivegate/pkg/drive"
	"github.com/transpoze/drivegate/pkg/drive/memory"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
	"github.com/transpoze/drivegate/pkg/staging"
)

type fakeTranscoder struct {
	err   error
	calls int
}

func (f *fakeTranscoder) ToPCM(_ context.Context, in, out string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	return os.WriteFile(out, append([]byte("PCM:"), data...), 0600)
}

func (f *fakeTranscoder) Format() string { return "PCM 16-bit, 16kHz, mono" }

type fixture struct {
	svc    *Service
	client *memory.Client
	tc     *fakeTranscoder
	area   *staging.Area
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	area, err := staging.New(staging.Config{Dir: t.TempDir()})
	require.NoError(t, err)

	client := memory.New()
	tc := &fakeTranscoder{}
	svc, err := New(Deps{Client: client, Transcoder: tc, Staging: area, Version: "1.2.3"})
	require.NoError(t, err)
	return &fixture{svc: svc, client: client, tc: tc, area: area}
}

func (f *fixture) stage(t *testing.T, body, name string) *staging.File {
	t.Helper()
	sf, err := f.svc.Stage(strings.NewReader(body), name)
	require.NoError(t, err)
	return sf
}

func (f *fixture) stagedFiles(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.area.Dir())
	require.NoError(t, err)
	return len(entries)
}

func TestNewRequiresDependencies(t *testing.T) {
	area, err := staging.New(staging.Config{Dir: t.TempDir()})
	require.NoError(t, err)

	_, err = New(Deps{Transcoder: &fakeTranscoder{}, Staging: area})
	assert.Error(t, err)
	_, err = New(Deps{Client: memory.New(), Staging: area})
	assert.Error(t, err)
	_, err = New(Deps{Client: memory.New(), Transcoder: &fakeTranscoder{}})
	assert.Error(t, err)
}

func TestFolderOperationsRejectBlankNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.FindFolder(ctx, " ", "")
	assert.True(t, gwerrors.IsInvalidArgumentsError(err))
	_, err = f.svc.CreateFolder(ctx, "", "")
	assert.True(t, gwerrors.IsInvalidArgumentsError(err))
	_, err = f.svc.EnsureFolder(ctx, "", "p")
	assert.True(t, gwerrors.IsInvalidArgumentsError(err))

	assert.Zero(t, f.client.TotalCalls())
}

func TestFindThenEnsure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, found, err := f.svc.FindFolder(ctx, "School", "")
	require.NoError(t, err)
	assert.False(t, found)

	id, err := f.svc.EnsureFolder(ctx, "School", "")
	require.NoError(t, err)

	got, found, err := f.svc.FindFolder(ctx, "School", "")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id, got)
	assert.Equal(t, 1, f.svc.CacheSize())
}

func TestListContentsSplitsByType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent := f.client.Seed(drive.Entry{Name: "P", MimeType: drive.FolderMimeType})
	f.client.Seed(drive.Entry{Name: "sub", MimeType: drive.FolderMimeType, Parents: []string{parent.ID}})
	f.client.Seed(drive.Entry{Name: "a.wav", MimeType: "audio/wav", Parents: []string{parent.ID}})
	f.client.Seed(drive.Entry{Name: "b.wav", MimeType: "audio/wav", Parents: []string{parent.ID}})
	f.client.Seed(drive.Entry{Name: "gone.wav", MimeType: "audio/wav", Parents: []string{parent.ID}, Trashed: true})

	c, err := f.svc.ListContents(ctx, parent.ID)
	require.NoError(t, err)
	assert.Len(t, c.Folders, 1)
	assert.Len(t, c.Files, 2)
	assert.Equal(t, 3, c.Total())
}

func TestListRootFoldersOnlyReturnsRootFolders(t *testing.T) {
	f := newFixture(t)

	top := f.client.Seed(drive.Entry{Name: "Top", MimeType: drive.FolderMimeType})
	f.client.Seed(drive.Entry{Name: "Nested", MimeType: drive.FolderMimeType, Parents: []string{top.ID}})
	f.client.Seed(drive.Entry{Name: "loose.txt", MimeType: "text/plain"})

	roots, err := f.svc.ListRootFolders(context.Background())
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "Top", roots[0].Name)
}

func TestDeleteFolderForgetsCachedEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.EnsureFolder(ctx, "Stale", "")
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteFolder(ctx, id))
	assert.Zero(t, f.svc.CacheSize())

	again, err := f.svc.EnsureFolder(ctx, "Stale", "")
	require.NoError(t, err)
	assert.NotEqual(t, id, again)
}

func TestDeleteFolderUnknownID(t *testing.T) {
	f := newFixture(t)
	err := f.svc.DeleteFolder(context.Background(), "missing")
	assert.True(t, gwerrors.IsNotFoundError(err))
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.client.Seed(drive.Entry{Name: "Math", MimeType: drive.FolderMimeType})
	f.client.Seed(drive.Entry{Name: "math-notes.txt", MimeType: "text/plain"})
	f.client.Seed(drive.Entry{Name: "History", MimeType: drive.FolderMimeType})

	all, err := f.svc.Search(ctx, "math", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyFolders, err := f.svc.Search(ctx, "math", "folder")
	require.NoError(t, err)
	require.Len(t, onlyFolders, 1)
	assert.Equal(t, "Math", onlyFolders[0].Name)

	_, err = f.svc.Search(ctx, "math", "shortcut")
	assert.True(t, gwerrors.IsInvalidArgumentsError(err))
	_, err = f.svc.Search(ctx, "", "")
	assert.True(t, gwerrors.IsInvalidArgumentsError(err))
}

func TestShare(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	file := f.client.Seed(drive.Entry{Name: "a.wav", MimeType: "audio/wav"})

	permID, err := f.svc.Share(ctx, file.ID, "staff@example.com", "")
	require.NoError(t, err)
	assert.NotEmpty(t, permID)

	perms := f.client.Permissions(file.ID)
	require.Len(t, perms, 1)
	assert.Equal(t, drive.RoleReader, perms[0].Role)
	assert.Equal(t, drive.GranteeUser, perms[0].Type)

	_, err = f.svc.Share(ctx, file.ID, "not-an-email", "reader")
	assert.True(t, gwerrors.IsInvalidArgumentsError(err))
	_, err = f.svc.Share(ctx, file.ID, "", "reader")
	assert.True(t, gwerrors.IsInvalidArgumentsError(err))
	_, err = f.svc.Share(ctx, file.ID, "staff@example.com", "admin")
	assert.True(t, gwerrors.IsInvalidArgumentsError(err))
	assert.Len(t, f.client.Permissions(file.ID), 1)
}

func TestGetLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	file := f.client.Seed(drive.Entry{
		Name:           "a.wav",
		WebViewLink:    "https://drive/view",
		WebContentLink: "https://drive/download",
	})

	e, err := f.svc.GetLink(ctx, file.ID, "view")
	require.NoError(t, err)
	assert.Equal(t, "https://drive/view", e.WebViewLink)
	assert.Equal(t, "https://drive/download", e.WebContentLink)

	_, err = f.svc.GetLink(ctx, file.ID, "edit")
	require.NoError(t, err)

	perms := f.client.Permissions(file.ID)
	require.Len(t, perms, 2)
	assert.Equal(t, drive.GranteeAnyone, perms[0].Type)
	assert.Equal(t, drive.RoleReader, perms[0].Role)
	assert.Equal(t, drive.RoleWriter, perms[1].Role)
}

func TestCopyToUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	file := f.client.Seed(drive.Entry{Name: "lesson.wav"})

	c, err := f.svc.CopyToUser(ctx, file.ID, "me@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "Copy of lesson.wav", c.Name)
	assert.NotEqual(t, file.ID, c.ID)

	named, err := f.svc.CopyToUser(ctx, file.ID, "me@example.com", "mine.wav")
	require.NoError(t, err)
	assert.Equal(t, "mine.wav", named.Name)

	perms := f.client.Permissions(file.ID)
	require.Len(t, perms, 2)
	assert.Equal(t, drive.RoleWriter, perms[0].Role)
	assert.Equal(t, "me@example.com", perms[0].EmailAddress)
}

func TestShareRootFoldersContinuesPastFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client.Seed(drive.Entry{Name: "A", MimeType: drive.FolderMimeType})
	f.client.Seed(drive.Entry{Name: "B", MimeType: drive.FolderMimeType})

	// The hook runs after the fault is read, so arming it on the first
	// grant makes only the second one fail.
	f.client.OnCall(func(op memory.Op) {
		if op == memory.OpCreatePermission {
			f.client.FailOn(memory.OpCreatePermission, errors.New("quota"))
		}
	})

	res, err := f.svc.ShareRootFolders(ctx, "me@example.com", "writer")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Succeeded())
	require.Len(t, res.Results, 2)
	assert.True(t, res.Results[0].Success)
	assert.NotEmpty(t, res.Results[0].PermissionID)
	assert.False(t, res.Results[1].Success)
	assert.Error(t, res.Results[1].Err)
}

func TestDeleteAllFoldersRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	f.client.Seed(drive.Entry{Name: "A", MimeType: drive.FolderMimeType})

	_, err := f.svc.DeleteAllFolders(context.Background(), "yes")
	assert.True(t, gwerrors.IsInvalidArgumentsError(err))
	assert.Zero(t, f.client.TotalCalls())
	assert.Equal(t, 1, f.client.Count())
}

func TestDeleteAllFoldersClearsCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.EnsureHierarchy(ctx, "SchoolA", "Grade5", "Math")
	require.NoError(t, err)
	_, err = f.svc.EnsureFolder(ctx, "SchoolB", "")
	require.NoError(t, err)
	require.Equal(t, 4, f.svc.CacheSize())

	res, err := f.svc.DeleteAllFolders(ctx, DeleteAllConfirmation)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Succeeded())
	assert.Zero(t, f.svc.CacheSize())
	assert.Zero(t, f.client.Count())
}

func TestUploadFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.client.Seed(drive.Entry{Name: "Inbox", MimeType: drive.FolderMimeType})

	sf := f.stage(t, "hello", "greeting.txt")
	id, err := f.svc.UploadFile(ctx, sf, Upload{FolderID: folder.ID})
	require.NoError(t, err)

	e, err := f.svc.GetFile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "greeting.txt", e.Name)
	assert.Equal(t, defaultMimeType, e.MimeType)
	content, _ := f.client.Content(id)
	assert.Equal(t, "hello", string(content))
	assert.Zero(t, f.stagedFiles(t))
}

func TestUploadFileRequiresFolder(t *testing.T) {
	f := newFixture(t)

	sf := f.stage(t, "hello", "greeting.txt")
	_, err := f.svc.UploadFile(context.Background(), sf, Upload{})
	assert.True(t, gwerrors.IsInvalidArgumentsError(err))
	assert.Zero(t, f.stagedFiles(t))
	assert.Zero(t, f.client.TotalCalls())
}

func TestSaveRecording(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sf := f.stage(t, "webm-bytes", "rec.webm")
	saved, err := f.svc.SaveRecording(ctx, sf, Recording{
		School: "SchoolA", Class: "Grade5", Subject: "Math", FileName: "lesson1.wav",
	})
	require.NoError(t, err)

	assert.Equal(t, "SchoolA/Grade5/Math/lesson1.wav", saved.Path)
	assert.Equal(t, "PCM 16-bit, 16kHz, mono", saved.Format)

	e, err := f.svc.GetFile(ctx, saved.FileID)
	require.NoError(t, err)
	assert.Equal(t, RecordingMimeType, e.MimeType)
	assert.Equal(t, "lesson1.wav", e.Name)

	content, _ := f.client.Content(saved.FileID)
	assert.Equal(t, "PCM:webm-bytes", string(content))

	h, err := f.svc.EnsureHierarchy(ctx, "SchoolA", "Grade5", "Math")
	require.NoError(t, err)
	assert.Equal(t, h.LeafID, e.FirstParent())

	assert.Zero(t, f.stagedFiles(t))
}

func TestSaveRecordingPathKeepsNamesVerbatim(t *testing.T) {
	f := newFixture(t)

	sf := f.stage(t, "webm-bytes", "rec.webm")
	saved, err := f.svc.SaveRecording(context.Background(), sf, Recording{
		School: "SchoolA", Class: "Grade 5/", Subject: "a/../b", FileName: "lesson.wav",
	})
	require.NoError(t, err)
	assert.Equal(t, "SchoolA/Grade 5//a/../b/lesson.wav", saved.Path)
}

func TestSaveRecordingConversionFailureCleansUp(t *testing.T) {
	f := newFixture(t)
	f.tc.err = gwerrors.NewConversionFailedError("transcode", "bad input", nil)

	sf := f.stage(t, "garbage", "rec.webm")
	_, err := f.svc.SaveRecording(context.Background(), sf, Recording{
		School: "S", Class: "C", Subject: "M", FileName: "x.wav",
	})
	assert.Equal(t, gwerrors.ErrConversionFailed, gwerrors.CodeOf(err))
	assert.Zero(t, f.client.TotalCalls())
	assert.Zero(t, f.stagedFiles(t))
}

func TestSaveRecordingHierarchyFailureCleansUp(t *testing.T) {
	f := newFixture(t)
	f.client.FailOn(memory.OpList, errors.New("drive down"))

	sf := f.stage(t, "audio", "rec.webm")
	_, err := f.svc.SaveRecording(context.Background(), sf, Recording{
		School: "S", Class: "C", Subject: "M", FileName: "x.wav",
	})
	assert.True(t, gwerrors.IsRemoteError(err))
	assert.Equal(t, 1, f.tc.calls)
	assert.Zero(t, f.client.Calls(memory.OpCreateFile))
	assert.Zero(t, f.stagedFiles(t))
}

func TestSaveRecordingUploadFailureCleansUp(t *testing.T) {
	f := newFixture(t)
	f.client.OmitIDOn(memory.OpCreateFile, true)

	sf := f.stage(t, "audio", "rec.webm")
	_, err := f.svc.SaveRecording(context.Background(), sf, Recording{
		School: "S", Class: "C", Subject: "M", FileName: "x.wav",
	})
	assert.Equal(t, gwerrors.ErrUploadFailed, gwerrors.CodeOf(err))
	assert.Zero(t, f.stagedFiles(t))
}

func TestSaveRecordingMissingFields(t *testing.T) {
	f := newFixture(t)

	sf := f.stage(t, "audio", "rec.webm")
	_, err := f.svc.SaveRecording(context.Background(), sf, Recording{School: "S", Subject: " "})
	require.True(t, gwerrors.IsInvalidArgumentsError(err))
	assert.Contains(t, err.Error(), "classLevel")
	assert.Contains(t, err.Error(), "subject")
	assert.Contains(t, err.Error(), "fileName")
	assert.Zero(t, f.tc.calls)
	assert.Zero(t, f.client.TotalCalls())
	assert.Zero(t, f.stagedFiles(t))
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.EnsureFolder(ctx, "A", "")
	require.NoError(t, err)

	h := f.svc.Health(ctx)
	assert.True(t, h.DriveConnected)
	assert.Empty(t, h.DriveError)
	require.NotNil(t, h.Account)
	assert.Equal(t, ServiceName, h.Service)
	assert.Equal(t, "1.2.3", h.Version)
	assert.Equal(t, 1, h.FolderCacheSize)
	assert.NotZero(t, h.MemSys)
	assert.NoError(t, f.svc.Ready(ctx))

	f.client.FailOn(memory.OpAbout, errors.New("token expired"))
	h = f.svc.Health(ctx)
	assert.False(t, h.DriveConnected)
	assert.Contains(t, h.DriveError, "token expired")
	assert.Error(t, f.svc.Ready(ctx))
}
