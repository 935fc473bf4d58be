package memory

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transpoze/drivegate/pkg/drive"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
)

func TestCreateAndListFolders(t *testing.T) {
	ctx := context.Background()
	c := New()

	school, err := c.CreateFolder(ctx, "SchoolA", "")
	require.NoError(t, err)
	_, err = c.CreateFolder(ctx, "Grade5", school.ID)
	require.NoError(t, err)
	_, err = c.CreateFile(ctx, "notes.txt", "text/plain", school.ID, strings.NewReader("hi"))
	require.NoError(t, err)

	roots, err := c.List(ctx, drive.Query{ParentID: drive.RootID, Kind: drive.KindFolder})
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "SchoolA", roots[0].Name)

	children, err := c.List(ctx, drive.Query{ParentID: school.ID})
	require.NoError(t, err)
	assert.Len(t, children, 2)

	files, err := c.List(ctx, drive.Query{ParentID: school.ID, Kind: drive.KindFile})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(2), files[0].Size)

	assert.Equal(t, 1, c.Calls(OpCreateFile))
	assert.Equal(t, 3, c.Calls(OpList))
}

func TestListExcludesTrashed(t *testing.T) {
	c := New()
	c.Seed(drive.Entry{Name: "Old", MimeType: drive.FolderMimeType, Trashed: true})

	got, err := c.List(context.Background(), drive.Query{Name: "Old", Kind: drive.KindFolder})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = c.List(context.Background(), drive.Query{Name: "Old", IncludeTrashed: true})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestListOrdersByCreatedTime(t *testing.T) {
	c := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Seed(drive.Entry{ID: "late", Name: "Math", MimeType: drive.FolderMimeType, CreatedTime: base.Add(time.Hour)})
	c.Seed(drive.Entry{ID: "early", Name: "Math", MimeType: drive.FolderMimeType, CreatedTime: base})

	got, err := c.List(context.Background(), drive.Query{Name: "Math"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].ID)
}

func TestDeleteRemovesDescendants(t *testing.T) {
	ctx := context.Background()
	c := New()
	a, _ := c.CreateFolder(ctx, "A", "")
	b, _ := c.CreateFolder(ctx, "B", a.ID)
	_, _ = c.CreateFolder(ctx, "C", b.ID)

	require.NoError(t, c.Delete(ctx, a.ID))
	assert.Equal(t, 0, c.Count())

	err := c.Delete(ctx, a.ID)
	assert.True(t, gwerrors.IsNotFoundError(err))
}

func TestFaultInjection(t *testing.T) {
	ctx := context.Background()
	c := New()
	boom := gwerrors.NewRemoteUnavailableError("test", stderrors.New("boom"))
	c.FailOn(OpCreateFolder, boom)

	_, err := c.CreateFolder(ctx, "X", "")
	assert.ErrorIs(t, err, gwerrors.RemoteUnavailable)
	assert.Equal(t, 1, c.Calls(OpCreateFolder))

	c.FailOn(OpCreateFolder, nil)
	c.OmitIDOn(OpCreateFolder, true)
	e, err := c.CreateFolder(ctx, "X", "")
	require.NoError(t, err)
	assert.Empty(t, e.ID)
}

func TestCreateUnderMissingParent(t *testing.T) {
	_, err := New().CreateFolder(context.Background(), "X", "missing")
	assert.True(t, gwerrors.IsNotFoundError(err))
}

func TestPermissionsAndCopy(t *testing.T) {
	ctx := context.Background()
	c := New()
	f, err := c.CreateFile(ctx, "a.wav", "audio/wav", "", strings.NewReader("data"))
	require.NoError(t, err)

	id, err := c.CreatePermission(ctx, f.ID, drive.Permission{Type: drive.GranteeUser, Role: drive.RoleWriter, EmailAddress: "x@y.z"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Len(t, c.Permissions(f.ID), 1)

	cp, err := c.Copy(ctx, f.ID, "Copy of a.wav")
	require.NoError(t, err)
	data, ok := c.Content(cp.ID)
	require.True(t, ok)
	assert.Equal(t, "data", string(data))
}
