package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transpoze/drivegate/pkg/drive"
	"github.com/transpoze/drivegate/pkg/drive/memory"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
)

func TestFindFolder(t *testing.T) {
	f := newFixture(t)

	t.Run("absent folder yields null id", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/folders/find", FolderRequest{FolderName: "Nope"})
		require.Equal(t, http.StatusOK, w.Code)
		body := decode[map[string]any](t, w)
		assert.Contains(t, body, "id")
		assert.Nil(t, body["id"])
		assert.Zero(t, f.client.Calls(memory.OpCreateFolder))
	})

	t.Run("existing folder", func(t *testing.T) {
		seeded := f.client.Seed(drive.Entry{Name: "SchoolA", MimeType: drive.FolderMimeType})
		w := f.do(t, http.MethodPost, "/folders/find", FolderRequest{FolderName: "SchoolA"})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[IDResponse](t, w)
		require.NotNil(t, resp.ID)
		assert.Equal(t, seeded.ID, *resp.ID)
	})

	t.Run("blank name", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/folders/find", FolderRequest{FolderName: "  "})
		requireProblem(t, w, http.StatusBadRequest, "InvalidArguments")
	})

	t.Run("malformed body", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/folders/find", "not an object")
		requireProblem(t, w, http.StatusBadRequest, "")
	})
}

func TestEnsureFolderIsIdempotent(t *testing.T) {
	f := newFixture(t)

	first := decode[IDResponse](t, f.do(t, http.MethodPost, "/folders/ensure", FolderRequest{FolderName: "Grade5"}))
	second := decode[IDResponse](t, f.do(t, http.MethodPost, "/folders/ensure", FolderRequest{FolderName: "Grade5"}))

	require.NotNil(t, first.ID)
	require.NotNil(t, second.ID)
	assert.Equal(t, *first.ID, *second.ID)
	assert.Equal(t, 1, f.client.Calls(memory.OpCreateFolder))
	assert.Equal(t, 1, f.client.Calls(memory.OpList))
}

func TestCreateFolderAlwaysCreates(t *testing.T) {
	f := newFixture(t)

	a := decode[IDResponse](t, f.do(t, http.MethodPost, "/folders/create", FolderRequest{FolderName: "Dup"}))
	b := decode[IDResponse](t, f.do(t, http.MethodPost, "/folders/create", FolderRequest{FolderName: "Dup"}))

	require.NotNil(t, a.ID)
	require.NotNil(t, b.ID)
	assert.NotEqual(t, *a.ID, *b.ID)
	assert.Equal(t, 2, f.client.Calls(memory.OpCreateFolder))
}

func TestCreateFolderUnderMissingParent(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/folders/create", FolderRequest{FolderName: "X", ParentID: "ghost"})
	requireProblem(t, w, http.StatusNotFound, "NotFound")
}

func TestHierarchy(t *testing.T) {
	f := newFixture(t)
	req := HierarchyRequest{SchoolName: "SchoolA", ClassLevel: "Grade5", Subject: "Math"}

	first := decode[HierarchyResponse](t, f.do(t, http.MethodPost, "/folders/hierarchy", req))
	second := decode[HierarchyResponse](t, f.do(t, http.MethodPost, "/folders/hierarchy", req))

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.SchoolID)
	assert.NotEmpty(t, first.ClassID)
	assert.NotEmpty(t, first.SubjectID)
	assert.Equal(t, 3, f.client.Count())
}

func TestHierarchyEmptyLevelMakesNoRemoteCall(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/folders/hierarchy", HierarchyRequest{SchoolName: "SchoolA", Subject: "Math"})

	requireProblem(t, w, http.StatusBadRequest, "InvalidArguments")
	assert.Zero(t, f.client.TotalCalls())
}

func TestHierarchyRemoteFailure(t *testing.T) {
	f := newFixture(t)
	f.client.FailOn(memory.OpList, gwerrors.NewRemoteUnavailableError("test", errors.New("boom")))

	w := f.do(t, http.MethodPost, "/folders/hierarchy",
		HierarchyRequest{SchoolName: "SchoolA", ClassLevel: "Grade5", Subject: "Math"})

	requireProblem(t, w, http.StatusBadGateway, "RemoteUnavailable")
}

func TestContents(t *testing.T) {
	f := newFixture(t)
	parent := f.client.Seed(drive.Entry{Name: "Parent", MimeType: drive.FolderMimeType})
	f.client.Seed(drive.Entry{Name: "Child", MimeType: drive.FolderMimeType, Parents: []string{parent.ID}})
	f.client.Seed(drive.Entry{Name: "a.wav", MimeType: "audio/wav", Parents: []string{parent.ID}})
	f.client.Seed(drive.Entry{Name: "b.wav", MimeType: "audio/wav", Parents: []string{parent.ID}})

	w := f.do(t, http.MethodGet, "/folders/"+parent.ID+"/contents", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ContentsResponse](t, w)
	assert.Len(t, resp.Folders, 1)
	assert.Len(t, resp.Files, 2)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, "folder", resp.Folders[0].Type)
}

func TestRootFolders(t *testing.T) {
	f := newFixture(t)
	f.client.Seed(drive.Entry{Name: "A", MimeType: drive.FolderMimeType})
	f.client.Seed(drive.Entry{Name: "B", MimeType: drive.FolderMimeType})
	f.client.Seed(drive.Entry{Name: "loose.txt", MimeType: "text/plain"})

	w := f.do(t, http.MethodGet, "/folders/root", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ContentsResponse](t, w)
	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Folders, 2)
	assert.Empty(t, resp.Files)
}

func TestDeleteFolder(t *testing.T) {
	f := newFixture(t)
	created := decode[IDResponse](t, f.do(t, http.MethodPost, "/folders/ensure", FolderRequest{FolderName: "Old"}))
	require.NotNil(t, created.ID)

	w := f.do(t, http.MethodDelete, "/folders/"+*created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[MessageResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Folder "+*created.ID+" successfully deleted", resp.Message)

	// The stale cache entry must be gone: ensuring again creates a new folder.
	again := decode[IDResponse](t, f.do(t, http.MethodPost, "/folders/ensure", FolderRequest{FolderName: "Old"}))
	require.NotNil(t, again.ID)
	assert.NotEqual(t, *created.ID, *again.ID)
	assert.Equal(t, 2, f.client.Calls(memory.OpCreateFolder))
}

func TestDeleteUnknownFolder(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodDelete, "/folders/missing", nil)
	requireProblem(t, w, http.StatusNotFound, "NotFound")
}

func TestShareWithPersonal(t *testing.T) {
	f := newFixture(t)
	a := f.client.Seed(drive.Entry{Name: "A", MimeType: drive.FolderMimeType})
	f.client.Seed(drive.Entry{Name: "B", MimeType: drive.FolderMimeType})

	w := f.do(t, http.MethodPost, "/folders/shareWithPersonal", ShareAllRequest{Email: "me@example.com", Role: "writer"})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[BulkResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Shared 2 of 2 folders with me@example.com", resp.Message)
	require.Len(t, resp.Results, 2)
	for _, r := range resp.Results {
		assert.True(t, r.Success)
		assert.NotEmpty(t, r.PermissionID)
		assert.Empty(t, r.Error)
	}

	perms := f.client.Permissions(a.ID)
	require.Len(t, perms, 1)
	assert.Equal(t, drive.RoleWriter, perms[0].Role)
}

func TestShareWithPersonalRejectsBadEmail(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/folders/shareWithPersonal", ShareAllRequest{Email: "not-an-email"})

	requireProblem(t, w, http.StatusBadRequest, "InvalidArguments")
	assert.Zero(t, f.client.TotalCalls())
}

func TestDeleteAllRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	f.client.Seed(drive.Entry{Name: "A", MimeType: drive.FolderMimeType})

	for name, body := range map[string]any{
		"no body":       nil,
		"empty confirm": DeleteAllRequest{},
		"wrong token":   DeleteAllRequest{Confirm: "yes"},
	} {
		t.Run(name, func(t *testing.T) {
			w := f.do(t, http.MethodDelete, "/folders/deleteAll", body)
			requireProblem(t, w, http.StatusBadRequest, "InvalidArguments")
		})
	}

	assert.Zero(t, f.client.TotalCalls())
	assert.Equal(t, 1, f.client.Count())
}

func TestDeleteAll(t *testing.T) {
	f := newFixture(t)
	f.client.Seed(drive.Entry{Name: "A", MimeType: drive.FolderMimeType})
	f.client.Seed(drive.Entry{Name: "B", MimeType: drive.FolderMimeType})

	w := f.do(t, http.MethodDelete, "/folders/deleteAll", DeleteAllRequest{Confirm: "DELETE_ALL_FOLDERS"})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[BulkResponse](t, w)
	assert.Equal(t, "Successfully deleted 2 of 2 folders", resp.Message)
	assert.Len(t, resp.Results, 2)
	assert.Zero(t, f.client.Count())
}
