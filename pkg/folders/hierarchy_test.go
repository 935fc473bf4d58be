package folders

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transpoze/drivegate/pkg/drive"
	"github.com/transpoze/drivegate/pkg/drive/memory"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
)

func newBuilder(client *memory.Client) (*HierarchyBuilder, *Resolver) {
	r := NewResolver(client, NewMemoryCache(), nil)
	return NewHierarchyBuilder(r), r
}

func TestEnsureHierarchyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	client := memory.New()
	b, _ := newBuilder(client)

	first, err := b.EnsureHierarchy(ctx, "SchoolA", "Grade5", "Math")
	require.NoError(t, err)
	second, err := b.EnsureHierarchy(ctx, "SchoolA", "Grade5", "Math")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 3, client.Count(), "expected exactly three folders")

	leaf, err := client.Get(ctx, first.LeafID)
	require.NoError(t, err)
	assert.Equal(t, "Math", leaf.Name)
	assert.Equal(t, []string{first.MiddleID}, leaf.Parents)

	middle, err := client.Get(ctx, first.MiddleID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.TopID}, middle.Parents)
}

func TestEnsureHierarchyIdempotentWithColdCache(t *testing.T) {
	ctx := context.Background()
	client := memory.New()
	b, r := newBuilder(client)

	first, err := b.EnsureHierarchy(ctx, "SchoolA", "Grade5", "Math")
	require.NoError(t, err)

	r.Reset()
	second, err := b.EnsureHierarchy(ctx, "SchoolA", "Grade5", "Math")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 3, client.Count())
}

func TestEnsureHierarchyRejectsEmptyLevels(t *testing.T) {
	tests := []struct {
		name                string
		top, middle, leaf   string
		wantMissingFragment string
	}{
		{"empty top", "", "Grade5", "Math", "level 1"},
		{"empty middle", "SchoolA", "", "Math", "level 2"},
		{"blank leaf", "SchoolA", "Grade5", "   ", "level 3"},
		{"all empty", "", "", "", "level 1, level 2, level 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := memory.New()
			b, _ := newBuilder(client)

			_, err := b.EnsureHierarchy(context.Background(), tt.top, tt.middle, tt.leaf)
			require.Error(t, err)
			assert.ErrorIs(t, err, gwerrors.InvalidArguments)
			assert.Contains(t, err.Error(), tt.wantMissingFragment)
			assert.Equal(t, 0, client.TotalCalls(), "no Drive call may happen before validation")
		})
	}
}

func TestEnsureHierarchyLeafFailureKeepsUpperLevels(t *testing.T) {
	ctx := context.Background()
	client := memory.New()
	b, r := newBuilder(client)

	// The hook runs after the fault is read, so arming it during the second
	// create makes the third (leaf) create fail.
	creates := 0
	client.OnCall(func(op memory.Op) {
		if op == memory.OpCreateFolder {
			creates++
			if creates == 2 {
				client.FailOn(memory.OpCreateFolder, gwerrors.NewRemoteUnavailableError("test", stderrors.New("quota")))
			}
		}
	})

	_, err := b.EnsureHierarchy(ctx, "SchoolA", "Grade5", "Math")
	require.Error(t, err)

	var lerr *LevelError
	require.True(t, stderrors.As(err, &lerr))
	assert.Equal(t, 3, lerr.Level)
	assert.Equal(t, "Math", lerr.Name)
	assert.ErrorIs(t, err, gwerrors.RemoteUnavailable)

	topID, ok := r.Cache().Get(Key{Name: "SchoolA"})
	require.True(t, ok)
	_, ok = r.Cache().Get(Key{ParentID: topID, Name: "Grade5"})
	require.True(t, ok)

	// Retry resumes at the leaf: the upper levels are cache hits.
	client.OnCall(nil)
	client.FailOn(memory.OpCreateFolder, nil)
	client.ResetCalls()

	h, err := b.EnsureHierarchy(ctx, "SchoolA", "Grade5", "Math")
	require.NoError(t, err)
	assert.Equal(t, topID, h.TopID)
	assert.Equal(t, 1, client.Calls(memory.OpList))
	assert.Equal(t, 1, client.Calls(memory.OpCreateFolder))
	assert.Equal(t, 3, client.Count())
}

func TestEnsureHierarchyReusesExistingTop(t *testing.T) {
	ctx := context.Background()
	client := memory.New()
	top := client.Seed(drive.Entry{Name: "SchoolA", MimeType: drive.FolderMimeType})
	b, _ := newBuilder(client)

	h, err := b.EnsureHierarchy(ctx, "SchoolA", "Grade5", "Math")
	require.NoError(t, err)
	assert.Equal(t, top.ID, h.TopID)
	assert.Equal(t, 2, client.Calls(memory.OpCreateFolder))
}
