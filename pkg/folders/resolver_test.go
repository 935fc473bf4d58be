package folders

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transpoze/drivegate/pkg/drive"
	"github.com/transpoze/drivegate/pkg/drive/memory"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
)

type recordingMetrics struct {
	mu       sync.Mutex
	hits     int
	misses   int
	outcomes map[string]int
	size     int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{outcomes: make(map[string]int)}
}

func (m *recordingMetrics) RecordLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *recordingMetrics) RecordResolution(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *recordingMetrics) SetCacheSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size = n
}

func TestEnsureSecondCallIsCacheHit(t *testing.T) {
	ctx := context.Background()
	client := memory.New()
	metrics := newRecordingMetrics()
	r := NewResolver(client, NewMemoryCache(), metrics)

	first, err := r.Ensure(ctx, "SchoolA", "")
	require.NoError(t, err)

	client.ResetCalls()
	second, err := r.Ensure(ctx, "SchoolA", "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 0, client.TotalCalls(), "cache hit must not reach Drive")
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.outcomes[OutcomeCreated])
	assert.Equal(t, 1, metrics.outcomes[OutcomeCached])
	assert.Equal(t, 1, metrics.size)
}

func TestEnsureCreatesExactlyOneFolder(t *testing.T) {
	ctx := context.Background()
	client := memory.New()
	r := NewResolver(client, nil, nil)

	id, err := r.Ensure(ctx, "Math", "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, client.Calls(memory.OpCreateFolder))
	assert.Equal(t, 1, client.Count())
}

func TestEnsureConcurrentCallsShareCreatedOutcome(t *testing.T) {
	client := memory.New()
	client.OnCall(func(op memory.Op) {
		if op == memory.OpList {
			time.Sleep(20 * time.Millisecond)
		}
	})
	m := newRecordingMetrics()
	r := NewResolver(client, nil, m)

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Ensure(context.Background(), "SchoolB", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Zero(t, m.outcomes[OutcomeFound])
	assert.GreaterOrEqual(t, m.outcomes[OutcomeCreated], 1)
	assert.Equal(t, workers, m.outcomes[OutcomeCreated]+m.outcomes[OutcomeCached])
}

func TestEnsureReturnsExistingFolder(t *testing.T) {
	ctx := context.Background()
	client := memory.New()
	existing := client.Seed(drive.Entry{ID: "existing", Name: "Math", MimeType: drive.FolderMimeType})
	r := NewResolver(client, nil, nil)

	id, err := r.Ensure(ctx, "Math", "")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, id)
	assert.Equal(t, 0, client.Calls(memory.OpCreateFolder))
}

func TestEnsureIgnoresFilesAndTrashedFolders(t *testing.T) {
	ctx := context.Background()
	client := memory.New()
	client.Seed(drive.Entry{Name: "Math", MimeType: "text/plain"})
	client.Seed(drive.Entry{Name: "Math", MimeType: drive.FolderMimeType, Trashed: true})
	r := NewResolver(client, nil, nil)

	_, err := r.Ensure(ctx, "Math", "")
	require.NoError(t, err)
	assert.Equal(t, 1, client.Calls(memory.OpCreateFolder))
}

func TestEnsureTieBreakIsDeterministic(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		entries []drive.Entry
		want    string
	}{
		{
			name: "oldest wins",
			entries: []drive.Entry{
				{ID: "a-new", CreatedTime: base.Add(time.Minute)},
				{ID: "z-old", CreatedTime: base},
			},
			want: "z-old",
		},
		{
			name: "same time uses smallest id",
			entries: []drive.Entry{
				{ID: "b", CreatedTime: base},
				{ID: "a", CreatedTime: base},
				{ID: "c", CreatedTime: base},
			},
			want: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := memory.New()
			for _, e := range tt.entries {
				e.Name = "Grade5"
				e.MimeType = drive.FolderMimeType
				e.Parents = []string{"school"}
				client.Seed(e)
			}
			r := NewResolver(client, nil, nil)

			id, err := r.Ensure(context.Background(), "Grade5", "school")
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestPickFolderSkipsEntriesWithoutID(t *testing.T) {
	assert.Nil(t, pickFolder(nil))
	assert.Nil(t, pickFolder([]*drive.Entry{{Name: "x"}}))

	got := pickFolder([]*drive.Entry{{Name: "x"}, {ID: "real"}})
	require.NotNil(t, got)
	assert.Equal(t, "real", got.ID)
}

func TestEnsureConcurrentCallsCreateOnce(t *testing.T) {
	client := memory.New()
	client.OnCall(func(op memory.Op) {
		if op == memory.OpList {
			time.Sleep(20 * time.Millisecond)
		}
	})
	r := NewResolver(client, nil, nil)

	const workers = 16
	ids := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = r.Ensure(context.Background(), "SchoolA", "")
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 1, client.Calls(memory.OpCreateFolder))
	assert.Equal(t, 1, client.Count())
}

func TestEnsureRemoteFailure(t *testing.T) {
	client := memory.New()
	client.FailOn(memory.OpList, stderrors.New("connection reset"))
	r := NewResolver(client, nil, nil)

	_, err := r.Ensure(context.Background(), "SchoolA", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, gwerrors.RemoteUnavailable)
	assert.Equal(t, 0, r.Cache().Len())
}

func TestEnsureCreateWithoutID(t *testing.T) {
	client := memory.New()
	client.OmitIDOn(memory.OpCreateFolder, true)
	r := NewResolver(client, nil, nil)

	_, err := r.Ensure(context.Background(), "SchoolA", "")
	assert.ErrorIs(t, err, gwerrors.CreateFailed)
	assert.Equal(t, 0, r.Cache().Len())
}

func TestFindDoesNotCreate(t *testing.T) {
	ctx := context.Background()
	client := memory.New()
	r := NewResolver(client, nil, nil)

	id, found, err := r.Find(ctx, "Nope", "")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, id)
	assert.Equal(t, 0, client.Calls(memory.OpCreateFolder))

	seeded := client.Seed(drive.Entry{Name: "Yes", MimeType: drive.FolderMimeType})
	id, found, err = r.Find(ctx, "Yes", "")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, seeded.ID, id)

	cached, ok := r.Cache().Get(Key{Name: "Yes"})
	assert.True(t, ok)
	assert.Equal(t, seeded.ID, cached)
}

func TestCreateAlwaysCreatesAndOverwritesCache(t *testing.T) {
	ctx := context.Background()
	client := memory.New()
	r := NewResolver(client, nil, nil)

	first, err := r.Ensure(ctx, "Dup", "")
	require.NoError(t, err)
	second, err := r.Create(ctx, "Dup", "")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, client.Count())

	cached, _ := r.Cache().Get(Key{Name: "Dup"})
	assert.Equal(t, second, cached)
}

func TestForgetAfterDeletePreventsStaleHit(t *testing.T) {
	ctx := context.Background()
	client := memory.New()
	r := NewResolver(client, nil, nil)

	id, err := r.Ensure(ctx, "SchoolA", "")
	require.NoError(t, err)
	require.NoError(t, client.Delete(ctx, id))

	assert.Equal(t, 1, r.Forget(id))

	again, err := r.Ensure(ctx, "SchoolA", "")
	require.NoError(t, err)
	assert.NotEqual(t, id, again)
}

func TestReset(t *testing.T) {
	r := NewResolver(memory.New(), nil, nil)
	_, err := r.Ensure(context.Background(), "A", "")
	require.NoError(t, err)

	r.Reset()
	assert.Equal(t, 0, r.Cache().Len())
}
