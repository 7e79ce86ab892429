package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/reshetovitsme/tweet-media-relay/internal/modules/stats/domain"
	"github.com/reshetovitsme/tweet-media-relay/internal/modules/stats/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileService(t *testing.T) (*Service, repository.Repository) {
	t.Helper()
	repo, err := repository.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return New(repo), repo
}

func TestService_ConcurrentIncrementsAreNotLost(t *testing.T) {
	svc, repo := newFileService(t)
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.AddMedia(1))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.IncrementMessages())
		}()
	}
	wg.Wait()

	snapshot, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, int64(n), snapshot.MediaDelivered)
	assert.Equal(t, int64(n), snapshot.MessagesHandled)

	persisted, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(n), persisted.MediaDelivered)
	assert.Equal(t, int64(n), persisted.MessagesHandled)
}

func TestService_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	repo, err := repository.NewFileStorage(dir)
	require.NoError(t, err)

	first := New(repo)
	require.NoError(t, first.IncrementMessages())
	require.NoError(t, first.AddMedia(3))

	reopened, err := repository.NewFileStorage(dir)
	require.NoError(t, err)
	second := New(reopened)

	snapshot, err := second.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, int64(1), snapshot.MessagesHandled)
	assert.Equal(t, int64(3), snapshot.MediaDelivered)
}

func TestService_Reset(t *testing.T) {
	svc, repo := newFileService(t)
	require.NoError(t, svc.IncrementMessages())
	require.NoError(t, svc.AddMedia(5))

	require.NoError(t, svc.Reset())

	snapshot, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Zero(t, snapshot.MessagesHandled)
	assert.Zero(t, snapshot.MediaDelivered)

	persisted, err := repo.Load()
	require.NoError(t, err)
	assert.Zero(t, persisted.MediaDelivered)
}

func TestService_AddMediaIgnoresNonPositive(t *testing.T) {
	svc, _ := newFileService(t)

	require.NoError(t, svc.AddMedia(0))
	require.NoError(t, svc.AddMedia(-2))

	snapshot, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Zero(t, snapshot.MediaDelivered)
}

type failingRepo struct {
	saveErr error
}

func (r *failingRepo) Load() (*domain.Counters, error) { return &domain.Counters{}, nil }

func (r *failingRepo) Save(*domain.Counters) error { return r.saveErr }

func TestService_PersistFailureKeepsInMemoryValue(t *testing.T) {
	svc := New(&failingRepo{saveErr: errors.New("disk full")})

	assert.Error(t, svc.AddMedia(2))

	snapshot, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, int64(2), snapshot.MediaDelivered)
}
