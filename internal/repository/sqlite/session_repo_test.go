package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dafibh/paydesk/paydesk-client/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*SessionRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "session.db")
	repo, err := NewSessionRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestSessionRepository_LoadEmpty(t *testing.T) {
	repo, _ := newTestRepo(t)

	session, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Session{}, session)
	assert.False(t, session.IsAuthenticated())
}

func TestSessionRepository_SaveLoadClear(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	saved := domain.Session{
		User:        "alice",
		Token:       "tok",
		Outstanding: domain.OutstandingBills{"Acme": {"bill1", "bill2"}},
	}
	require.NoError(t, repo.Save(ctx, saved))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	// Saving without bills drops the cached map
	require.NoError(t, repo.Save(ctx, domain.Session{User: "alice", Token: "tok2"}))
	loaded, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok2", loaded.Token)
	assert.Nil(t, loaded.Outstanding)

	require.NoError(t, repo.Clear(ctx))
	require.NoError(t, repo.Clear(ctx))
	loaded, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Session{}, loaded)
}

func TestSessionRepository_SurvivesReopen(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.Session{User: "bob", Token: "t"}))
	require.NoError(t, repo.Close())

	reopened, err := NewSessionRepository(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", loaded.User)
	assert.Equal(t, "t", loaded.Token)
}
