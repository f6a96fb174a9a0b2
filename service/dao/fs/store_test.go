package fs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/flowcore/model/run"
	"github.com/viant/flowcore/service/dao"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	baseURL := filepath.Join(t.TempDir(), "runs")
	store, err := New[run.Run](ctx, baseURL, func(r *run.Run) string { return r.ID })
	require.NoError(t, err)

	first := run.New("r1", "orders", "s1", 1, map[string]interface{}{"k": "v"})
	second := run.New("r2", "billing", "s2", 1, nil)
	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))
	assert.True(t, errors.Is(store.Save(ctx, &run.Run{}), dao.ErrInvalidID))

	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "orders", loaded.DefinitionID)
	assert.Equal(t, run.StatusPending, loaded.Status)
	assert.Equal(t, "v", loaded.Input["k"])

	_, err = store.Load(ctx, "missing")
	assert.True(t, errors.Is(err, dao.ErrNotFound))

	require.NoError(t, first.Start())
	require.NoError(t, store.Save(ctx, first))
	running, err := store.List(ctx, dao.NewParameter("status", string(run.StatusRunning)))
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, "r1", running[0].ID)

	require.NoError(t, store.Delete(ctx, "r2"))
	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
