package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/flowcore/model/run"
	"github.com/viant/flowcore/service/dao"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := New[string, run.Log](func(l *run.Log) string { return l.ID })

	assert.True(t, errors.Is(store.Save(ctx, nil), dao.ErrNilEntity))
	assert.True(t, errors.Is(store.Save(ctx, &run.Log{}), dao.ErrInvalidID))

	require.NoError(t, store.Save(ctx, &run.Log{ID: "1", RunID: "r1", Event: run.EventStart}))
	require.NoError(t, store.Save(ctx, &run.Log{ID: "2", RunID: "r2", Event: run.EventStart}))
	require.NoError(t, store.Save(ctx, &run.Log{ID: "3", RunID: "r1", Event: run.EventSuccess}))

	loaded, err := store.Load(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, run.EventSuccess, loaded.Event)

	_, err = store.Load(ctx, "missing")
	assert.True(t, errors.Is(err, dao.ErrNotFound))

	logs, err := store.List(ctx, dao.NewParameter("runId", "r1"))
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "1", logs[0].ID)
	assert.Equal(t, "3", logs[1].ID)

	require.NoError(t, store.Delete(ctx, "1"))
	assert.True(t, errors.Is(store.Delete(ctx, "1"), dao.ErrNotFound))
	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := New[string, run.Run](func(r *run.Run) string { return r.ID })
	aRun := run.New("r1", "d1", "s1", 1, map[string]interface{}{"q": "why"})
	require.NoError(t, store.Save(ctx, aRun))

	require.NoError(t, aRun.Start())
	aRun.Input["q"] = "changed"
	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, run.StatusPending, loaded.Status)
	assert.Equal(t, "why", loaded.Input["q"])

	loaded.Status = run.StatusFailed
	listed, err := store.List(ctx, dao.NewParameter("status", string(run.StatusPending)))
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed[0].Input["q"] = "listed"

	again, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, run.StatusPending, again.Status)
	assert.Equal(t, "why", again.Input["q"])
}
