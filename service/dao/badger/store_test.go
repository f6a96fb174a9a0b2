package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/flowcore/model/snapshot"
	"github.com/viant/flowcore/service/dao"
)

func TestStore(t *testing.T) {
	db, err := Open("")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	snapshots := New[snapshot.Snapshot](db, "snapshots", func(s *snapshot.Snapshot) string { return s.ID })
	other := New[snapshot.Snapshot](db, "snapshots-archive", func(s *snapshot.Snapshot) string { return s.ID })

	require.NoError(t, snapshots.Save(ctx, &snapshot.Snapshot{ID: "a1", DefinitionID: "a", Version: 1, Document: `{}`}))
	require.NoError(t, snapshots.Save(ctx, &snapshot.Snapshot{ID: "a2", DefinitionID: "a", Version: 2, Document: `{}`}))
	require.NoError(t, snapshots.Save(ctx, &snapshot.Snapshot{ID: "b1", DefinitionID: "b", Version: 1, Document: `{}`}))
	require.NoError(t, other.Save(ctx, &snapshot.Snapshot{ID: "z", DefinitionID: "a", Version: 9}))

	loaded, err := snapshots.Load(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Version)

	_, err = snapshots.Load(ctx, "z")
	assert.True(t, errors.Is(err, dao.ErrNotFound))

	forA, err := snapshots.List(ctx, dao.NewParameter("definitionId", "a"))
	require.NoError(t, err)
	assert.Len(t, forA, 2)

	require.NoError(t, snapshots.Delete(ctx, "a1"))
	assert.True(t, errors.Is(snapshots.Delete(ctx, "a1"), dao.ErrNotFound))
	all, err := snapshots.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
