package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/flowcore/model/flow"
	"github.com/viant/flowcore/service/dao"
)

func TestContainment(t *testing.T) {
	data, err := containment([]*dao.Parameter{
		dao.NewParameter("state", "DRAFT"),
		dao.NewParameter("name", "a", "b"),
		{Name: "version", Value: 2},
		nil,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"DRAFT","version":2}`, string(data))
}

func TestStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	store := New[flow.Definition](pool, "test_definitions", func(d *flow.Definition) string { return d.ID })
	_, _ = pool.Exec(ctx, `DELETE FROM flowcore_records WHERE collection = 'test_definitions'`)

	draft := flow.NewDefinition("d1", "first", &flow.Graph{})
	published := flow.NewDefinition("d2", "second", &flow.Graph{})
	require.NoError(t, published.Publish())
	require.NoError(t, store.Save(ctx, draft))
	require.NoError(t, store.Save(ctx, published))

	loaded, err := store.Load(ctx, "d2")
	require.NoError(t, err)
	assert.Equal(t, flow.StatePublished, loaded.State)

	drafts, err := store.List(ctx, dao.NewParameter("state", string(flow.StateDraft)))
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "d1", drafts[0].ID)

	require.NoError(t, store.Delete(ctx, "d1"))
	_, err = store.Load(ctx, "d1")
	assert.True(t, errors.Is(err, dao.ErrNotFound))
}
