package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/model"
	"github.com/udisondev/seed/internal/savegame"
	"github.com/udisondev/seed/internal/seed"
	"github.com/udisondev/seed/internal/testutil"
)

var _ seed.SnapshotStore = (*SnapshotRepository)(nil)

func testSnapshot(name string) *seed.Snapshot {
	return &seed.Snapshot{
		Schema:      seed.SnapshotSchema,
		Name:        name,
		Generation:  uuid.NewString(),
		Active:      true,
		Prepared:    true,
		NumEntities: 2,
		NumExisting: 1,
		Origin:      geom.Vec3{10, 20, 0},
		Classes:     []model.PlacementClass{{Classname: "atdm:rock", ModelName: "models/rock.lwo"}},
		Instances: []model.Instance{
			{Origin: geom.Vec3{1, 2, 0}, Flags: model.FlagExists | model.FlagSpawned, Entity: 7},
			{Origin: geom.Vec3{3, 4, 0}},
		},
		Skins: []string{""},
	}
}

func TestSnapshotRepository_SaveLoad(t *testing.T) {
	repo := NewSnapshotRepository(testutil.SnapshotDB(t, RunMigrations))
	ctx := context.Background()

	snap := testSnapshot("seed_yard")
	require.NoError(t, repo.Save(ctx, snap))

	got, err := repo.Load(ctx, "seed_yard")
	require.NoError(t, err)
	assert.Equal(t, snap.Name, got.Name)
	assert.Equal(t, snap.Generation, got.Generation)
	assert.Equal(t, snap.Origin, got.Origin)
	assert.Equal(t, snap.Instances, got.Instances)

	info, err := repo.Info(ctx, "seed_yard")
	require.NoError(t, err)
	assert.Equal(t, seed.SnapshotSchema, info.Schema)
	assert.Equal(t, snap.Generation, info.Generation.String())
	assert.Equal(t, 2, info.Instances)
	assert.Equal(t, 1, info.Existing)
	assert.Equal(t, 1, info.Classes)
	assert.False(t, info.SavedAt.IsZero())
}

func TestSnapshotRepository_Upsert(t *testing.T) {
	repo := NewSnapshotRepository(testutil.SnapshotDB(t, RunMigrations))
	ctx := context.Background()

	snap := testSnapshot("seed_yard")
	require.NoError(t, repo.Save(ctx, snap))

	snap.Generation = "not-a-uuid"
	snap.NumExisting = 0
	require.NoError(t, repo.Save(ctx, snap))

	info, err := repo.Info(ctx, "seed_yard")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, info.Generation, "invalid generation stored as NULL")
	assert.Zero(t, info.Existing)

	names, err := repo.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"seed_yard"}, names)
}

func TestSnapshotRepository_NamesAndDelete(t *testing.T) {
	pool := testutil.SnapshotDB(t, RunMigrations)
	repo := NewSnapshotRepository(pool)
	ctx := context.Background()

	for _, name := range []string{"seed_b", "seed_a"} {
		require.NoError(t, repo.Save(ctx, testSnapshot(name)))
	}

	names, err := repo.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"seed_a", "seed_b"}, names)

	require.Equal(t, 2, testutil.CountSnapshots(t, pool))
	require.NoError(t, repo.Delete(ctx, "seed_a"))
	assert.Equal(t, 1, testutil.CountSnapshots(t, pool))
	_, err = repo.Load(ctx, "seed_a")
	assert.ErrorIs(t, err, savegame.ErrNotFound)
	assert.ErrorIs(t, err, seed.ErrNoSnapshot)

	_, err = repo.Info(ctx, "seed_a")
	assert.ErrorIs(t, err, savegame.ErrNotFound)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	pool := testutil.SnapshotDB(t, RunMigrations)
	require.NoError(t, RunMigrations(context.Background(), pool.Config().ConnString()))
	assert.Zero(t, testutil.CountSnapshots(t, pool))

	repo := NewSnapshotRepository(pool)
	assert.NoError(t, repo.Save(context.Background(), testSnapshot("seed_yard")))
}
