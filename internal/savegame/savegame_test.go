package savegame

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/model"
	"github.com/udisondev/seed/internal/seed"
)

func sampleSnapshot(name string) *seed.Snapshot {
	return &seed.Snapshot{
		Schema:     seed.SnapshotSchema,
		Name:       name,
		Generation: "5f0c6a8e-3c1d-4f6e-9a0b-2b7d8c9e1f00",
		Active:     true,
		Prepared:   true,
		Seed:       1234,
		Sequence:   77,
		Root:       1234,

		NumEntities: 2,
		NumExisting: 1,

		LODBias:           1,
		DistCheckInterval: 250 * time.Millisecond,
		DistCheckStamp:    time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),

		Origin: geom.Vec3{100, 0, 32},
		Axis:   geom.Identity(),
		Size:   geom.Vec3{128, 128, 64},
		Areas:  []int{8256, 8257},

		Classes: []model.PlacementClass{{Classname: "atdm:rock", ModelName: "models/rock.lwo", Solid: true, Score: 10, Skins: []int{0, 1}}},
		Instances: []model.Instance{
			{Origin: geom.Vec3{12.5, -3.25, 0}, Angles: geom.Angles{Yaw: 33.3}, Scale: geom.Vec3{1, 1, 1}, Color: 0xffffff, Entity: 7, Flags: model.FlagExists},
			{Origin: geom.Vec3{-40, 18, 0}, Scale: geom.Vec3{1.5, 1.5, 1.5}, Skin: 1},
		},
		Skins: []string{"", "moss"},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	snap := sampleSnapshot("seed_1")

	raw, err := Encode(snap)
	require.NoError(t, err)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestCodec_Tampered(t *testing.T) {
	raw, err := Encode(sampleSnapshot("seed_1"))
	require.NoError(t, err)

	tampered := strings.Replace(string(raw), "moss", "dust", 1)
	require.NotEqual(t, string(raw), tampered)

	_, err = Decode([]byte(tampered))
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestCodec_SchemaMismatch(t *testing.T) {
	snap := sampleSnapshot("seed_1")
	snap.Schema = seed.SnapshotSchema + 1

	raw, err := Encode(snap)
	require.NoError(t, err)

	_, err = Decode(raw)
	assert.ErrorIs(t, err, ErrSchemaVersion)
	assert.ErrorIs(t, err, seed.ErrSchemaVersion)
}

func TestCodec_Garbage(t *testing.T) {
	_, err := Decode([]byte("schema: [not a number"))
	assert.Error(t, err)
}

func TestCodec_DocumentIsReadable(t *testing.T) {
	raw, err := Encode(sampleSnapshot("seed_1"))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Equal(t, seed.SnapshotSchema, doc["schema"])
	assert.Equal(t, "seed_1", doc["name"])
	assert.NotEmpty(t, doc["checksum"])
	assert.Contains(t, doc["body"], "models/rock.lwo")
}

func TestLevelStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Load(ctx, "seed_1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, seed.ErrNoSnapshot)

	for _, name := range []string{"seed_2", "seed_1"} {
		require.NoError(t, store.Save(ctx, sampleSnapshot(name)))
	}

	got, err := store.Load(ctx, "seed_1")
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot("seed_1"), got)

	names, err := store.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"seed_1", "seed_2"}, names)

	// saving again replaces
	updated := sampleSnapshot("seed_1")
	updated.NumExisting = 2
	require.NoError(t, store.Save(ctx, updated))
	got, err = store.Load(ctx, "seed_1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumExisting)

	require.NoError(t, store.Delete(ctx, "seed_1"))
	require.NoError(t, store.Delete(ctx, "seed_1"))
	_, err = store.Load(ctx, "seed_1")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err = store.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"seed_2"}, names)
}

func TestLevelStore_Persists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := OpenLevelStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, sampleSnapshot("seed_1")))
	require.NoError(t, store.Close())

	store, err = OpenLevelStore(dir)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Load(ctx, "seed_1")
	require.NoError(t, err)
	assert.Equal(t, "seed_1", got.Name)
	assert.Len(t, got.Instances, 2)
}

func TestLevelStore_CanceledContext(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Save(ctx, sampleSnapshot("seed_1")), context.Canceled)
	_, err = store.Load(ctx, "seed_1")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Names(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLevelStore_ImplementsSnapshotStore(t *testing.T) {
	var _ seed.SnapshotStore = (*LevelStore)(nil)
}
