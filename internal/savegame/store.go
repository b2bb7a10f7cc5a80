package savegame

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/df-mc/goleveldb/leveldb/storage"
	"github.com/df-mc/goleveldb/leveldb/util"

	"github.com/udisondev/seed/internal/seed"
)

// keyPrefix namespaces snapshot keys inside the database.
const keyPrefix = "seed/"

// LevelStore keeps encoded snapshots in a LevelDB database, one key per
// distribution name.
type LevelStore struct {
	db *leveldb.DB
}

// OpenLevelStore opens or creates a store at path.
func OpenLevelStore(path string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot store %s: %w", path, err)
	}
	slog.Info("snapshot store opened", "path", path)
	return &LevelStore{db: db}, nil
}

// NewMemoryStore creates a store that lives in memory only.
func NewMemoryStore() (*LevelStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("opening memory snapshot store: %w", err)
	}
	return &LevelStore{db: db}, nil
}

// Close closes the database.
func (s *LevelStore) Close() error {
	return s.db.Close()
}

// Save stores snap under its name, replacing an earlier snapshot.
func (s *LevelStore) Save(ctx context.Context, snap *seed.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := s.db.Put(key(snap.Name), raw, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("saving snapshot %s: %w", snap.Name, err)
	}
	return nil
}

// Load returns the snapshot stored under name, or ErrNotFound.
func (s *LevelStore) Load(ctx context.Context, name string) (*seed.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := s.db.Get(key(name), nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return nil, fmt.Errorf("loading snapshot %s: %w", name, ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("loading snapshot %s: %w", name, err)
	}
	return Decode(raw)
}

// Delete removes the snapshot stored under name. Deleting a missing name is not
// an error.
func (s *LevelStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Delete(key(name), nil); err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", name, err)
	}
	return nil
}

// Names returns the names of every stored snapshot in key order.
func (s *LevelStore) Names(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	iter := s.db.NewIterator(util.BytesPrefix([]byte(keyPrefix)), nil)
	defer iter.Release()

	var names []string
	for iter.Next() {
		names = append(names, string(iter.Key()[len(keyPrefix):]))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	return names, nil
}

func key(name string) []byte {
	return []byte(keyPrefix + name)
}
