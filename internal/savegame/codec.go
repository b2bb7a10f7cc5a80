// Package savegame encodes distribution snapshots and keeps them in a local
// LevelDB store.
package savegame

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/seed/internal/seed"
)

var (
	// ErrChecksum is returned when a document body does not match its checksum.
	ErrChecksum = errors.New("snapshot checksum mismatch")
	// ErrSchemaVersion is returned for documents written with another snapshot layout.
	ErrSchemaVersion = seed.ErrSchemaVersion
	// ErrNotFound is returned when nothing is stored under a name.
	ErrNotFound = seed.ErrNoSnapshot
)

// document is the stored form of a snapshot. The body is kept as text so the
// checksum covers exactly the bytes that are decoded.
type document struct {
	Schema   int    `yaml:"schema"`
	Name     string `yaml:"name"`
	Checksum string `yaml:"checksum"`
	Body     string `yaml:"body"`
}

// Encode serializes s into a checksummed YAML document.
func Encode(s *seed.Snapshot) ([]byte, error) {
	body, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot %s: %w", s.Name, err)
	}
	doc := document{
		Schema:   s.Schema,
		Name:     s.Name,
		Checksum: checksum(body),
		Body:     string(body),
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot %s: %w", s.Name, err)
	}
	return out, nil
}

// Decode parses a document written by Encode, verifying its schema and checksum.
func Decode(raw []byte) (*seed.Snapshot, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if doc.Schema != seed.SnapshotSchema {
		return nil, fmt.Errorf("decoding snapshot %s: schema %d: %w", doc.Name, doc.Schema, ErrSchemaVersion)
	}
	if checksum([]byte(doc.Body)) != doc.Checksum {
		return nil, fmt.Errorf("decoding snapshot %s: %w", doc.Name, ErrChecksum)
	}

	var s seed.Snapshot
	if err := yaml.Unmarshal([]byte(doc.Body), &s); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s body: %w", doc.Name, err)
	}
	return &s, nil
}

func checksum(body []byte) string {
	return strconv.FormatUint(xxhash.Sum64(body), 16)
}
