// Package spawnargs holds the key/value configuration attached to map entities and
// entity definitions. Keys are case-insensitive and keep insertion order.
package spawnargs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/udisondev/seed/internal/geom"
)

// KeyValue is one configuration entry.
type KeyValue struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Dict is an ordered, case-insensitive key/value set.
type Dict struct {
	pairs []KeyValue
	index map[string]int
}

// New returns an empty dictionary.
func New() *Dict {
	return &Dict{index: make(map[string]int)}
}

// FromPairs builds a dictionary from pairs in order.
func FromPairs(pairs ...KeyValue) *Dict {
	d := New()
	for _, kv := range pairs {
		d.Set(kv.Key, kv.Value)
	}
	return d
}

// Set stores value under key, replacing an existing value in place.
func (d *Dict) Set(key, value string) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	k := strings.ToLower(key)
	if i, ok := d.index[k]; ok {
		d.pairs[i].Value = value
		return
	}
	d.index[k] = len(d.pairs)
	d.pairs = append(d.pairs, KeyValue{Key: key, Value: value})
}

// Delete removes key.
func (d *Dict) Delete(key string) {
	k := strings.ToLower(key)
	i, ok := d.index[k]
	if !ok {
		return
	}
	d.pairs = append(d.pairs[:i], d.pairs[i+1:]...)
	delete(d.index, k)
	for j := i; j < len(d.pairs); j++ {
		d.index[strings.ToLower(d.pairs[j].Key)] = j
	}
}

// Lookup returns the raw value of key.
func (d *Dict) Lookup(key string) (string, bool) {
	if d == nil {
		return "", false
	}
	i, ok := d.index[strings.ToLower(key)]
	if !ok {
		return "", false
	}
	return d.pairs[i].Value, true
}

// Has reports whether key is set.
func (d *Dict) Has(key string) bool {
	_, ok := d.Lookup(key)
	return ok
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.pairs)
}

// Pairs returns a copy of all entries in insertion order.
func (d *Dict) Pairs() []KeyValue {
	if d == nil {
		return nil
	}
	out := make([]KeyValue, len(d.pairs))
	copy(out, d.pairs)
	return out
}

// MatchPrefix returns every entry whose key starts with prefix, in insertion order.
func (d *Dict) MatchPrefix(prefix string) []KeyValue {
	if d == nil {
		return nil
	}
	p := strings.ToLower(prefix)
	var out []KeyValue
	for _, kv := range d.pairs {
		if strings.HasPrefix(strings.ToLower(kv.Key), p) {
			out = append(out, kv)
		}
	}
	return out
}

// Clone returns a deep copy.
func (d *Dict) Clone() *Dict {
	c := New()
	if d == nil {
		return c
	}
	for _, kv := range d.pairs {
		c.Set(kv.Key, kv.Value)
	}
	return c
}

// Inherit copies every entry of base that d does not define yet.
func (d *Dict) Inherit(base *Dict) {
	if base == nil {
		return
	}
	for _, kv := range base.pairs {
		if !d.Has(kv.Key) {
			d.Set(kv.Key, kv.Value)
		}
	}
}

// GetString returns the value of key or def.
func (d *Dict) GetString(key, def string) string {
	if v, ok := d.Lookup(key); ok {
		return v
	}
	return def
}

// GetFloat returns key parsed as a float or def. Unparseable values yield 0, as an
// authored "abc" would in the map compiler.
func (d *Dict) GetFloat(key string, def float64) float64 {
	v, ok := d.Lookup(key)
	if !ok {
		return def
	}
	return parseFloat(v)
}

// GetInt returns key parsed as an integer or def.
func (d *Dict) GetInt(key string, def int) int {
	v, ok := d.Lookup(key)
	if !ok {
		return def
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		return n
	}
	return int(parseFloat(v))
}

// GetBool returns key interpreted as a boolean or def.
func (d *Dict) GetBool(key string, def bool) bool {
	v, ok := d.Lookup(key)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "", "0", "false", "no", "off":
		return false
	}
	return parseFloat(v) != 0
}

// GetVector returns key parsed as "x y z" or def.
func (d *Dict) GetVector(key string, def geom.Vec3) geom.Vec3 {
	v, ok := d.Lookup(key)
	if !ok {
		return def
	}
	return ParseVector(v)
}

// GetAngles returns key parsed as "pitch yaw roll" or def.
func (d *Dict) GetAngles(key string, def geom.Angles) geom.Angles {
	v, ok := d.Lookup(key)
	if !ok {
		return def
	}
	vec := ParseVector(v)
	return geom.Angles{Pitch: vec.X(), Yaw: vec.Y(), Roll: vec.Z()}
}

// ParseVector parses up to three space separated numbers; missing components are zero.
func ParseVector(s string) geom.Vec3 {
	var out geom.Vec3
	for i, f := range strings.Fields(s) {
		if i > 2 {
			break
		}
		out[i] = parseFloat(f)
	}
	return out
}

// FormatVector renders v the way ParseVector reads it.
func FormatVector(v geom.Vec3) string {
	return fmt.Sprintf("%g %g %g", v.X(), v.Y(), v.Z())
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
