package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/seed/internal/config"
	"github.com/udisondev/seed/internal/testutil"
)

func writeConfig(t *testing.T, cfg config.Server) string {
	t.Helper()
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRun(t *testing.T) {
	cfg := testutil.SceneConfig(t)
	out := filepath.Join(t.TempDir(), "plan.yaml")

	require.NoError(t, run(writeConfig(t, cfg), "", out, true))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var p plan
	require.NoError(t, yaml.Unmarshal(data, &p))
	assert.Equal(t, "yard", p.Map)
	assert.Equal(t, 1, p.Statics)
	require.Len(t, p.Distributions, 1)

	d := p.Distributions[0]
	assert.Equal(t, "seed_yard", d.Name)
	assert.NotEmpty(t, d.Instances)

	total := 0
	for _, c := range d.Classes {
		total += c.Instances
	}
	assert.Equal(t, len(d.Instances), total)
}

func TestRun_MapOverride(t *testing.T) {
	cfg := testutil.SceneConfig(t)
	err := run(writeConfig(t, cfg), filepath.Join(t.TempDir(), "none.yaml"), "", false)
	assert.Error(t, err)
}

func TestWritePlan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writePlan(&buf, plan{
		Map: "yard",
		Distributions: []distribution{{
			Name:    "seed_yard",
			Classes: []class{{Classname: "atdm:rock", Model: testutil.RockModel, Instances: 3}},
		}},
	}))

	out := buf.String()
	assert.Contains(t, out, "map: yard")
	assert.Contains(t, out, "classname: atdm:rock")
	assert.NotContains(t, out, "origin:", "instances omitted")
}
