// seedplan prepares every distribution of a map offline and prints the placement
// as YAML, without running the scheduler.
//
// Usage:
//
//	go run ./cmd/seedplan -config config/seed.yaml
//	go run ./cmd/seedplan -map maps/yard.yaml -instances -out plan.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/seed/internal/config"
	"github.com/udisondev/seed/internal/host"
	"github.com/udisondev/seed/internal/model"
	"github.com/udisondev/seed/internal/seed"
)

// plan is the YAML document written by seedplan.
type plan struct {
	Map           string         `yaml:"map"`
	Statics       int            `yaml:"statics"`
	Distributions []distribution `yaml:"distributions"`
}

type distribution struct {
	Name       string           `yaml:"name"`
	Root       int32            `yaml:"root"`
	Entities   int              `yaml:"entities"`
	Composites int              `yaml:"composites"`
	Classes    []class          `yaml:"classes"`
	Instances  []model.Instance `yaml:"instances,omitempty"`
}

type class struct {
	Classname string `yaml:"classname"`
	Model     string `yaml:"model,omitempty"`
	Composite bool   `yaml:"composite,omitempty"`
	Instances int    `yaml:"instances"`
}

func main() {
	cfgPath := flag.String("config", config.ConfigPath("config/seed.yaml"), "server config file")
	mapPath := flag.String("map", "", "map file, overrides the config")
	out := flag.String("out", "", "output file, stdout when empty")
	instances := flag.Bool("instances", false, "include every instance")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := run(*cfgPath, *mapPath, *out, *instances); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, mapPath, out string, instances bool) error {
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if mapPath != "" {
		cfg.MapPath = mapPath
	}

	scene, err := host.Load(context.Background(), cfg, time.Now())
	if err != nil {
		return err
	}
	p := buildPlan(scene, instances)

	w := io.Writer(os.Stdout)
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}
	return writePlan(w, p)
}

func buildPlan(scene *host.Scene, instances bool) plan {
	p := plan{Map: scene.Map.Name, Statics: scene.Statics}
	for _, e := range scene.Map.Entities {
		if e.Classname != seed.DistributionClass {
			continue
		}
		d, ok := scene.Manager.Get(e.Name)
		if !ok {
			continue
		}
		p.Distributions = append(p.Distributions, describe(d, instances))
	}
	return p
}

func describe(d *seed.Distribution, instances bool) distribution {
	out := distribution{
		Name:       d.Name(),
		Root:       d.Root(),
		Entities:   d.NumEntities(),
		Composites: d.NumComposites(),
	}

	counts := make([]int, len(d.Classes()))
	for _, inst := range d.Instances() {
		if inst.Class >= 0 && inst.Class < len(counts) {
			counts[inst.Class]++
		}
	}
	for i, c := range d.Classes() {
		out.Classes = append(out.Classes, class{
			Classname: c.Classname,
			Model:     c.ModelName,
			Composite: c.Pseudo,
			Instances: counts[i],
		})
	}
	if instances {
		out.Instances = d.Instances()
	}
	return out
}

func writePlan(w io.Writer, p plan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	return enc.Close()
}
