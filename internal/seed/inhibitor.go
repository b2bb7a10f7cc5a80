package seed

import (
	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/model"
	"github.com/udisondev/seed/internal/spawnargs"
)

// CompileInhibitor turns an exclusion volume template into an inhibitor.
func (d *Distribution) CompileInhibitor(src TemplateSource) (model.Inhibitor, []Diagnostic) {
	diag := &diagnostics{template: src.Name}
	t := src.Args

	axis := src.Axis
	if axis == (geom.Mat3{}) {
		axis = geom.Identity()
	}
	inh := model.Inhibitor{
		Origin: t.GetVector("origin", geom.Vec3{}),
		Size:   src.Bounds.Size(),
	}
	inh.Box = geom.NewBox(inh.Origin, inh.Size, axis)

	// the factor is read from the inhibitor itself, never from the distribution
	chain := spawnargs.Chain{Template: t, Distribution: t}
	inh.Falloff, inh.Factor = parseFalloff(t.GetString("falloff", "none"), chain, 2, diag)
	if inh.Falloff == model.FalloffFunc {
		diag.warn("falloff", "func falloff is not supported on inhibitors, using none")
		inh.Falloff = model.FalloffNone
	}

	prefix := ""
	switch {
	case t.Has("inhibit"):
		inh.InhibitOnly = true
		prefix = "inhibit"
	case t.Has("noinhibit"):
		prefix = "noinhibit"
	}
	if prefix != "" {
		for _, kv := range t.MatchPrefix(prefix) {
			inh.Classnames = append(inh.Classnames, kv.Value)
		}
	}

	for _, dg := range diag.list {
		d.log.Warn("inhibitor setting corrected", "template", dg.Template, "key", dg.Key, "reason", dg.Message)
	}
	d.log.Debug("inhibitor compiled",
		"template", src.Name,
		"size", inh.Size,
		"falloff", inh.Falloff,
		"inhibitOnly", inh.InhibitOnly,
		"classnames", len(inh.Classnames))
	return inh, diag.list
}
