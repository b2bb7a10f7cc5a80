package model

import (
	"slices"

	"github.com/udisondev/seed/internal/geom"
)

// Inhibitor is an oriented volume that suppresses placement.
type Inhibitor struct {
	Origin geom.Vec3 `yaml:"origin"`
	Size   geom.Vec3 `yaml:"size"`
	Box    geom.Box  `yaml:"box"`
	// InhibitOnly restricts the inhibitor to Classnames. Otherwise Classnames are exempt.
	InhibitOnly bool     `yaml:"inhibit_only"`
	Classnames  []string `yaml:"classnames,omitempty"`
	Falloff     Falloff  `yaml:"falloff"`
	Factor      float64  `yaml:"factor"`
}

// Applies reports whether the inhibitor affects classname, before falloff.
func (h *Inhibitor) Applies(classname string) bool {
	if len(h.Classnames) == 0 {
		return true
	}
	listed := slices.Contains(h.Classnames, classname)
	return listed == h.InhibitOnly
}
