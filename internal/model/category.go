package model

import "strings"

// Category is the semantic kind of a definition, taken from its spawn class.
type Category int

const (
	CategoryStatic Category = iota
	CategoryFuncStatic
	CategoryMoveable
	CategoryFrobMover
	CategoryBrittle
	CategoryTarget
	CategoryActor
	CategoryAF
	CategoryAFAttachment
	CategoryAnimated
	CategoryWeapon
	CategoryLight
)

var categoryNames = map[string]Category{
	"static":        CategoryStatic,
	"func_static":   CategoryFuncStatic,
	"moveable":      CategoryMoveable,
	"frobmover":     CategoryFrobMover,
	"brittle":       CategoryBrittle,
	"target":        CategoryTarget,
	"actor":         CategoryActor,
	"af":            CategoryAF,
	"af_attachment": CategoryAFAttachment,
	"animated":      CategoryAnimated,
	"weapon":        CategoryWeapon,
	"light":         CategoryLight,
}

// ParseCategory maps a spawn class name to a Category. Unknown names are static.
func ParseCategory(s string) Category {
	if c, ok := categoryNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c
	}
	return CategoryStatic
}

// String returns the spawn class name of c.
func (c Category) String() string {
	for name, v := range categoryNames {
		if v == c {
			return name
		}
	}
	return "static"
}

// Combinable reports whether instances of this category may be merged into composites.
func (c Category) Combinable() bool {
	switch c {
	case CategoryStatic, CategoryFuncStatic:
		return true
	}
	return false
}
