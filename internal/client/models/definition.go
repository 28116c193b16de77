package models

import "slices"

// Definition is a named, unit-tagged data point that can be attached to one
// or more plods. LinkedPlods may dangle after a plod is deleted; dangling
// references are tolerated and never auto-cleaned.
type Definition struct {
	Entity
	Name        string   `json:"name"`
	Unit        string   `json:"unit"`
	LinkedPlods []string `json:"linkedPlods"`
}

func (d *Definition) Clone() Record {
	c := *d
	c.LinkedPlods = slices.Clone(d.LinkedPlods)
	return &c
}

func (d *Definition) Remap(old, new string) {
	remapIDs(d.LinkedPlods, old, new)
}
