package models

// Plod is a named category of trackable field activity, e.g. "Jumbo
// Drilling".
type Plod struct {
	Entity
	Name string `json:"name"`
}

func (p *Plod) Clone() Record {
	c := *p
	return &c
}

// Remap is a no-op: plods reference no other records.
func (p *Plod) Remap(old, new string) {}
