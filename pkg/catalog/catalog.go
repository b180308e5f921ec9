// Package catalog holds the fixed gadget reference table served by the
// Batcomputer API. The table is seeded at construction and never
// mutates, so it is safe for concurrent reads without locking.
package catalog

import (
	"sort"
	"strings"
)

// Gadget is one entry in the inventory reference table.
type Gadget struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	InStock bool   `json:"in_stock"`
}

// Catalog is an immutable gadget inventory keyed by id.
type Catalog struct {
	gadgets map[int64]Gadget
	order   []int64
}

// New returns a catalog seeded with the standard field inventory.
func New() *Catalog {
	return From([]Gadget{
		{ID: 1, Name: "Batarang", Type: "Standard Issue", InStock: true},
		{ID: 2, Name: "Grappling Hook", Type: "Mobility", InStock: true},
		{ID: 3, Name: "Smoke Pellet", Type: "Stealth", InStock: false},
		{ID: 4, Name: "Remote Hacking Device", Type: "Tech", InStock: true},
		{ID: 5, Name: "Explosive Gel", Type: "Demolition", InStock: true},
	})
}

// From builds a catalog from an explicit gadget list. Used by tests and
// by configs that override the default inventory.
func From(gadgets []Gadget) *Catalog {
	c := &Catalog{gadgets: make(map[int64]Gadget, len(gadgets))}
	for _, g := range gadgets {
		if _, dup := c.gadgets[g.ID]; dup {
			continue
		}
		c.gadgets[g.ID] = g
		c.order = append(c.order, g.ID)
	}
	sort.Slice(c.order, func(i, j int) bool { return c.order[i] < c.order[j] })
	return c
}

// Get returns the gadget with the given id.
func (c *Catalog) Get(id int64) (Gadget, error) {
	g, ok := c.gadgets[id]
	if !ok {
		return Gadget{}, &NotFoundError{ID: id}
	}
	return g, nil
}

// List returns all gadgets in ascending id order.
func (c *Catalog) List() []Gadget {
	out := make([]Gadget, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.gadgets[id])
	}
	return out
}

// NameExists reports whether a gadget with the given name is already in
// the inventory. Comparison is case-insensitive.
func (c *Catalog) NameExists(name string) bool {
	for _, g := range c.gadgets {
		if strings.EqualFold(g.Name, name) {
			return true
		}
	}
	return false
}

// Count returns the number of gadget types in the inventory.
func (c *Catalog) Count() int {
	return len(c.gadgets)
}

// InStockCount returns the number of gadget types currently in stock.
func (c *Catalog) InStockCount() int {
	n := 0
	for _, g := range c.gadgets {
		if g.InStock {
			n++
		}
	}
	return n
}
