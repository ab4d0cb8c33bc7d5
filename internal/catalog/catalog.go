// Package catalog holds the read-only table of maintenance tasks offered by the shop:
// display names, nominal durations and the parts each task consumes.
package catalog

import (
	"fmt"
)

type (
	PartQuantity struct {
		Part     string `json:"part"`
		Quantity int    `json:"quantity"`
	}
	Task struct {
		ID    string         `json:"value"`
		Name  string         `json:"name"`
		Hours float64        `json:"time"`
		Parts []PartQuantity `json:"-"`
	}
	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Tasks []Task `json:"tasks"`
	}
)

// Catalog is immutable once built. Lookups never mutate it, so a single
// instance can be shared by every request handler.
type Catalog struct {
	categories []Category
	byID       map[string]Task
	order      []string
}

func New(categories []Category) (*Catalog, error) {
	c := &Catalog{
		categories: make([]Category, 0, len(categories)),
		byID:       make(map[string]Task),
	}

	for _, cat := range categories {
		copied := Category{ID: cat.ID, Name: cat.Name, Tasks: make([]Task, 0, len(cat.Tasks))}
		for _, t := range cat.Tasks {
			if t.ID == "" {
				return nil, fmt.Errorf("category %s: task with empty id", cat.ID)
			}
			if _, exists := c.byID[t.ID]; exists {
				return nil, fmt.Errorf("duplicate task id: %s", t.ID)
			}
			if t.Hours < 0 {
				return nil, fmt.Errorf("task %s: negative duration", t.ID)
			}

			t.Parts = append([]PartQuantity(nil), t.Parts...)
			c.byID[t.ID] = t
			c.order = append(c.order, t.ID)
			copied.Tasks = append(copied.Tasks, t)
		}
		c.categories = append(c.categories, copied)
	}

	return c, nil
}

func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = Category{ID: cat.ID, Name: cat.Name, Tasks: append([]Task(nil), cat.Tasks...)}
	}
	return out
}

func (c *Catalog) Lookup(id string) (Task, bool) {
	t, ok := c.byID[id]
	t.Parts = append([]PartQuantity(nil), t.Parts...)
	return t, ok
}

// Hours returns the nominal duration of a task, or 0 when the id is unknown.
func (c *Catalog) Hours(id string) float64 {
	return c.byID[id].Hours
}

// Requirements returns the parts consumed by a task in declaration order.
// Unknown ids and part-free tasks both yield nil.
func (c *Catalog) Requirements(id string) []PartQuantity {
	t, ok := c.byID[id]
	if !ok || len(t.Parts) == 0 {
		return nil
	}
	return append([]PartQuantity(nil), t.Parts...)
}

func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

func (c *Catalog) Len() int {
	return len(c.order)
}
