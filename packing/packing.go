// Package packing manages a user's packing checklist for one trip. The
// checklist is a user-scoped synchronized value: it follows the user
// across devices but is not shared with other collaborators.
package packing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tripkit/bind"
	"tripkit/docstore/docstore"
	"tripkit/store"
	"tripkit/trip"
)

// Checklist is one user's packing list for one trip.
type Checklist struct {
	groups *bind.Binding[[]trip.PackingGroup]
}

// NewChecklist binds the packing document for the trip in bctx. A fresh
// checklist starts from the default starter groups.
func NewChecklist(bctx bind.Context, local *store.KV, remote docstore.Store) (*Checklist, error) {
	groups, err := bind.New(bind.KeyPacking, DefaultGroups(), bctx, local, remote)
	if err != nil {
		return nil, fmt.Errorf("packing: bind groups: %w", err)
	}
	return &Checklist{groups: groups}, nil
}

// Groups returns the current packing groups.
func (c *Checklist) Groups() []trip.PackingGroup {
	return c.groups.Value()
}

// AddGroup appends an empty group with the given category label.
func (c *Checklist) AddGroup(category string) (trip.PackingGroup, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return trip.PackingGroup{}, fmt.Errorf("%w: category is required", trip.ErrValidation)
	}
	g := trip.PackingGroup{Category: category, Items: []trip.PackingItem{}}
	err := c.groups.Update(func(groups []trip.PackingGroup) ([]trip.PackingGroup, error) {
		for _, existing := range groups {
			if existing.Category == category {
				return nil, fmt.Errorf("%w: category %q already exists", trip.ErrValidation, category)
			}
		}
		return append(groups[:len(groups):len(groups)], g), nil
	})
	if err != nil {
		return trip.PackingGroup{}, err
	}
	return g, nil
}

// AddItem appends an unchecked item to the named group.
func (c *Checklist) AddItem(category, name string) (trip.PackingItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return trip.PackingItem{}, fmt.Errorf("%w: item name is required", trip.ErrValidation)
	}

	item := trip.PackingItem{ID: uuid.New(), Name: name}
	err := c.groups.Update(func(groups []trip.PackingGroup) ([]trip.PackingGroup, error) {
		for i, g := range groups {
			if g.Category != category {
				continue
			}
			next := cloneGroups(groups)
			next[i].Items = append(next[i].Items, item)
			return next, nil
		}
		return nil, trip.ErrNotFound
	})
	if err != nil {
		return trip.PackingItem{}, err
	}
	return item, nil
}

// ToggleItem flips an item's checked flag.
func (c *Checklist) ToggleItem(id uuid.UUID) (trip.PackingItem, error) {
	var toggled trip.PackingItem
	err := c.groups.Update(func(groups []trip.PackingGroup) ([]trip.PackingGroup, error) {
		for gi, g := range groups {
			for ii, item := range g.Items {
				if item.ID != id {
					continue
				}
				next := cloneGroups(groups)
				next[gi].Items[ii].Checked = !item.Checked
				toggled = next[gi].Items[ii]
				return next, nil
			}
		}
		return nil, trip.ErrNotFound
	})
	if err != nil {
		return trip.PackingItem{}, err
	}
	return toggled, nil
}

// RemoveItem deletes an item from whichever group holds it.
func (c *Checklist) RemoveItem(id uuid.UUID) error {
	return c.groups.Update(func(groups []trip.PackingGroup) ([]trip.PackingGroup, error) {
		for gi, g := range groups {
			for ii, item := range g.Items {
				if item.ID != id {
					continue
				}
				next := cloneGroups(groups)
				next[gi].Items = append(next[gi].Items[:ii:ii], next[gi].Items[ii+1:]...)
				return next, nil
			}
		}
		return nil, trip.ErrNotFound
	})
}

// RemoveGroup deletes a whole group and its items.
func (c *Checklist) RemoveGroup(category string) error {
	return c.groups.Update(func(groups []trip.PackingGroup) ([]trip.PackingGroup, error) {
		next := make([]trip.PackingGroup, 0, len(groups))
		found := false
		for _, g := range groups {
			if g.Category == category {
				found = true
				continue
			}
			next = append(next, g)
		}
		if !found {
			return nil, trip.ErrNotFound
		}
		return next, nil
	})
}

// Close tears down the checklist's subscription.
func (c *Checklist) Close() {
	c.groups.Close()
}

// DefaultGroups is the starter checklist for a fresh trip.
func DefaultGroups() []trip.PackingGroup {
	newItems := func(names ...string) []trip.PackingItem {
		items := make([]trip.PackingItem, len(names))
		for i, n := range names {
			items[i] = trip.PackingItem{ID: uuid.New(), Name: n}
		}
		return items
	}
	return []trip.PackingGroup{
		{Category: "Essentials", Items: newItems("Passport", "Wallet", "Phone charger")},
		{Category: "Clothing", Items: newItems("Underwear", "Socks", "Jacket")},
		{Category: "Toiletries", Items: newItems("Toothbrush", "Sunscreen")},
	}
}

// cloneGroups deep-copies the group slice so mutations never alias the
// value still held by the binding.
func cloneGroups(groups []trip.PackingGroup) []trip.PackingGroup {
	next := make([]trip.PackingGroup, len(groups))
	for i, g := range groups {
		items := make([]trip.PackingItem, len(g.Items))
		copy(items, g.Items)
		next[i] = trip.PackingGroup{Category: g.Category, Items: items}
	}
	return next
}
