// Package catalog loads the static game content once and bundles it for the
// rest of the engine.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/cory-johannsen/inkquest/content"
	"github.com/cory-johannsen/inkquest/internal/game/condition"
	"github.com/cory-johannsen/inkquest/internal/game/inventory"
	"github.com/cory-johannsen/inkquest/internal/game/npc"
	"github.com/cory-johannsen/inkquest/internal/game/ruleset"
	"github.com/cory-johannsen/inkquest/internal/game/stats"
	"github.com/cory-johannsen/inkquest/internal/game/store"
)

// File names read from a content filesystem.
const (
	ClassesFile    = "classes.yaml"
	ItemsFile      = "items.yaml"
	StoreFile      = "store.yaml"
	AreasFile      = "areas.yaml"
	TiersFile      = "tiers.yaml"
	ConditionsFile = "conditions.yaml"
	LootFile       = "loot.yaml"
)

// Catalog is the read-only content bundle. It is safe for concurrent use
// once loaded.
type Catalog struct {
	Classes    *ruleset.Registry
	Items      *inventory.Registry
	Store      *store.Catalog
	Areas      *npc.AreaRegistry
	Tiers      npc.TierTable
	Conditions *condition.Registry
	Loot       npc.LootTable
}

// Default loads the catalogs embedded in the binary.
func Default() (*Catalog, error) {
	return Load(content.FS)
}

// FromDir loads catalogs from dir, or the embedded defaults when dir is empty.
func FromDir(dir string) (*Catalog, error) {
	if dir == "" {
		return Default()
	}
	return Load(os.DirFS(dir))
}

// Load reads and cross-validates every catalog file in fsys.
//
// Postcondition: every class ability buff names a known condition and every
// store equipment ID is resolvable through Items.
func Load(fsys fs.FS) (*Catalog, error) {
	read := func(name string) ([]byte, error) {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("catalog: reading %s: %w", name, err)
		}
		return data, nil
	}

	c := &Catalog{}
	data, err := read(ClassesFile)
	if err != nil {
		return nil, err
	}
	if c.Classes, err = ruleset.LoadClasses(data); err != nil {
		return nil, err
	}

	if data, err = read(ItemsFile); err != nil {
		return nil, err
	}
	items, err := inventory.LoadItems(data)
	if err != nil {
		return nil, err
	}

	if data, err = read(StoreFile); err != nil {
		return nil, err
	}
	if c.Store, err = store.Load(data); err != nil {
		return nil, err
	}

	c.Items = inventory.NewRegistry()
	for _, it := range append(items, c.Store.Equipment...) {
		if err := c.Items.Register(it); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}

	if data, err = read(AreasFile); err != nil {
		return nil, err
	}
	if c.Areas, err = npc.LoadAreas(data); err != nil {
		return nil, err
	}

	if data, err = read(TiersFile); err != nil {
		return nil, err
	}
	if c.Tiers, err = npc.LoadTiers(data); err != nil {
		return nil, err
	}

	if data, err = read(ConditionsFile); err != nil {
		return nil, err
	}
	if c.Conditions, err = condition.Load(data); err != nil {
		return nil, err
	}

	if data, err = read(LootFile); err != nil {
		return nil, err
	}
	if c.Loot, err = npc.LoadLootTable(data); err != nil {
		return nil, err
	}

	if err := c.crossCheck(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) crossCheck() error {
	var errs []error
	for _, key := range c.Classes.Keys() {
		cls, _ := c.Classes.Class(key)
		for _, a := range cls.Abilities {
			b, ok := a.Effect.(ruleset.Buff)
			if !ok {
				continue
			}
			if _, ok := c.Conditions.Get(b.Condition); !ok {
				errs = append(errs, fmt.Errorf("class %q ability %q: unknown condition %q", key, a.Name, b.Condition))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("catalog: %w", errors.Join(errs...))
	}
	return nil
}

// Model returns the stat model over this catalog.
func (c *Catalog) Model() stats.Model {
	return stats.Model{Classes: c.Classes, Items: c.Items}
}
