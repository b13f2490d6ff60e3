// Package itemdata resolves item identifiers against the static reference
// datasets shipped with the binary. The two era families use disjoint
// datasets; lookups never touch I/O.
package itemdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
)

//go:embed data/items.json data/items_era.json
var dataFS embed.FS

type Item struct {
	ItemLevel int    `json:"itemLevel"`
	DisplayID *int   `json:"displayId"`
	Icon      string `json:"icon"`
}

type Resolver struct {
	items    map[int]Item
	eraItems map[int]Item
}

func NewResolver() (*Resolver, error) {
	items, err := loadDataset("data/items.json")
	if err != nil {
		return nil, err
	}
	eraItems, err := loadDataset("data/items_era.json")
	if err != nil {
		return nil, err
	}
	return &Resolver{items: items, eraItems: eraItems}, nil
}

// Lookup resolves each id against the dataset for the given era family.
// Unknown ids are simply absent from the result.
func (r *Resolver) Lookup(ids []int, era bool) map[int]Item {
	dataset := r.items
	if era {
		dataset = r.eraItems
	}

	resolved := make(map[int]Item, len(ids))
	for _, id := range ids {
		if item, ok := dataset[id]; ok {
			resolved[id] = item
		}
	}
	return resolved
}

func loadDataset(path string) (map[int]Item, error) {
	raw, err := dataFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read item dataset %s: %w", path, err)
	}

	var keyed map[string]Item
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, fmt.Errorf("failed to parse item dataset %s: %w", path, err)
	}

	items := make(map[int]Item, len(keyed))
	for key, item := range keyed {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid item id %q in %s: %w", key, path, err)
		}
		items[id] = item
	}
	return items, nil
}
