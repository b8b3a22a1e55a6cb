// Package inventory loads inspection inventories: YAML documents mapping unit
// IDs to equipment profiles, fetched over HTTP or read from disk.
package inventory

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nholik/plumb-sentinel/internal/equipment"
	"gopkg.in/yaml.v3"
)

// Inventory is one parsed inspection inventory.
type Inventory struct {
	Units map[string]equipment.Profile `yaml:"units" json:"units"`
}

// Parse decodes an inventory document. Profiles are not validated here; an
// unrecognized unit must not hide the rest of the inventory.
func Parse(body []byte) (Inventory, error) {
	if len(body) == 0 {
		return Inventory{}, errors.New("inventory body is empty")
	}

	var inv Inventory
	if err := yaml.Unmarshal(body, &inv); err != nil {
		return Inventory{}, fmt.Errorf("parse inventory: %w", err)
	}
	if len(inv.Units) == 0 {
		return Inventory{}, errors.New("inventory has no units")
	}
	for id := range inv.Units {
		if strings.TrimSpace(id) == "" {
			return Inventory{}, errors.New("inventory contains a unit with an empty id")
		}
	}

	return inv, nil
}

// IDs returns the unit IDs in sorted order.
func (inv Inventory) IDs() []string {
	ids := make([]string, 0, len(inv.Units))
	for id := range inv.Units {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
