// Package catalog holds the static collectible item catalog and the
// sizing presets used when a game is created.
package catalog

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// TrashItems is the full set of collectible item identifiers. Games draw
// a random subset of these; clients map the identifiers to sprites.
var TrashItems = []string{
	"bottle_cap",
	"broken_glass",
	"candy_wrapper",
	"cardboard",
	"chip_bag",
	"chopsticks",
	"cigarette",
	"clothing_item",
	"coffee_cup",
	"default",
	"face_mask",
	"fast_food_wrapper",
	"flyer",
	"food_container",
	"napkin",
	"paper_bag",
	"plastic_bag",
	"plastic_bottle",
	"receipt",
	"soda_can",
	"straw",
}

// SizeTier is a named item-count preset.
type SizeTier string

const (
	TierSnack  SizeTier = "snack"
	TierMedium SizeTier = "medium"
	TierFeast  SizeTier = "feast"
)

// ItemCount returns the number of items for a tier. Unknown tiers fall
// back to the medium preset.
func (t SizeTier) ItemCount() int {
	switch t {
	case TierSnack:
		return 5
	case TierMedium:
		return 10
	case TierFeast:
		return 15
	default:
		return 10
	}
}

// ErrConfiguration indicates a requested item count the catalog cannot serve.
var ErrConfiguration = errors.New("item count exceeds catalog size")

// Sample draws n distinct items uniformly at random from the catalog.
func Sample(n int) ([]string, error) {
	if n < 0 || n > len(TrashItems) {
		return nil, fmt.Errorf("%w: requested %d of %d", ErrConfiguration, n, len(TrashItems))
	}

	perm := rand.Perm(len(TrashItems))
	items := make([]string, n)
	for i := 0; i < n; i++ {
		items[i] = TrashItems[perm[i]]
	}
	return items, nil
}
