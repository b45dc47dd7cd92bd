// Package cart holds the cart arithmetic and the related-product suggestions.
package cart

import (
	"github.com/MarcGrol/shopperbot/services/backend"
)

type Item = backend.CartItem

const maxRecommendations = 3

// Add appends a snapshot of product. The same product may occur more than once.
func Add(items []Item, product backend.Product) []Item {
	return append(items, Item{Product: product, Quantity: 1})
}

// Remove deletes the first entry with barcode.
func Remove(items []Item, barcode string) ([]Item, Item, bool) {
	for i, item := range items {
		if item.Barcode == barcode {
			remaining := make([]Item, 0, len(items)-1)
			remaining = append(remaining, items[:i]...)
			remaining = append(remaining, items[i+1:]...)
			return remaining, item, true
		}
	}
	return items, Item{}, false
}

// Live drops the lines that hold no units.
func Live(items []Item) []Item {
	live := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Units() > 0 {
			live = append(live, item)
		}
	}
	return live
}

// Find returns the first line with barcode that still holds units.
func Find(items []Item, barcode string) (Item, bool) {
	for _, item := range items {
		if item.Barcode == barcode && item.Units() > 0 {
			return item, true
		}
	}
	return Item{}, false
}

func Total(items []Item) int {
	total := 0
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

func Contains(items []Item, barcode string) bool {
	return Count(items, barcode) > 0
}

// Count sums the units of all entries with barcode.
func Count(items []Item, barcode string) int {
	count := 0
	for _, item := range items {
		if item.Barcode == barcode {
			count += item.Units()
		}
	}
	return count
}

// Recommend suggests products from the same category as current. When there are none, the first
// two other products of the catalog are suggested instead.
func Recommend(current backend.Product, catalog []backend.Product) []backend.Product {
	related := []backend.Product{}
	for _, p := range catalog {
		if p.Category == current.Category && p.Barcode != current.Barcode {
			related = append(related, p)
		}
	}

	if len(related) < 1 {
		for _, p := range catalog {
			if p.Barcode != current.Barcode {
				related = append(related, p)
			}
			if len(related) == 2 {
				break
			}
		}
	}

	if len(related) > maxRecommendations {
		related = related[:maxRecommendations]
	}
	return related
}
