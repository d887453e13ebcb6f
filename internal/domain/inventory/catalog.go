package inventory

import (
	"sort"
	"strings"
)

// BatchCatalog answers "what sellable batches exist for medicine M" over a
// branch-scoped snapshot of inventory. It holds no state beyond the snapshot
// and never mutates it.
type BatchCatalog struct {
	batches []InventoryBatch
}

// NewBatchCatalog creates a catalog over a branch inventory snapshot
func NewBatchCatalog(batches []InventoryBatch) *BatchCatalog {
	return &BatchCatalog{batches: batches}
}

// Medicines returns the sorted, de-duplicated medicine names that have at
// least one batch with sellable quantity.
func (c *BatchCatalog) Medicines() []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, b := range c.batches {
		if !b.HasStock() {
			continue
		}
		if _, ok := seen[b.Medicine]; ok {
			continue
		}
		seen[b.Medicine] = struct{}{}
		names = append(names, b.Medicine)
	}
	sort.Strings(names)
	return names
}

// SearchMedicines returns medicines whose name contains the term,
// case-insensitively. An empty term matches everything.
func (c *BatchCatalog) SearchMedicines(term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	all := c.Medicines()
	if term == "" {
		return all
	}
	matched := make([]string, 0, len(all))
	for _, name := range all {
		if strings.Contains(strings.ToLower(name), term) {
			matched = append(matched, name)
		}
	}
	return matched
}

// BatchesFor returns the sellable batches of a medicine in dispensing order:
// ascending expiry date, ties broken by batch number so the order is stable
// across calls against the same snapshot.
func (c *BatchCatalog) BatchesFor(medicine string) []InventoryBatch {
	matched := make([]InventoryBatch, 0)
	for _, b := range c.batches {
		if b.Medicine == medicine && b.HasStock() {
			matched = append(matched, b)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].ExpiryDate.Equal(matched[j].ExpiryDate) {
			return matched[i].ExpiryDate.Before(matched[j].ExpiryDate)
		}
		return matched[i].BatchNumber < matched[j].BatchNumber
	})
	return matched
}

// All returns the raw snapshot, including zero-quantity batches
func (c *BatchCatalog) All() []InventoryBatch {
	return c.batches
}
