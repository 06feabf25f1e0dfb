package content

import (
	"errors"
	"fmt"
	"sort"

	"github.com/phrazzld/petdeck/internal/domain"
)

// Catalog errors
var (
	ErrDuplicateItem = errors.New("duplicate content item")
	ErrEmptyCatalog  = errors.New("content catalog is empty")
)

// Catalog is an immutable, ordered view of every level's items.
type Catalog struct {
	levels []int
	items  map[int][]domain.ContentItem
	index  map[int]map[domain.ContentID]int
}

// New builds a catalog from items. Item order within a level is preserved.
func New(items []domain.ContentItem) (*Catalog, error) {
	c := &Catalog{
		items: make(map[int][]domain.ContentItem),
		index: make(map[int]map[domain.ContentID]int),
	}

	for _, it := range items {
		if it.Level < 1 {
			return nil, fmt.Errorf("%w: item %q", domain.ErrInvalidLevel, it.ID)
		}
		if it.ID == "" {
			return nil, fmt.Errorf("level %d: %w", it.Level, domain.ErrEmptyContentID)
		}
		idx, ok := c.index[it.Level]
		if !ok {
			idx = make(map[domain.ContentID]int)
			c.index[it.Level] = idx
			c.levels = append(c.levels, it.Level)
		}
		if _, dup := idx[it.ID]; dup {
			return nil, fmt.Errorf("%w: level %d id %q", ErrDuplicateItem, it.Level, it.ID)
		}
		idx[it.ID] = len(c.items[it.Level])
		c.items[it.Level] = append(c.items[it.Level], it)
	}

	if len(c.levels) == 0 {
		return nil, ErrEmptyCatalog
	}
	sort.Ints(c.levels)
	return c, nil
}

// Levels returns the levels that have content, ascending.
func (c *Catalog) Levels() []int {
	out := make([]int, len(c.levels))
	copy(out, c.levels)
	return out
}

// Has reports whether level has content.
func (c *Catalog) Has(level int) bool {
	return len(c.items[level]) > 0
}

// Items returns the items of level in catalog order.
func (c *Catalog) Items(level int) []domain.ContentItem {
	src := c.items[level]
	out := make([]domain.ContentItem, len(src))
	copy(out, src)
	return out
}

// Item looks up one item.
func (c *Catalog) Item(level int, id domain.ContentID) (domain.ContentItem, bool) {
	i, ok := c.index[level][id]
	if !ok {
		return domain.ContentItem{}, false
	}
	return c.items[level][i], true
}

// Size returns the number of items in level.
func (c *Catalog) Size(level int) int {
	return len(c.items[level])
}
