package catalog

import (
	"fmt"
	"sort"
)

// Catalog is the immutable in-memory book table. It is safe for concurrent reads.
type Catalog struct {
	books      []Book
	byID       map[int64]int
	categories []string
}

// New builds a catalog from rows in table order, resolving large thumbnails
// and rejecting duplicate identifiers.
func New(books []Book) (*Catalog, error) {
	c := &Catalog{
		books: make([]Book, len(books)),
		byID:  make(map[int64]int, len(books)),
	}

	seen := make(map[string]struct{})
	for i, b := range books {
		if _, dup := c.byID[b.ISBN13]; dup {
			return nil, fmt.Errorf("duplicate isbn13 %d at row %d", b.ISBN13, i+1)
		}
		b.LargeThumbnail = LargeThumbnailFor(b.Thumbnail)
		c.books[i] = b
		c.byID[b.ISBN13] = i

		if _, ok := seen[b.Category]; !ok && b.Category != "" {
			seen[b.Category] = struct{}{}
			c.categories = append(c.categories, b.Category)
		}
	}
	sort.Strings(c.categories)

	return c, nil
}

// Books returns the rows in table order. Callers must not modify the slice.
func (c *Catalog) Books() []Book {
	return c.books
}

// Len returns the number of rows
func (c *Catalog) Len() int {
	return len(c.books)
}

// Categories returns the sorted distinct category labels
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// HasCategory reports whether any row carries the given label
func (c *Catalog) HasCategory(category string) bool {
	i := sort.SearchStrings(c.categories, category)
	return i < len(c.categories) && c.categories[i] == category
}

// Lookup returns the book with the given identifier
func (c *Catalog) Lookup(id int64) (Book, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Book{}, false
	}
	return c.books[i], true
}

// Contains reports whether the identifier is present
func (c *Catalog) Contains(id int64) bool {
	_, ok := c.byID[id]
	return ok
}
