package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Fixture is the on-disk catalog format.
type Fixture struct {
	Categories  []Category          `json:"categories" yaml:"categories"`
	Products    []Product           `json:"products" yaml:"products"`
	Collections map[string][]string `json:"collections,omitempty" yaml:"collections"`
}

// Memory is an in-process Provider backed by a Fixture.
type Memory struct {
	mu          sync.RWMutex
	categories  []Category
	products    []Product
	collections map[string][]string
	rejected    []error
}

var _ Provider = (*Memory)(nil)

// NewMemory validates the fixture records and keeps the valid ones. Invalid
// records are skipped and reported through Rejected.
func NewMemory(fixture Fixture) *Memory {
	m := &Memory{collections: make(map[string][]string)}
	m.Replace(fixture)
	return m
}

// Replace swaps the catalog contents atomically.
func (m *Memory) Replace(fixture Fixture) {
	validate := validator.New()

	var rejected []error
	categories := make([]Category, 0, len(fixture.Categories))
	seenCategory := make(map[string]struct{}, len(fixture.Categories))
	for idx, category := range fixture.Categories {
		if err := validate.Struct(category); err != nil {
			rejected = append(rejected, fmt.Errorf("catalog: category %d: %w", idx, err))
			continue
		}
		if _, dup := seenCategory[category.ID]; dup {
			rejected = append(rejected, fmt.Errorf("catalog: category %d: duplicate id %q", idx, category.ID))
			continue
		}
		seenCategory[category.ID] = struct{}{}
		categories = append(categories, category)
	}
	slices.SortStableFunc(categories, func(a, b Category) int {
		return a.Position - b.Position
	})

	products := make([]Product, 0, len(fixture.Products))
	seenProduct := make(map[string]struct{}, len(fixture.Products))
	for idx, product := range fixture.Products {
		if err := validate.Struct(product); err != nil {
			rejected = append(rejected, fmt.Errorf("catalog: product %d: %w", idx, err))
			continue
		}
		if _, dup := seenProduct[product.ID]; dup {
			rejected = append(rejected, fmt.Errorf("catalog: product %d: duplicate id %q", idx, product.ID))
			continue
		}
		seenProduct[product.ID] = struct{}{}
		products = append(products, product)
	}

	collections := make(map[string][]string, len(fixture.Collections))
	for name, ids := range fixture.Collections {
		collections[strings.TrimSpace(name)] = append([]string(nil), ids...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = categories
	m.products = products
	m.collections = collections
	m.rejected = rejected
}

// Rejected lists the records skipped by the last Replace.
func (m *Memory) Rejected() []error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]error(nil), m.rejected...)
}

// Products returns products matching query in fixture order. A collection
// query keeps the collection's order.
func (m *Memory) Products(ctx context.Context, query Query) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if query.CategoryID != "" && !m.hasCategory(query.CategoryID) {
		return nil, fmt.Errorf("%w: category %q", ErrNotFound, query.CategoryID)
	}

	var source []Product
	if query.Collection != "" {
		ids, ok := m.collections[query.Collection]
		if !ok {
			return nil, fmt.Errorf("%w: collection %q", ErrNotFound, query.Collection)
		}
		for _, id := range ids {
			if product, ok := m.product(id); ok {
				source = append(source, product)
			}
		}
	} else {
		source = m.products
	}

	out := make([]Product, 0, len(source))
	for _, product := range source {
		if query.CategoryID != "" && product.CategoryID != query.CategoryID {
			continue
		}
		out = append(out, cloneProduct(product))
		if query.Limit > 0 && len(out) == query.Limit {
			break
		}
	}
	return out, nil
}

// Categories returns categories ordered by position. CategoryIDs restricts and
// orders the result.
func (m *Memory) Categories(ctx context.Context, query Query) ([]Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Category
	if len(query.CategoryIDs) > 0 {
		for _, id := range query.CategoryIDs {
			for _, category := range m.categories {
				if category.ID == id {
					out = append(out, category)
					break
				}
			}
		}
	} else {
		out = append(out, m.categories...)
	}
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	if out == nil {
		out = []Category{}
	}
	return out, nil
}

func (m *Memory) hasCategory(id string) bool {
	for _, category := range m.categories {
		if category.ID == id {
			return true
		}
	}
	return false
}

func (m *Memory) product(id string) (Product, bool) {
	for _, product := range m.products {
		if product.ID == id {
			return product, true
		}
	}
	return Product{}, false
}

func cloneProduct(p Product) Product {
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p
}
