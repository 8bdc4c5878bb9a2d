// Package catalog provides the product and category data that data backed
// widgets fetch after the layout has rendered.
package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a query matches a category that does not exist.
var ErrNotFound = errors.New("catalog: not found")

// Product is a sellable item shown by product rails and grids. MRP is the
// list price shown struck through when it exceeds Price. MOQ, Margin and
// StockWarning are merchandising labels rendered as is.
type Product struct {
	ID           string   `json:"id" yaml:"id" validate:"required"`
	Name         string   `json:"name" yaml:"name" validate:"required"`
	CategoryID   string   `json:"categoryId" yaml:"categoryId" validate:"required"`
	Price        float64  `json:"price" yaml:"price" validate:"gte=0"`
	MRP          float64  `json:"mrp,omitempty" yaml:"mrp" validate:"omitempty,gtefield=Price"`
	Currency     string   `json:"currency" yaml:"currency" validate:"omitempty,len=3"`
	Unit         string   `json:"unit,omitempty" yaml:"unit"`
	ImageURL     string   `json:"imageUrl,omitempty" yaml:"imageUrl" validate:"omitempty,url"`
	Rating       float64  `json:"rating,omitempty" yaml:"rating" validate:"gte=0,lte=5"`
	Tags         []string `json:"tags,omitempty" yaml:"tags"`
	MOQ          string   `json:"moq,omitempty" yaml:"moq"`
	Margin       string   `json:"margin,omitempty" yaml:"margin"`
	StockWarning string   `json:"stockWarning,omitempty" yaml:"stockWarning"`
}

// Category groups products and is listed by category grids.
type Category struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	Name     string `json:"name" yaml:"name" validate:"required"`
	ImageURL string `json:"imageUrl,omitempty" yaml:"imageUrl" validate:"omitempty,url"`
	Position int    `json:"position,omitempty" yaml:"position"`
}

// Query selects products or categories. Zero values mean "no filter";
// Limit <= 0 means no limit.
type Query struct {
	CategoryID  string
	CategoryIDs []string
	Collection  string
	Limit       int
}

// Provider is the secondary data source used by widgets.
type Provider interface {
	Products(ctx context.Context, query Query) ([]Product, error)
	Categories(ctx context.Context, query Query) ([]Category, error)
}
