package service

import (
	"context"
	"fmt"

	"github.com/angtech/catalog-api/internal/domain"
	"github.com/angtech/catalog-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var catalogTracer = otel.Tracer("service/catalog")

// Catalog serves product listings for the storefront and product writes for
// the back office.
type Catalog struct {
	products port.ProductStore
	logger   *zap.Logger
}

// NewCatalog creates the catalog service.
func NewCatalog(products port.ProductStore, logger *zap.Logger) *Catalog {
	return &Catalog{products: products, logger: logger}
}

// List returns products matching the filter. All filter fields are optional
// and AND together; an inverted price range simply matches nothing.
func (c *Catalog) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "Catalog.List")
	defer span.End()

	return c.products.List(ctx, filter)
}

// Get returns one product by id.
func (c *Catalog) Get(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "Catalog.Get")
	defer span.End()

	return c.products.Get(ctx, id)
}

// Filters returns the distinct brand and type lists for the storefront
// filter UI, fetched concurrently.
func (c *Catalog) Filters(ctx context.Context) (*domain.CatalogFilters, error) {
	ctx, span := catalogTracer.Start(ctx, "Catalog.Filters")
	defer span.End()

	var filters domain.CatalogFilters
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		brands, err := c.products.DistinctBrands(gCtx)
		if err != nil {
			return fmt.Errorf("distinct brands: %w", err)
		}
		filters.Brands = brands
		return nil
	})

	g.Go(func() error {
		types, err := c.products.DistinctTypes(gCtx)
		if err != nil {
			return fmt.Errorf("distinct types: %w", err)
		}
		filters.Types = types
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &filters, nil
}

// Create validates and inserts a new product.
func (c *Catalog) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "Catalog.Create")
	defer span.End()

	if err := validateProduct(p); err != nil {
		return nil, err
	}
	return c.products.Create(ctx, p)
}

// Update validates and applies a partial product edit.
func (c *Catalog) Update(ctx context.Context, id string, update domain.ProductUpdate) (*domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "Catalog.Update")
	defer span.End()

	if err := validateProductUpdate(update); err != nil {
		return nil, err
	}
	return c.products.Update(ctx, id, update)
}

// Delete removes a product from the catalog.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	ctx, span := catalogTracer.Start(ctx, "Catalog.Delete")
	defer span.End()

	if err := c.products.Delete(ctx, id); err != nil {
		return err
	}
	c.logger.Info("product removed from catalog", zap.String("product_id", id))
	return nil
}

func validateProduct(p *domain.Product) error {
	switch {
	case p.Name == "":
		return &domain.ErrValidation{Field: "name", Message: "name is required"}
	case !domain.ValidProductType(string(p.Type)):
		return &domain.ErrValidation{Field: "type", Message: fmt.Sprintf("%q is not a valid product type", p.Type)}
	case p.Brand == "":
		return &domain.ErrValidation{Field: "brand", Message: "brand is required"}
	case p.ImageURL == "":
		return &domain.ErrValidation{Field: "imageURL", Message: "imageURL is required"}
	case p.Description == "":
		return &domain.ErrValidation{Field: "description", Message: "description is required"}
	case p.Price < 0:
		return &domain.ErrValidation{Field: "price", Message: "price must not be negative"}
	case p.Stock < 0:
		return &domain.ErrValidation{Field: "stock", Message: "stock must not be negative"}
	}
	return nil
}

func validateProductUpdate(u domain.ProductUpdate) error {
	if u.Type != nil && !domain.ValidProductType(*u.Type) {
		return &domain.ErrValidation{Field: "type", Message: fmt.Sprintf("%q is not a valid product type", *u.Type)}
	}
	if u.Price != nil && *u.Price < 0 {
		return &domain.ErrValidation{Field: "price", Message: "price must not be negative"}
	}
	if u.Stock != nil && *u.Stock < 0 {
		return &domain.ErrValidation{Field: "stock", Message: "stock must not be negative"}
	}
	if u.Name != nil && *u.Name == "" {
		return &domain.ErrValidation{Field: "name", Message: "name must not be empty"}
	}
	return nil
}
