package app

import (
	"context"
	"log"

	"github.com/jaakkos/storefront/internal/domain"
)

// Catalog reads products for the presentation layer.
type Catalog struct {
	svc    CatalogService
	logger *log.Logger
}

// NewCatalog returns a Catalog backed by svc.
func NewCatalog(svc CatalogService, logger *log.Logger) *Catalog {
	return &Catalog{svc: svc, logger: logger}
}

// Products lists the catalog. A product with a negative price makes the whole
// response invalid.
func (c *Catalog) Products(ctx context.Context) ([]domain.Product, error) {
	products, err := c.svc.Products(ctx)
	if err != nil {
		logf(c.logger, "Error fetching products: %v", err)
		return nil, catalogError(err, MsgFetchProductsFailed)
	}
	for _, p := range products {
		if p.Price < 0 {
			logf(c.logger, "Error fetching products: product %d has negative price %v", p.ID, p.Price)
			return nil, newError(KindProtocol, MsgInvalidResponse, nil)
		}
	}
	return products, nil
}

// Product fetches one product. A result that arrives after ctx is done is
// discarded and ctx.Err() is returned, so a caller that has gone away never
// applies a stale product.
func (c *Catalog) Product(ctx context.Context, id int) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, newError(KindValidation, MsgInvalidProductID, nil)
	}
	p, err := c.svc.Product(ctx, id)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.Product{}, ctxErr
	}
	if err != nil {
		logf(c.logger, "Error fetching product %d: %v", id, err)
		return domain.Product{}, catalogError(err, MsgFetchProductFailed)
	}
	if p.Price < 0 {
		logf(c.logger, "Error fetching product %d: negative price %v", id, p.Price)
		return domain.Product{}, newError(KindProtocol, MsgInvalidResponse, nil)
	}
	return p, nil
}
