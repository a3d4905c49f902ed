package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jaakkos/storefront/internal/domain"
)

// CatalogClient implements app.CatalogService.
type CatalogClient struct{ c *Client }

func NewCatalogClient(c *Client) *CatalogClient { return &CatalogClient{c: c} }

func (cc *CatalogClient) Products(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := cc.c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (cc *CatalogClient) Product(ctx context.Context, id int) (domain.Product, error) {
	var p domain.Product
	if err := cc.c.do(ctx, http.MethodGet, "/products/"+strconv.Itoa(id), nil, &p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}
