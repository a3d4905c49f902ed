package app

import (
	"context"
	"errors"
	"testing"

	"github.com/jaakkos/storefront/internal/domain"
)

func TestCatalog_Product(t *testing.T) {
	cat := NewCatalog(&fakeCatalog{products: []domain.Product{backpack, tshirt}}, nil)
	p, err := cat.Product(context.Background(), 2)
	if err != nil {
		t.Fatalf("Product: %v", err)
	}
	if p.Title != "T-Shirt" {
		t.Errorf("Title = %q", p.Title)
	}
}

func TestCatalog_InvalidID(t *testing.T) {
	svc := &fakeCatalog{onProduct: func() { t.Error("no request expected for an invalid id") }}
	cat := NewCatalog(svc, nil)
	for _, id := range []int{0, -3} {
		_, err := cat.Product(context.Background(), id)
		if KindOf(err) != KindValidation || err.Error() != MsgInvalidProductID {
			t.Errorf("Product(%d) err = %v", id, err)
		}
	}
}

func TestCatalog_StaleResultDiscarded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cat := NewCatalog(&fakeCatalog{products: []domain.Product{backpack}, onProduct: cancel}, nil)

	p, err := cat.Product(ctx, backpack.ID)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if p.ID != 0 {
		t.Errorf("stale product returned: %+v", p)
	}
}

func TestCatalog_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantMsg  string
	}{
		{"not found", &RemoteError{StatusCode: 404}, KindNetwork, MsgFetchProductFailed},
		{"not configured", ErrNotConfigured, KindConfig, MsgNotConfigured},
		{"malformed", ErrMalformedResponse, KindProtocol, MsgInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := NewCatalog(&fakeCatalog{err: tt.err}, nil)
			_, err := cat.Product(context.Background(), 1)
			if KindOf(err) != tt.wantKind || err.Error() != tt.wantMsg {
				t.Errorf("err = %v (kind %q), want %q / %q", err, KindOf(err), tt.wantKind, tt.wantMsg)
			}
		})
	}
}

func TestCatalog_Products(t *testing.T) {
	cat := NewCatalog(&fakeCatalog{products: []domain.Product{backpack, tshirt}}, nil)
	ps, err := cat.Products(context.Background())
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(ps) != 2 {
		t.Errorf("len = %d, want 2", len(ps))
	}

	failing := NewCatalog(&fakeCatalog{err: &RemoteError{StatusCode: 503}}, nil)
	if _, err := failing.Products(context.Background()); err == nil || err.Error() != MsgFetchProductsFailed {
		t.Errorf("err = %v, want %q", err, MsgFetchProductsFailed)
	}
}

func TestCatalog_NegativePriceIsInvalidResponse(t *testing.T) {
	broken := domain.Product{ID: 7, Title: "Refund", Price: -4.50}
	cat := NewCatalog(&fakeCatalog{products: []domain.Product{backpack, broken}}, nil)

	if _, err := cat.Product(context.Background(), broken.ID); KindOf(err) != KindProtocol || err.Error() != MsgInvalidResponse {
		t.Errorf("Product err = %v (kind %q), want protocol / %q", err, KindOf(err), MsgInvalidResponse)
	}
	if ps, err := cat.Products(context.Background()); KindOf(err) != KindProtocol || ps != nil {
		t.Errorf("Products = %v, %v; want nil and a protocol error", ps, err)
	}
	if _, err := cat.Product(context.Background(), backpack.ID); err != nil {
		t.Errorf("Product(%d): %v", backpack.ID, err)
	}
}
