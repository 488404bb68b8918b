// Package catalog is the read-only product/category browse client.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/smartcommerce/storefront/internal/api"
)

var ErrProductNotFound = errors.New("catalog: product not found")

type Photo struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         int64   `json:"price"`         // paise
	DiscountPrice int64   `json:"discountPrice"` // paise, 0 when no discount
	Rating        float64 `json:"rating"`
	Stock         int     `json:"stock"`
	InStock       bool    `json:"inStock"`
	CategoryID    int64   `json:"categoryId"`
	Photos        []Photo `json:"photos"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := s.client.JSON(ctx, http.MethodGet, "/api/products", nil, nil, &products); err != nil {
		return nil, fmt.Errorf("catalog: failed to list products: %w", err)
	}
	return products, nil
}

func (s *Service) Product(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := s.client.JSON(ctx, http.MethodGet, "/api/products/"+strconv.FormatInt(id, 10), nil, nil, &p)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("catalog: failed to fetch product %d: %w", id, err)
	}
	return &p, nil
}

func (s *Service) ProductsByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	query := url.Values{}
	query.Set("categoryId", strconv.FormatInt(categoryID, 10))

	var products []Product
	if err := s.client.JSON(ctx, http.MethodGet, "/api/products", query, nil, &products); err != nil {
		return nil, fmt.Errorf("catalog: failed to list products for category %d: %w", categoryID, err)
	}
	return products, nil
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.client.JSON(ctx, http.MethodGet, "/api/categories", nil, nil, &categories); err != nil {
		return nil, fmt.Errorf("catalog: failed to list categories: %w", err)
	}
	return categories, nil
}
