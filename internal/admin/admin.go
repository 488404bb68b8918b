// Package admin is the console client: credential login plus CRUD over
// products, categories, users and orders. Role enforcement is the backend's
// responsibility; this client only carries the calls.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/smartcommerce/storefront/internal/api"
	"github.com/smartcommerce/storefront/internal/catalog"
	"github.com/smartcommerce/storefront/internal/order"
	"github.com/smartcommerce/storefront/internal/user"
)

var ErrLoginFailed = errors.New("admin: login failed")

type AccountSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Login authenticates with admin credentials and installs the returned
// bearer token into the shared client.
func (s *Service) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}

	var resp struct {
		UserID string `json:"userId"`
		Token  string `json:"token"`
	}
	err := s.client.SessionJSON(ctx, http.MethodPost, "/api/admin/auth/login", nil, body, &resp)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return ErrLoginFailed
		}
		return fmt.Errorf("admin: login request failed: %w", err)
	}

	s.client.SetCredentials(api.Credentials{UserID: resp.UserID, Token: resp.Token})
	log.Info().Str("email", email).Msg("admin: signed in")
	return nil
}

// Orders lists all orders, optionally filtered by status.
func (s *Service) Orders(ctx context.Context, status order.Status) ([]order.Order, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status.String())
	}

	var orders []order.Order
	if err := s.client.JSON(ctx, http.MethodGet, "/api/admin/orders", query, nil, &orders); err != nil {
		return nil, fmt.Errorf("admin: failed to list orders: %w", err)
	}
	return orders, nil
}

// SetOrderStatus advances an order through fulfillment.
func (s *Service) SetOrderStatus(ctx context.Context, orderID int64, status order.Status) error {
	query := url.Values{}
	query.Set("status", status.String())

	err := s.client.JSON(ctx, http.MethodPut, "/api/admin/orders/"+strconv.FormatInt(orderID, 10)+"/status", query, nil, nil)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return order.ErrOrderNotFound
		}
		return fmt.Errorf("admin: failed to set status for order %d: %w", orderID, err)
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, p catalog.Product) (*catalog.Product, error) {
	query := url.Values{}
	query.Set("categoryId", strconv.FormatInt(p.CategoryID, 10))

	var created catalog.Product
	if err := s.client.JSON(ctx, http.MethodPost, "/api/admin/products", query, p, &created); err != nil {
		return nil, fmt.Errorf("admin: failed to create product: %w", err)
	}
	return &created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, p catalog.Product) error {
	query := url.Values{}
	query.Set("categoryId", strconv.FormatInt(p.CategoryID, 10))

	err := s.client.JSON(ctx, http.MethodPut, "/api/admin/products/"+strconv.FormatInt(p.ID, 10), query, p, nil)
	if err != nil {
		return fmt.Errorf("admin: failed to update product %d: %w", p.ID, err)
	}
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	err := s.client.JSON(ctx, http.MethodDelete, "/api/admin/products/"+strconv.FormatInt(id, 10), nil, nil, nil)
	if err != nil {
		return fmt.Errorf("admin: failed to delete product %d: %w", id, err)
	}
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*catalog.Category, error) {
	var created catalog.Category
	body := map[string]string{"name": name}
	if err := s.client.JSON(ctx, http.MethodPost, "/api/admin/categories", nil, body, &created); err != nil {
		return nil, fmt.Errorf("admin: failed to create category: %w", err)
	}
	return &created, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	err := s.client.JSON(ctx, http.MethodDelete, "/api/admin/categories/"+strconv.FormatInt(id, 10), nil, nil, nil)
	if err != nil {
		return fmt.Errorf("admin: failed to delete category %d: %w", id, err)
	}
	return nil
}

func (s *Service) Users(ctx context.Context) ([]AccountSummary, error) {
	var users []AccountSummary
	if err := s.client.JSON(ctx, http.MethodGet, "/api/admin/users", nil, nil, &users); err != nil {
		return nil, fmt.Errorf("admin: failed to list users: %w", err)
	}
	return users, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	err := s.client.JSON(ctx, http.MethodDelete, "/api/admin/users/"+strconv.FormatInt(id, 10), nil, nil, nil)
	if err != nil {
		return fmt.Errorf("admin: failed to delete user %d: %w", id, err)
	}
	return nil
}

func (s *Service) UserAddresses(ctx context.Context, userID int64) ([]user.Address, error) {
	var addrs []user.Address
	err := s.client.JSON(ctx, http.MethodGet, "/api/admin/users/"+strconv.FormatInt(userID, 10)+"/addresses", nil, nil, &addrs)
	if err != nil {
		return nil, fmt.Errorf("admin: failed to list addresses for user %d: %w", userID, err)
	}
	return addrs, nil
}
