package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/smartcommerce/storefront/internal/api"
)

var ErrAddressNotFound = errors.New("user: address not found")

// Address is a saved delivery address on the profile. Orders snapshot it at
// creation time instead of referencing it.
type Address struct {
	ID       int64  `json:"id,omitempty"`
	HouseNo  string `json:"houseNo"`
	Area     string `json:"area"`
	Landmark string `json:"landmark"`
	City     string `json:"city"`
	State    string `json:"state"`
	PinCode  string `json:"pinCode"`
	Country  string `json:"country"`
	Type     string `json:"type"`
}

type Profile struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Addresses []Address `json:"addresses"`
}

// Service is the profile/address client.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	err := s.client.JSON(ctx, http.MethodGet, "/api/user/profile", nil, nil, &p)
	if err != nil {
		return nil, fmt.Errorf("user: failed to fetch profile: %w", err)
	}
	return &p, nil
}

func (s *Service) AddAddress(ctx context.Context, profileID int64, addr Address) (*Address, error) {
	query := url.Values{}
	query.Set("userId", strconv.FormatInt(profileID, 10))

	var created Address
	err := s.client.JSON(ctx, http.MethodPost, "/api/user/addresses", query, addr, &created)
	if err != nil {
		return nil, fmt.Errorf("user: failed to add address: %w", err)
	}
	return &created, nil
}

func (s *Service) UpdateAddress(ctx context.Context, profileID int64, addr Address) error {
	query := url.Values{}
	query.Set("userId", strconv.FormatInt(profileID, 10))

	err := s.client.JSON(ctx, http.MethodPut, "/api/user/addresses/"+strconv.FormatInt(addr.ID, 10), query, addr, nil)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return ErrAddressNotFound
		}
		return fmt.Errorf("user: failed to update address %d: %w", addr.ID, err)
	}
	return nil
}

func (s *Service) DeleteAddress(ctx context.Context, profileID, addressID int64) error {
	query := url.Values{}
	query.Set("userId", strconv.FormatInt(profileID, 10))

	err := s.client.JSON(ctx, http.MethodDelete, "/api/user/addresses/"+strconv.FormatInt(addressID, 10), query, nil, nil)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return ErrAddressNotFound
		}
		return fmt.Errorf("user: failed to delete address %d: %w", addressID, err)
	}
	return nil
}
