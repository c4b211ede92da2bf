package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	fieldDeliveryID = "delivery_id"
	fieldAddressID  = "address_id"
)

type hashStore interface {
	HSetWithTTL(ctx context.Context, key string, ttl time.Duration, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	CartSessionKey(sessionKey string) string
}

// Selections are the checkout choices recorded next to a cart.
type Selections struct {
	DeliveryID *uuid.UUID
	AddressID  string
}

// HasDelivery reports whether a delivery option was chosen.
func (s Selections) HasDelivery() bool { return s.DeliveryID != nil }

// HasAddress reports whether a shipping address was chosen.
func (s Selections) HasAddress() bool { return s.AddressID != "" }

// Store keeps per-session checkout selections in a Redis hash.
type Store struct {
	hashes hashStore
	keyer  sessionKeyer
	ttl    time.Duration
}

// Backend is satisfied by the shared redis client.
type Backend interface {
	hashStore
	sessionKeyer
}

func NewStore(backend Backend, ttl time.Duration) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Store{hashes: backend, keyer: backend, ttl: ttl}, nil
}

// Load returns the current selections; an unknown session has none.
func (s *Store) Load(ctx context.Context, sessionKey string) (Selections, error) {
	fields, err := s.hashes.HGetAll(ctx, s.keyer.CartSessionKey(sessionKey))
	if err != nil {
		return Selections{}, fmt.Errorf("load session selections: %w", err)
	}
	var sel Selections
	if raw := strings.TrimSpace(fields[fieldDeliveryID]); raw != "" {
		id, err := uuid.Parse(raw)
		if err == nil {
			sel.DeliveryID = &id
		}
	}
	sel.AddressID = strings.TrimSpace(fields[fieldAddressID])
	return sel, nil
}

func (s *Store) SetDelivery(ctx context.Context, sessionKey string, deliveryID uuid.UUID) error {
	return s.hashes.HSetWithTTL(ctx, s.keyer.CartSessionKey(sessionKey), s.ttl, map[string]string{
		fieldDeliveryID: deliveryID.String(),
	})
}

func (s *Store) SetAddress(ctx context.Context, sessionKey, addressID string) error {
	return s.hashes.HSetWithTTL(ctx, s.keyer.CartSessionKey(sessionKey), s.ttl, map[string]string{
		fieldAddressID: addressID,
	})
}

// ResetDelivery drops the delivery choice so it must be made again.
func (s *Store) ResetDelivery(ctx context.Context, sessionKey string) error {
	return s.hashes.HDel(ctx, s.keyer.CartSessionKey(sessionKey), fieldDeliveryID)
}

// Clear deletes every selection; clearing an absent session is not an error.
func (s *Store) Clear(ctx context.Context, sessionKey string) error {
	return s.hashes.Del(ctx, s.keyer.CartSessionKey(sessionKey))
}
