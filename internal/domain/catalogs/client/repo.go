package client

import (
	"context"

	"taller/internal/core/id"
)

// Repository defines storage operations for the client catalog.
type Repository interface {
	Create(ctx context.Context, client *Client) error
	GetByID(ctx context.Context, clientID id.ID) (*Client, error)
	Update(ctx context.Context, client *Client) error
	Delete(ctx context.Context, clientID id.ID) error
	List(ctx context.Context, limit, offset int) ([]Client, error)

	// CountOrders reports orders referencing the client. Clients with
	// order history are never hard-deleted.
	CountOrders(ctx context.Context, clientID id.ID) (int64, error)
}
