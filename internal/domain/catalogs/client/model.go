// Package client provides the customer catalog. Clients are the businesses
// and individuals that place quotations and production orders.
package client

import (
	"context"
	"regexp"

	"taller/internal/core/apperror"
	"taller/internal/core/entity"
)

var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRE = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)
)

// Client represents a customer.
type Client struct {
	entity.BaseCatalog

	// RFC is the Mexican tax identifier, optional for walk-in customers.
	RFC *string `db:"rfc" json:"rfc,omitempty"`

	ContactName *string `db:"contact_name" json:"contactName,omitempty"`
	Phone       *string `db:"phone" json:"phone,omitempty"`
	Email       *string `db:"email" json:"email,omitempty"`
	Address     *string `db:"address" json:"address,omitempty"`
	Notes       *string `db:"notes" json:"notes,omitempty"`

	Active bool `db:"active" json:"active"`
}

// NewClient creates an active client. The code is free-form for clients;
// only coded entities go through the sequence allocator.
func NewClient(code, name string) *Client {
	return &Client{
		BaseCatalog: entity.NewBaseCatalog(code, name),
		Active:      true,
	}
}

// Validate implements entity.Validatable.
func (c *Client) Validate(ctx context.Context) error {
	if err := c.BaseCatalog.Validate(ctx); err != nil {
		return err
	}
	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}
	if c.Phone != nil && *c.Phone != "" && !phoneRE.MatchString(*c.Phone) {
		return apperror.NewValidation("invalid phone format").
			WithDetail("field", "phone")
	}
	return nil
}
