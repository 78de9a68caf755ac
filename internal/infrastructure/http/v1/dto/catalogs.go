package dto

import (
	"taller/internal/core/types"
	"taller/internal/domain/catalogs/client"
	"taller/internal/domain/catalogs/item"
	"taller/internal/domain/catalogs/supplier"
)

// --- Client DTOs ---

// CreateClientRequest is the request body for creating a client.
type CreateClientRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	RFC         *string `json:"rfc"`
	ContactName *string `json:"contactName"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	Notes       *string `json:"notes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateClientRequest) ToEntity() *client.Client {
	c := client.NewClient(r.Code, r.Name)
	c.RFC = r.RFC
	c.ContactName = r.ContactName
	c.Phone = r.Phone
	c.Email = r.Email
	c.Address = r.Address
	c.Notes = r.Notes
	return c
}

// UpdateClientRequest is the request body for updating a client.
type UpdateClientRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	RFC         *string `json:"rfc"`
	ContactName *string `json:"contactName"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	Notes       *string `json:"notes"`
	Active      bool    `json:"active"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateClientRequest) ApplyTo(c *client.Client) {
	c.Code = r.Code
	c.Name = r.Name
	c.RFC = r.RFC
	c.ContactName = r.ContactName
	c.Phone = r.Phone
	c.Email = r.Email
	c.Address = r.Address
	c.Notes = r.Notes
	c.Active = r.Active
	c.Version = r.Version
}

// --- Supplier DTOs ---

// CreateSupplierRequest is the request body for creating a supplier.
type CreateSupplierRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	ContactName *string `json:"contactName"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Notes       *string `json:"notes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateSupplierRequest) ToEntity() *supplier.Supplier {
	s := supplier.NewSupplier(r.Code, r.Name)
	s.ContactName = r.ContactName
	s.Phone = r.Phone
	s.Email = r.Email
	s.Notes = r.Notes
	return s
}

// UpdateSupplierRequest is the request body for updating a supplier.
type UpdateSupplierRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	ContactName *string `json:"contactName"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Notes       *string `json:"notes"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	s.Code = r.Code
	s.Name = r.Name
	s.ContactName = r.ContactName
	s.Phone = r.Phone
	s.Email = r.Email
	s.Notes = r.Notes
	s.Version = r.Version
}

// --- Item DTOs ---

// CreateItemRequest is the request body for creating an inventory item.
// The code is allocated server-side from the category prefix.
type CreateItemRequest struct {
	Name         string    `json:"name" binding:"required"`
	Category     string    `json:"category" binding:"required"`
	Unit         item.Unit `json:"unit" binding:"required"`
	MinimumStock float64   `json:"minimumStock" binding:"omitempty,min=0"`
	Description  *string   `json:"description"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateItemRequest) ToEntity() *item.Item {
	it := item.NewItem(r.Name, r.Category, r.Unit)
	it.MinimumStock = types.NewQuantityFromFloat64(r.MinimumStock)
	it.Description = r.Description
	return it
}

// UpdateItemRequest is the request body for updating an item.
// Stock is absent on purpose: the snapshot belongs to the ledger.
type UpdateItemRequest struct {
	Name         string    `json:"name" binding:"required"`
	Category     string    `json:"category" binding:"required"`
	Unit         item.Unit `json:"unit" binding:"required"`
	MinimumStock float64   `json:"minimumStock" binding:"omitempty,min=0"`
	Description  *string   `json:"description"`
	Version      int       `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateItemRequest) ApplyTo(it *item.Item) {
	it.Name = r.Name
	it.Category = r.Category
	it.Unit = r.Unit
	it.MinimumStock = types.NewQuantityFromFloat64(r.MinimumStock)
	it.Description = r.Description
	it.Version = r.Version
}

// --- Addition DTOs ---

// CreateAdditionRequest is the request body for creating an addition.
type CreateAdditionRequest struct {
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Price       float64 `json:"price" binding:"omitempty,min=0"`
	Description *string `json:"description"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateAdditionRequest) ToEntity() *item.Addition {
	a := item.NewAddition(r.Name, r.Category, types.NewMoney(r.Price))
	a.Description = r.Description
	return a
}

// UpdateAdditionRequest is the request body for updating an addition.
type UpdateAdditionRequest struct {
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Price       float64 `json:"price" binding:"omitempty,min=0"`
	Description *string `json:"description"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateAdditionRequest) ApplyTo(a *item.Addition) {
	a.Name = r.Name
	a.Category = r.Category
	a.Price = types.NewMoney(r.Price)
	a.Description = r.Description
	a.Version = r.Version
}
