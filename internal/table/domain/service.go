package domain

import (
	"context"
	"errors"
)

type Service interface {
	Add(ctx context.Context, req CreateRequest) (*Table, error)
	Delete(ctx context.Context, id int64) error
	DeleteByName(ctx context.Context, name string) (bool, error)
	SetStatus(ctx context.Context, req SetStatusRequest) (*Table, error)
	List(ctx context.Context) ([]Table, error)
	Get(ctx context.Context, id int64) (*Table, error)
	FindByName(ctx context.Context, name string) (*Table, error)
	Occupy(ctx context.Context, id, orderID int64) (*Table, error)
	Release(ctx context.Context, id int64, to Status) (*Table, error)
}

type CreateRequest struct {
	Name     string `json:"name"`
	Capacity *int   `json:"capacity"`
}

type SetStatusRequest struct {
	ID             int64  `json:"-"`
	Status         Status `json:"status"`
	CurrentOrderID *int64 `json:"current_order_id,string"`
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidCapacity  = errors.New("invalid_capacity")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidOccupancy = errors.New("invalid_occupancy")
	ErrDuplicateName    = errors.New("duplicate_name")
	ErrTableOccupied    = errors.New("table_occupied")
	ErrTableUnavailable = errors.New("table_unavailable")
	ErrNotFound         = errors.New("not_found")
)
