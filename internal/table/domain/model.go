package domain

import "time"

type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
	StatusCleaning  Status = "cleaning"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusCleaning:
		return true
	default:
		return false
	}
}

const DefaultCapacity = 2

type Table struct {
	ID             int64     `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	Name           string    `json:"name" gorm:"type:varchar(64);not null;uniqueIndex:ux_dining_tables_name"`
	Capacity       int       `json:"capacity" gorm:"not null;default:2"`
	Status         Status    `json:"status" gorm:"type:varchar(16);not null;default:'available'"`
	CurrentOrderID *int64    `json:"current_order_id,omitempty,string"`
	CreatedAt      time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"not null"`
}

func (Table) TableName() string { return "dining_tables" }
