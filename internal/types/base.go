package types

import (
	"context"
	"time"
)

// Status is the lifecycle status of a stored record, independent of any
// domain specific state machine.
type Status string

const (
	StatusPublished Status = "published"
	StatusDeleted   Status = "deleted"
	StatusArchived  Status = "archived"
)

// BaseModel holds the common audit columns shared by all persisted entities.
type BaseModel struct {
	TenantID  string    `json:"tenant_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by"`
}

// GetDefaultBaseModel returns a BaseModel initialized from the context
// with the current UTC time.
func GetDefaultBaseModel(ctx context.Context) BaseModel {
	now := time.Now().UTC()
	return BaseModel{
		TenantID:  GetTenantID(ctx),
		Status:    StatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: GetUserID(ctx),
		UpdatedBy: GetUserID(ctx),
	}
}

// Metadata is a generic string key-value bag attached to domain entities.
type Metadata map[string]string
