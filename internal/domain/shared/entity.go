package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// Touch moves UpdatedAt to now
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Lifecycle carries the administrator-controlled visibility flags shared by
// categories, brands and products. Records are never hard-deleted.
type Lifecycle struct {
	IsActive  bool
	IsDeleted bool
	DeletedAt *time.Time
}

// NewLifecycle returns an active, not deleted lifecycle
func NewLifecycle() Lifecycle {
	return Lifecycle{IsActive: true}
}

// Available reports whether the record is active and not soft-deleted
func (l Lifecycle) Available() bool {
	return l.IsActive && !l.IsDeleted
}

// MarkDeleted soft-deletes the record
func (l *Lifecycle) MarkDeleted(at time.Time) {
	l.IsDeleted = true
	l.DeletedAt = &at
}

// Restore clears the soft-delete flag
func (l *Lifecycle) Restore() {
	l.IsDeleted = false
	l.DeletedAt = nil
}
