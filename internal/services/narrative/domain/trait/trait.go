// Package trait models entity trait lifecycle and the static trait catalog.
package trait

import (
	"time"

	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
)

// Name identifies one trait from the catalog.
type Name string

// Status identifies one trait row lifecycle state.
type Status string

const (
	// StatusActive means the trait currently applies to the entity.
	StatusActive Status = "active"
	// StatusFaded means the trait weakened without being revoked.
	StatusFaded Status = "faded"
	// StatusRemoved means the trait was revoked. Removal is a soft status
	// change; the row stays queryable as history.
	StatusRemoved Status = "removed"
)

// IsValid reports whether the status is a known lifecycle state.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusFaded, StatusRemoved:
		return true
	}
	return false
}

// EntityTrait is one trait row. At most one active row may exist per
// (game, entity, trait); history accumulates as non-active rows.
type EntityTrait struct {
	ID            string
	GameID        string
	Entity        event.Ref
	Trait         Name
	AcquiredTurn  int
	SourceEventID string
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
