// Package relationship models directed per-entity-pair relationship state.
package relationship

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/tablemind/internal/platform/errors"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
)

// Dimension names one scalar axis of a relationship.
type Dimension string

const (
	DimensionTrust      Dimension = "trust"
	DimensionRespect    Dimension = "respect"
	DimensionAffection  Dimension = "affection"
	DimensionFear       Dimension = "fear"
	DimensionResentment Dimension = "resentment"
	DimensionDebt       Dimension = "debt"
)

// Dimensions lists every relationship axis in a stable order.
func Dimensions() []Dimension {
	return []Dimension{
		DimensionTrust,
		DimensionRespect,
		DimensionAffection,
		DimensionFear,
		DimensionResentment,
		DimensionDebt,
	}
}

// IsValid reports whether the dimension is a known axis.
func (d Dimension) IsValid() bool {
	switch d {
	case DimensionTrust, DimensionRespect, DimensionAffection,
		DimensionFear, DimensionResentment, DimensionDebt:
		return true
	}
	return false
}

// Key identifies one directed relationship row.
type Key struct {
	GameID string
	From   event.Ref
	To     event.Ref
}

// Validate checks that the key names a game and both endpoints.
func (k Key) Validate() error {
	if strings.TrimSpace(k.GameID) == "" || k.From.IsZero() || k.To.IsZero() {
		return apperrors.New(apperrors.CodeRelationshipKeyEmpty, "relationship key requires game id and both entities")
	}
	return nil
}

// Vector holds the six relationship scalars. Every value is clamped to [0,1].
type Vector struct {
	Trust      float64
	Respect    float64
	Affection  float64
	Fear       float64
	Resentment float64
	Debt       float64
}

// Value returns the scalar for one dimension.
func (v Vector) Value(d Dimension) float64 {
	switch d {
	case DimensionTrust:
		return v.Trust
	case DimensionRespect:
		return v.Respect
	case DimensionAffection:
		return v.Affection
	case DimensionFear:
		return v.Fear
	case DimensionResentment:
		return v.Resentment
	case DimensionDebt:
		return v.Debt
	}
	return 0
}

// WithValue returns a copy of the vector with one dimension set, clamped to [0,1].
func (v Vector) WithValue(d Dimension, value float64) Vector {
	value = Clamp(value)
	switch d {
	case DimensionTrust:
		v.Trust = value
	case DimensionRespect:
		v.Respect = value
	case DimensionAffection:
		v.Affection = value
	case DimensionFear:
		v.Fear = value
	case DimensionResentment:
		v.Resentment = value
	case DimensionDebt:
		v.Debt = value
	}
	return v
}

// Clamp bounds a dimension value to [0,1].
func Clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

// Relationship is one directed relationship row with derived label on read.
type Relationship struct {
	Key       Key
	Vector    Vector
	UpdatedAt time.Time
}

// AggregateLabel derives the human-readable descriptor for this relationship.
func (r Relationship) AggregateLabel() Label {
	return DeriveLabel(r.Vector)
}
