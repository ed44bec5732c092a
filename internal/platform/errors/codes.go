// Package errors provides structured error handling for the narrative engine.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Event errors
	CodeEventGameIDEmpty   Code = "EVENT_GAME_ID_EMPTY"
	CodeEventActorEmpty    Code = "EVENT_ACTOR_EMPTY"
	CodeEventTurnInvalid   Code = "EVENT_TURN_INVALID"
	CodeEventFilterInvalid Code = "EVENT_FILTER_INVALID"

	// Relationship errors
	CodeRelationshipKeyEmpty         Code = "RELATIONSHIP_KEY_EMPTY"
	CodeRelationshipDimensionUnknown Code = "RELATIONSHIP_DIMENSION_UNKNOWN"

	// Trait errors
	CodeTraitNameEmpty     Code = "TRAIT_NAME_EMPTY"
	CodeTraitEntityEmpty   Code = "TRAIT_ENTITY_EMPTY"
	CodeTraitAlreadyActive Code = "TRAIT_ALREADY_ACTIVE"

	// Evolution proposal errors
	CodeEvolutionTypeInvalid    Code = "EVOLUTION_TYPE_INVALID"
	CodeEvolutionTraitRequired  Code = "EVOLUTION_TRAIT_REQUIRED"
	CodeEvolutionTargetRequired Code = "EVOLUTION_TARGET_REQUIRED"
	CodeEvolutionValueInvalid   Code = "EVOLUTION_VALUE_INVALID"
	CodeEvolutionStatusInvalid  Code = "EVOLUTION_STATUS_INVALID"
	CodeEvolutionReasonEmpty    Code = "EVOLUTION_REASON_EMPTY"

	// Emergence errors
	CodeEmergenceTypeInvalid       Code = "EMERGENCE_TYPE_INVALID"
	CodeEmergenceConfidenceInvalid Code = "EMERGENCE_CONFIDENCE_OUT_OF_RANGE"
	CodeEmergenceEntityEmpty       Code = "EMERGENCE_ENTITY_EMPTY"
	CodeEmergencePendingExists     Code = "EMERGENCE_PENDING_NOTIFICATION_EXISTS"
	CodeNotificationStatusInvalid  Code = "NOTIFICATION_STATUS_INVALID"

	// Analyzer configuration errors
	CodeConfigWindowInvalid    Code = "CONFIG_WINDOW_INVALID"
	CodeConfigWeightInvalid    Code = "CONFIG_WEIGHT_INVALID"
	CodeConfigThresholdInvalid Code = "CONFIG_THRESHOLD_INVALID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeEventGameIDEmpty,
		CodeEventActorEmpty,
		CodeEventTurnInvalid,
		CodeEventFilterInvalid,
		CodeRelationshipKeyEmpty,
		CodeRelationshipDimensionUnknown,
		CodeTraitNameEmpty,
		CodeTraitEntityEmpty,
		CodeEvolutionTypeInvalid,
		CodeEvolutionTraitRequired,
		CodeEvolutionTargetRequired,
		CodeEvolutionValueInvalid,
		CodeEvolutionStatusInvalid,
		CodeEvolutionReasonEmpty,
		CodeEmergenceTypeInvalid,
		CodeEmergenceConfidenceInvalid,
		CodeEmergenceEntityEmpty,
		CodeNotificationStatusInvalid,
		CodeConfigWindowInvalid,
		CodeConfigWeightInvalid,
		CodeConfigThresholdInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeTraitAlreadyActive,
		CodeEmergencePendingExists,
		CodeConflict:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
