package errors

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	t.Parallel()

	sentinel := New(CodeNotFound, "record not found")
	wrapped := fmt.Errorf("load proposal: %w", New(CodeNotFound, "proposal missing"))

	if !errors.Is(wrapped, sentinel) {
		t.Fatal("expected wrapped error to match sentinel by code")
	}

	other := New(CodeConflict, "record conflict")
	if errors.Is(wrapped, other) {
		t.Fatal("expected different codes not to match")
	}
}

func TestUnwrapReturnsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := Wrap(CodeUnknown, "append event", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable via errors.Is")
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code Code
		want codes.Code
	}{
		{CodeNotFound, codes.NotFound},
		{CodeTraitAlreadyActive, codes.FailedPrecondition},
		{CodeEmergenceConfidenceInvalid, codes.InvalidArgument},
		{CodeEvolutionTypeInvalid, codes.InvalidArgument},
		{CodeUnknown, codes.Internal},
	}
	for _, tc := range cases {
		if got := tc.code.GRPCCode(); got != tc.want {
			t.Fatalf("code %s mapped to %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestToGRPCStatusCarriesCode(t *testing.T) {
	t.Parallel()

	err := WithMetadata(CodeTraitAlreadyActive, "trait already active", map[string]string{"trait": "merciful"})
	st := err.ToGRPCStatus("en-US", "Trait is already active.")
	if st == nil {
		t.Fatal("expected status error")
	}
}
