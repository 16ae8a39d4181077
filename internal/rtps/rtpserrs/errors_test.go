package rtpserrs

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsAsTypedMatch(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Timeout{Operation: "wait_for_historical_data"})
	var to Timeout
	if !errors.As(err, &to) {
		t.Fatalf("errors.As failed to unwrap Timeout")
	}
	if to.Operation != "wait_for_historical_data" {
		t.Fatalf("Operation = %q", to.Operation)
	}
}

func TestNoDataIsDistinctFromBadParameter(t *testing.T) {
	var nd NoData
	var bp BadParameter
	if errors.As(error(nd), &bp) {
		t.Fatalf("NoData should not unwrap as BadParameter")
	}
}
