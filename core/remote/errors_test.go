package remote

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorTaxonomy(t *testing.T) {
	rej := fmt.Errorf("create trip: %w", Reject(CodeTripNotMovable, "full load"))
	if !errors.Is(rej, ErrRejected) || errors.Is(rej, ErrTransport) {
		t.Fatalf("rejection misclassified: %v", rej)
	}
	if code, ok := RejectionCode(rej); !ok || code != CodeTripNotMovable {
		t.Fatalf("code %d %v", code, ok)
	}

	tr := &TransportError{Op: "list vehicles", Err: io.ErrUnexpectedEOF}
	if !errors.Is(tr, ErrTransport) || !errors.Is(tr, io.ErrUnexpectedEOF) {
		t.Fatalf("transport misclassified: %v", tr)
	}
	if _, ok := RejectionCode(tr); ok {
		t.Fatalf("transport error has no code")
	}
}
