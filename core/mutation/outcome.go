package mutation

import (
	"errors"

	"github.com/bsb-logistics/ganttboard/core/metrics"
	"github.com/bsb-logistics/ganttboard/core/remote"
	"github.com/bsb-logistics/ganttboard/core/schedule"
)

// Outcome classifies the result of an operation.
type Outcome string

const (
	OutcomeOK         Outcome = metrics.OutcomeOK
	OutcomeStructural Outcome = metrics.OutcomeStructural
	OutcomeRejected   Outcome = metrics.OutcomeRejected
	OutcomeTransport  Outcome = metrics.OutcomeTransport
)

// Classify maps err onto the error taxonomy. Errors of unknown origin are
// treated as transport failures since the call did not complete.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, schedule.ErrStructural):
		return OutcomeStructural
	case errors.Is(err, remote.ErrRejected):
		return OutcomeRejected
	default:
		return OutcomeTransport
	}
}
