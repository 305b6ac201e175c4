package metrics

import "errors"

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordMutation forwards the event to every sink. All sinks are tried; the
// errors are joined.
func (m *MultiSink) RecordMutation(ev MutationEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordMutation(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordRefresh forwards to the sinks able to record refreshes.
func (m *MultiSink) RecordRefresh(ev RefreshEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(RefreshRecorder); ok {
			if err := r.RecordRefresh(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordBoardSize forwards to the sinks able to record the board size.
func (m *MultiSink) RecordBoardSize(s BoardSize) error {
	var errs []error
	for _, sink := range m.Sinks {
		if r, ok := sink.(BoardSizeRecorder); ok {
			if err := r.RecordBoardSize(s); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
