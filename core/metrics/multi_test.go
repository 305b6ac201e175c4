package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	count int
	err   error
}

func (r *recordSink) RecordMutation(MutationEvent) error {
	r.count++
	return r.err
}

func (r *recordSink) RecordRefresh(RefreshEvent) error {
	r.count++
	return nil
}

// mutationOnly records mutations but nothing else.
type mutationOnly struct{ count int }

func (m *mutationOnly) RecordMutation(MutationEvent) error {
	m.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &mutationOnly{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordMutation(MutationEvent{Operation: "add_trip"}); err != nil {
		t.Fatalf("record mutation: %v", err)
	}
	if err := m.RecordRefresh(RefreshEvent{Full: true}); err != nil {
		t.Fatalf("record refresh: %v", err)
	}
	if err := m.RecordBoardSize(BoardSize{}); err != nil {
		t.Fatalf("record size: %v", err)
	}
	if s1.count != 2 || s2.count != 1 {
		t.Fatalf("events not forwarded: %d %d", s1.count, s2.count)
	}
}

func TestMultiSinkKeepsGoingOnError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &recordSink{}
	err := NewMultiSink(s1, s2).RecordMutation(MutationEvent{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error got %v", err)
	}
	if s2.count != 1 {
		t.Fatalf("second sink skipped")
	}
}
