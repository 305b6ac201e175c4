package monitoring

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type recordMonitor struct {
	errs []error
	tags []map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}
func (r *recordMonitor) Flush(time.Duration) {}

func TestCaptureException(t *testing.T) {
	rec := &recordMonitor{}
	prev := Init(rec)
	defer Init(prev)

	CaptureException(nil, nil)
	CaptureException(errors.New("boom"), map[string]string{"op": "add_trip"})
	if len(rec.errs) != 1 || rec.tags[0]["op"] != "add_trip" {
		t.Fatalf("unexpected captures %#v", rec.errs)
	}
	if Init(nil) != rec {
		t.Fatalf("nil monitor must be ignored")
	}
}

func TestRecoverReportsAndRepanics(t *testing.T) {
	rec := &recordMonitor{}
	prev := Init(rec)
	defer Init(prev)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("panic swallowed")
		}
		if len(rec.errs) != 1 || !strings.Contains(rec.errs[0].Error(), "kaput") {
			t.Fatalf("panic not reported: %v", rec.errs)
		}
	}()
	func() {
		defer Recover()
		panic("kaput")
	}()
}
