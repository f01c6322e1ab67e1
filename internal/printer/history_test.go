package printer

import (
	"errors"
	"testing"
	"time"
)

func TestHistoryRecord(t *testing.T) {
	h := NewHistory(0)

	ok := h.Record("p1", "test", &Result{JobID: "a", BytesWritten: 42, Duration: time.Millisecond}, nil)
	if ok.Status != JobCompleted || ok.BytesWritten != 42 || ok.ID != "a" {
		t.Errorf("Expected completed job a with 42 bytes, got %+v", ok)
	}

	failed := h.Record("p1", "drawer", nil, &TransportError{Kind: KindWriteError, Op: "write", BytesWritten: 7, Err: ErrWriteFailed})
	if failed.Status != JobFailed {
		t.Errorf("Expected failed status, got %s", failed.Status)
	}
	if failed.BytesWritten != 7 {
		t.Errorf("Expected 7 bytes from the transport error, got %d", failed.BytesWritten)
	}
	if failed.ID == "" {
		t.Error("Expected generated job ID")
	}

	if got := h.GetJob("a"); got == nil || got.Document != "test" {
		t.Errorf("Expected job a, got %+v", got)
	}
	if h.GetJob("missing") != nil {
		t.Error("Expected nil for unknown job")
	}

	h.ClearCompleted()
	jobs := h.GetAllJobs()
	if len(jobs) != 1 || jobs[0].Status != JobFailed {
		t.Errorf("Expected only the failed job to remain, got %d jobs", len(jobs))
	}
}

func TestHistoryLimit(t *testing.T) {
	h := NewHistory(2)
	h.Record("p", "one", &Result{JobID: "1"}, nil)
	h.Record("p", "two", &Result{JobID: "2"}, nil)
	h.Record("p", "three", &Result{JobID: "3"}, errors.New("boom"))

	jobs := h.GetAllJobs()
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != "2" || jobs[1].ID != "3" {
		t.Errorf("Expected jobs 2 and 3, got %s and %s", jobs[0].ID, jobs[1].ID)
	}
}

type fakeDetector struct {
	scans [][]*Printer
	calls int
}

func (f *fakeDetector) DetectPrinters() ([]*Printer, error) {
	if f.calls >= len(f.scans) {
		return nil, errors.New("no more scans")
	}
	s := f.scans[f.calls]
	f.calls++
	return s, nil
}

func TestMonitorCheck(t *testing.T) {
	a := &Printer{ID: "a", Description: "A"}
	b := &Printer{ID: "b", Description: "B"}
	det := &fakeDetector{scans: [][]*Printer{{a}, {a, b}, {b}}}

	var added, removed []string
	m := NewMonitor(det, time.Second, nil)
	m.OnAdded = func(p *Printer) { added = append(added, p.ID) }
	m.OnRemoved = func(p *Printer) { removed = append(removed, p.ID) }

	m.Check()
	m.Check()
	m.Check()
	m.Check() // detection error leaves state alone

	if len(added) != 2 || added[0] != "a" || added[1] != "b" {
		t.Errorf("Expected a then b added, got %v", added)
	}
	if len(removed) != 1 || removed[0] != "a" {
		t.Errorf("Expected a removed, got %v", removed)
	}
}

func TestConnectionPool(t *testing.T) {
	opened := 0
	mem := NewMemoryTransport("mem")
	pool := NewConnectionPool(func(p *Printer) (Transport, error) {
		opened++
		if p.ID == "bad" {
			return nil, &TransportError{Kind: KindNotFound, Op: "open"}
		}
		return mem, nil
	}, NewEngine(EngineConfig{}, nil), nil)

	p := &Printer{ID: "p1", Description: "Test"}
	t1, err := pool.Get(p)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t2, _ := pool.Get(p)
	if t1 != t2 || opened != 1 {
		t.Errorf("Expected one shared connection, opened %d", opened)
	}
	if !pool.IsConnected("p1") {
		t.Error("Expected p1 to be connected")
	}

	if _, err := pool.Get(&Printer{ID: "bad"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := pool.Disconnect("p1"); err != nil {
		t.Errorf("Expected clean close, got %v", err)
	}
	if pool.IsConnected("p1") {
		t.Error("Expected p1 to be disconnected")
	}
	pool.DisconnectAll()
}
