package dispatch

import (
	"sync"

	"github.com/ajxudir/appupdate/pkg/verbose"
)

// Observer receives batch events.
type Observer interface {
	// OnRecordStarted is called when a record is handed to the executor.
	OnRecordStarted(name string)

	// OnProgress is called after each record and once at the end of the batch.
	OnProgress(percent int, message string)

	// OnError is called once when the batch driver fails.
	OnError(message string)

	// OnCompleted is called exactly once per Run.
	OnCompleted(summary Summary)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	RecordStarted func(name string)
	Progress      func(percent int, message string)
	Error         func(message string)
	Completed     func(summary Summary)
}

var (
	_ Observer = ObserverFuncs{}
	_ Observer = (*serialObserver)(nil)
)

// OnRecordStarted implements Observer.
func (f ObserverFuncs) OnRecordStarted(name string) {
	if f.RecordStarted != nil {
		f.RecordStarted(name)
	}
}

// OnProgress implements Observer.
func (f ObserverFuncs) OnProgress(percent int, message string) {
	if f.Progress != nil {
		f.Progress(percent, message)
	}
}

// OnError implements Observer.
func (f ObserverFuncs) OnError(message string) {
	if f.Error != nil {
		f.Error(message)
	}
}

// OnCompleted implements Observer.
func (f ObserverFuncs) OnCompleted(summary Summary) {
	if f.Completed != nil {
		f.Completed(summary)
	}
}

// serialObserver forwards to an Observer one call at a time.
type serialObserver struct {
	mu sync.Mutex
	o  Observer
}

func serialize(o Observer) *serialObserver {
	if o == nil {
		o = ObserverFuncs{}
	}
	return &serialObserver{o: o}
}

func (s *serialObserver) OnRecordStarted(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.o.OnRecordStarted(name)
}

func (s *serialObserver) OnProgress(percent int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.o.OnProgress(percent, message)
}

func (s *serialObserver) OnError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.o.OnError(message)
}

func (s *serialObserver) OnCompleted(summary Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.o.OnCompleted(summary)
}

// safely runs a terminal observer call. A panicking observer is logged
// and ignored so completion can never escape Run.
func safely(event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			verbose.Errorf("observer panicked in %s: %v", event, r)
		}
	}()
	fn()
}
