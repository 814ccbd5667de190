package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ajxudir/appupdate/pkg/constants"
	"github.com/ajxudir/appupdate/pkg/packages"
	"github.com/ajxudir/appupdate/pkg/progress"
	"github.com/ajxudir/appupdate/pkg/update"
	"github.com/ajxudir/appupdate/pkg/verbose"
)

// Executor updates a single record. *update.Executor implements it.
type Executor interface {
	Update(ctx context.Context, rec packages.Record, stop update.StopSignal) update.Result
}

// budgeter is implemented by executors that know their per-record worst case.
type budgeter interface {
	Budget() time.Duration
}

var _ Executor = (*update.Executor)(nil)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithConcurrency sets how many records may be updated at once. Values
// below 1 are raised to 1.
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n < 1 {
			n = 1
		}
		d.concurrency = n
	}
}

// WithObserver sets the event sink.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

// Dispatcher drives batches through an Executor. One Dispatcher runs at
// most one batch at a time.
type Dispatcher struct {
	exec        Executor
	concurrency int
	observer    Observer
	obs         *serialObserver

	mu      sync.Mutex
	state   string
	running bool
	token   *Token
}

// New creates an idle Dispatcher.
//
// Parameters:
//   - exec: Executor invoked once per record
//   - opts: WithConcurrency (default 1) and WithObserver
//
// Returns:
//   - *Dispatcher: Dispatcher in the idle state
func New(exec Executor, opts ...Option) *Dispatcher {
	d := &Dispatcher{exec: exec, concurrency: 1, state: constants.BatchIdle}
	for _, opt := range opts {
		opt(d)
	}
	d.obs = serialize(d.observer)
	return d
}

// Concurrency returns the configured concurrency limit.
func (d *Dispatcher) Concurrency() int {
	return d.concurrency
}

// State returns the current or last batch state.
func (d *Dispatcher) State() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// RequestStop forwards a stop request to the running batch.
//
// Returns:
//   - bool: false when no batch is running or a stop was already requested
func (d *Dispatcher) RequestStop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running || d.token == nil {
		return false
	}
	return d.token.RequestStop()
}

// WorstCaseDuration bounds the wall time of a batch: records run in
// ceil(total/concurrency) rounds of at most perRecord each.
//
// Parameters:
//   - total: Number of records
//   - concurrency: Concurrency limit; values below 1 count as 1
//   - perRecord: Worst case for one record, e.g. Executor.Budget()
//
// Returns:
//   - time.Duration: Upper bound, zero for an empty batch
func WorstCaseDuration(total, concurrency int, perRecord time.Duration) time.Duration {
	if total <= 0 {
		return 0
	}
	if concurrency < 1 {
		concurrency = 1
	}
	rounds := (total + concurrency - 1) / concurrency
	return time.Duration(rounds) * perRecord
}

// Run processes batch and blocks until it ends. It never panics and has
// no error return; the outcome is in the Summary and the observer events.
//
// It performs the following operations:
//   - Rejects a second concurrent Run as a system error
//   - Drops malformed records (no name) from the batch
//   - Starts records in order, at most concurrency at a time, until the
//     batch is exhausted or a stop is requested
//   - Emits progress after every record and a final event for the outcome
//   - Calls OnCompleted exactly once
//
// Parameters:
//   - ctx: Cancelling ctx stops the batch and kills running processes
//   - batch: Records to update, already filtered for exclusions
//   - token: Stop token; nil creates a private one reachable via RequestStop
//
// Returns:
//   - Summary: Final state and per-record results
func (d *Dispatcher) Run(ctx context.Context, batch []packages.Record, token *Token) Summary {
	if token == nil {
		token = NewToken()
	}
	start := time.Now()

	if !d.begin(token) {
		// Not serialized with the running batch: the caller may be inside
		// one of its callbacks.
		obs := serialize(d.observer)
		msg := "dispatcher is already running a batch"
		verbose.Errorf("%s", msg)
		summary := Summary{Status: constants.BatchSystemError, Message: msg}
		safely("OnProgress", func() { obs.OnProgress(progress.SystemErrorPercent, progress.SystemErrorLine(msg)) })
		safely("OnError", func() { obs.OnError(msg) })
		safely("OnCompleted", func() { obs.OnCompleted(summary) })
		return summary
	}

	obs := d.obs
	summary := d.drive(ctx, batch, token, obs)
	summary.Duration = time.Since(start)
	d.end(summary.Status)
	verbose.Infof("Batch %s: %d of %d processed (%d updated, %d no update, %d failed) in %s",
		summary.Status, summary.Completed, summary.Total, summary.Updated, summary.NoUpdate, summary.Failed,
		summary.Duration.Round(time.Millisecond))

	safely("OnCompleted", func() { obs.OnCompleted(summary) })
	return summary
}

func (d *Dispatcher) begin(token *Token) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return false
	}
	d.running = true
	d.token = token
	d.state = constants.BatchRunning
	return true
}

func (d *Dispatcher) end(status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
	d.token = nil
	d.state = status
}

// drive runs the batch and emits the final progress event. A panic in the
// driver or a fault reported by a worker turns into a system error after
// the records already running have finished. A cancelled ctx makes the
// batch cancelled even when every record was processed.
func (d *Dispatcher) drive(ctx context.Context, batch []packages.Record, token *Token, obs *serialObserver) (summary Summary) {
	accepted, skipped := accept(batch)
	st := &batchState{total: len(accepted), token: token}
	var wg sync.WaitGroup

	defer func() {
		fault := recover()
		if fault != nil {
			token.RequestStop()
		}
		wg.Wait()
		if fault == nil {
			fault = st.faultValue()
		}

		summary = st.summary()
		summary.Skipped = skipped
		switch {
		case fault != nil:
			msg := fmt.Sprint(fault)
			verbose.Errorf("system error during update batch: %s", msg)
			summary.Status = constants.BatchSystemError
			summary.Message = msg
			safely("OnProgress", func() { obs.OnProgress(progress.SystemErrorPercent, progress.SystemErrorLine(msg)) })
			safely("OnError", func() { obs.OnError(msg) })
		case summary.Completed == summary.Total && ctx.Err() == nil:
			summary.Status = constants.BatchCompleted
			safely("OnProgress", func() { obs.OnProgress(100, progress.MsgCompleted) })
		default:
			summary.Status = constants.BatchCancelled
			safely("OnProgress", func() {
				obs.OnProgress(progress.Percent(summary.Completed, summary.Total), progress.CancelledLine(summary.Completed, summary.Total))
			})
		}
	}()

	if b, ok := d.exec.(budgeter); ok {
		verbose.Infof("Updating %d packages, %d at a time (worst case %s)",
			st.total, d.concurrency, WorstCaseDuration(st.total, d.concurrency, b.Budget()))
	}

	sem := make(chan struct{}, d.concurrency)
	for _, rec := range accepted {
		if halted(ctx, token) {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if halted(ctx, token) {
			break
		}

		obs.OnRecordStarted(rec.Name)
		wg.Add(1)
		go func(rec packages.Record) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					st.setFault(r)
					token.RequestStop()
				}
			}()
			res := d.update(ctx, rec, token)
			st.record(res, obs)
		}(rec)
	}
	return summary
}

// update calls the executor, turning a panic into a failed result.
func (d *Dispatcher) update(ctx context.Context, rec packages.Record, token *Token) (res update.Result) {
	defer func() {
		if r := recover(); r != nil {
			verbose.Errorf("update of %s panicked: %v", rec.Name, r)
			res = update.Result{Name: rec.Name, Outcome: constants.OutcomeFailed, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	res = d.exec.Update(ctx, rec, token)
	if res.Name == "" {
		res.Name = rec.Name
	}
	return res
}

// accept drops records that cannot be passed to an update invocation.
func accept(batch []packages.Record) ([]packages.Record, int) {
	accepted := make([]packages.Record, 0, len(batch))
	skipped := 0
	for _, rec := range batch {
		if !rec.Actionable() {
			verbose.Warnf("skipping malformed record (id %q): missing name", rec.ID)
			skipped++
			continue
		}
		accepted = append(accepted, rec)
	}
	return accepted, skipped
}

func halted(ctx context.Context, token *Token) bool {
	return token.StopRequested() || ctx.Err() != nil
}

// batchState is the mutable state of one Run.
type batchState struct {
	total int
	token *Token

	mu        sync.Mutex
	completed int
	updated   int
	noUpdate  int
	failed    int
	results   []update.Result
	fault     any
}

// record counts a finished record and emits its progress event while
// holding the lock, so emitted percentages never go down.
func (st *batchState) record(res update.Result, obs Observer) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.completed++
	st.results = append(st.results, res)
	switch res.Outcome {
	case constants.OutcomeUpdated:
		st.updated++
	case constants.OutcomeNoUpdate:
		st.noUpdate++
	default:
		st.failed++
	}
	obs.OnProgress(progress.Percent(st.completed, st.total), progress.StatusLine(res.Outcome, res.Name))
}

func (st *batchState) setFault(v any) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.fault == nil {
		st.fault = v
	}
}

func (st *batchState) faultValue() any {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.fault
}

func (st *batchState) summary() Summary {
	st.mu.Lock()
	defer st.mu.Unlock()
	return Summary{
		Total:     st.total,
		Completed: st.completed,
		Updated:   st.updated,
		NoUpdate:  st.noUpdate,
		Failed:    st.failed,
		Results:   append([]update.Result(nil), st.results...),
	}
}
