package form

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/formflow/field"
)

// DefaultMaxIterations is the default cap on apply/react cycles per run.
// This prevents runaway reactions from iterating forever.
const DefaultMaxIterations = 100

// ReactionFunc maps a commit to follow-up modifications, driving
// convergence. It is invoked synchronously by the run loop after every
// non-empty commit. Returning nil or an empty slice stops the run.
//
// The context carries a run marker: passing it (or any context derived
// from it) back into Commit is detected as a reentrant call and rejected.
type ReactionFunc func(ctx context.Context, c Commit) []Modification

// Form is the convergence engine: an ordered field store, a bounded
// history log, and a single-writer run loop that serializes commits.
//
// All store mutations happen on the run loop goroutine. External callers
// use Commit() to submit modification batches; concurrent calls are
// queued and served strictly FIFO.
type Form struct {
	store   *fieldStore
	history *history
	queue   *requestQueue
	clock   *Clock
	tokens  TokenGenerator
	sink    HistorySink

	maxIterations int

	reactionMu sync.RWMutex
	reaction   ReactionFunc

	done chan struct{} // closed when the run loop exits
}

// Option configures a Form.
type Option func(*Form)

// WithMaxIterations sets the cap on apply/react cycles per run.
// Values below 1 are ignored. Default: 100.
func WithMaxIterations(n int) Option {
	return func(f *Form) {
		if n > 0 {
			f.maxIterations = n
		}
	}
}

// WithMaxHistory sets the bound on the history log.
// Negative values are ignored. Default: 50.
func WithMaxHistory(n int) Option {
	return func(f *Form) {
		if n >= 0 {
			f.history = newHistory(n)
		}
	}
}

// WithReaction sets the reaction hook at construction time.
func WithReaction(fn ReactionFunc) Option {
	return func(f *Form) {
		f.reaction = fn
	}
}

// WithTokens overrides the run token generator (for testing).
func WithTokens(g TokenGenerator) Option {
	return func(f *Form) {
		f.tokens = g
	}
}

// WithHistorySink attaches a sink that receives every history entry.
func WithHistorySink(s HistorySink) Option {
	return func(f *Form) {
		f.sink = s
	}
}

// New creates a Form and starts its run loop.
// Call Close to stop the loop and release the goroutine.
func New(opts ...Option) *Form {
	f := &Form{
		store:         newFieldStore(),
		history:       newHistory(DefaultMaxHistory),
		queue:         newRequestQueue(),
		clock:         NewClock(),
		tokens:        UUIDv7Generator{},
		maxIterations: DefaultMaxIterations,
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}

	go f.loop()
	return f
}

// Commit enqueues one batch of modifications and blocks until the
// resulting merge is delivered. Concurrent callers are served in the
// order their requests were enqueued.
//
// An empty author defaults to AuthorUser.
//
// The returned error is infrastructure-only: ErrClosed after Close, or
// the context's error if ctx is done while the request is queued (the run
// itself is not cancelled). All validation and iteration failures travel
// on the merge's error lists.
//
// A reentrant call - one made with a context handed to a reaction during
// a running convergence - is rejected immediately with a degenerate merge
// carrying only a commitInProgress error; no state is touched.
func (f *Form) Commit(ctx context.Context, author Author, mods ...Modification) (Merge, error) {
	if author == "" {
		author = AuthorUser
	}

	if token, ok := runToken(ctx); ok {
		slog.Warn("reentrant commit rejected", "author", author, "run", token)
		return Merge{
			Author: author,
			Errors: []*Error{newCommitInProgress()},
			Fields: f.store.snapshot(),
		}, nil
	}

	req := request{ctx: ctx, author: author, mods: mods, reply: make(chan Merge, 1)}
	if !f.queue.Enqueue(req) {
		return Merge{}, ErrClosed
	}

	select {
	case m := <-req.reply:
		return m, nil
	case <-ctx.Done():
		return Merge{}, ctx.Err()
	}
}

// SetReaction replaces the reaction hook. A nil hook restores the default
// no-op reaction, so the engine never iterates past the first batch.
func (f *Form) SetReaction(fn ReactionFunc) {
	f.reactionMu.Lock()
	f.reaction = fn
	f.reactionMu.Unlock()
}

// Fields returns a read-only snapshot of the current fields.
func (f *Form) Fields() field.Fields {
	return f.store.snapshot()
}

// History returns a copy of the bounded history log, newest-appended-last.
func (f *Form) History() []Entry {
	return f.history.snapshot()
}

// HistoryLen returns the current history length.
func (f *Form) HistoryLen() int {
	return f.history.len()
}

// QueueLen returns the number of commit requests waiting to run.
// Useful for monitoring and testing.
func (f *Form) QueueLen() int {
	return f.queue.Len()
}

// Close stops accepting commits, drains requests already queued, and
// waits for the run loop to exit. Safe to call more than once.
func (f *Form) Close() {
	f.queue.Close()
	<-f.done
}

// loop is the single-writer run loop. All store mutations, reaction
// invocations and history appends happen on this goroutine.
func (f *Form) loop() {
	defer close(f.done)

	for {
		req, ok := f.queue.TryDequeue()
		if ok {
			req.reply <- f.run(req)
			continue
		}

		// No request ready - wait for a signal. The signal channel closes
		// when the queue closes, so this never blocks during shutdown.
		<-f.queue.Wait()
		if f.queue.Closed() && f.queue.Len() == 0 {
			return
		}
	}
}

// run executes one full convergence: apply/react to a fixed point or the
// iteration cap, then squash.
func (f *Form) run(req request) Merge {
	token := f.tokens.Generate()
	runCtx := withRunToken(context.Background(), token)

	original := f.store.snapshot()
	pending := dedupe(req.mods)
	author := req.author

	slog.Debug("convergence run starting",
		"run", token,
		"author", author,
		"modifications", len(pending),
	)

	var commits []Commit
	for iteration := 0; len(pending) > 0 && iteration < f.maxIterations; iteration++ {
		out := f.store.apply(pending)

		capped := iteration == f.maxIterations-1
		if capped {
			out.errs = append(out.errs, newMaxIterationsReached(f.maxIterations))
			slog.Warn("iteration cap reached",
				"run", token,
				"max_iterations", f.maxIterations,
			)
		}

		c := Commit{
			Author:    author,
			RunToken:  token,
			Seq:       f.clock.Next(),
			Iteration: iteration,
			Added:     out.added,
			Updated:   out.updated,
			Removed:   out.removed,
			Errors:    out.errs,
			Fields:    f.store.snapshot(),
		}
		commits = append(commits, c)
		f.record(runCtx, Entry{Kind: EntryCommit, Commit: &c})

		slog.Debug("commit applied",
			"run", token,
			"seq", c.Seq,
			"iteration", iteration,
			"added", len(c.Added),
			"updated", len(c.Updated),
			"removed", len(c.Removed),
			"errors", len(c.Errors),
		)

		if c.Empty() || capped {
			break
		}

		pending = dedupe(f.react(runCtx, c))
		author = AuthorForm
	}

	added, updated, removed := squash(commits, original)
	m := Merge{
		Author:     req.author,
		RunToken:   token,
		Commits:    commits,
		Added:      added,
		Updated:    updated,
		Removed:    removed,
		Errors:     collectErrors(commits),
		Fields:     f.store.snapshot(),
		Iterations: len(commits),
	}
	f.record(runCtx, Entry{Kind: EntryMerge, Merge: &m})

	slog.Info("convergence run finished",
		"run", token,
		"author", m.Author,
		"iterations", m.Iterations,
		"errors", len(m.Errors),
	)

	return m
}

// react invokes the reaction hook, if any, with the run-marked context.
func (f *Form) react(ctx context.Context, c Commit) []Modification {
	f.reactionMu.RLock()
	fn := f.reaction
	f.reactionMu.RUnlock()

	if fn == nil {
		return nil
	}
	return fn(ctx, c)
}

// record appends an entry to history and forwards it to the sink, if any.
// Sink failures are logged and never affect the run.
func (f *Form) record(ctx context.Context, e Entry) {
	f.history.append(e)

	if f.sink == nil {
		return
	}
	var err error
	switch e.Kind {
	case EntryCommit:
		err = f.sink.WriteCommit(ctx, *e.Commit)
	case EntryMerge:
		err = f.sink.WriteMerge(ctx, *e.Merge)
	}
	if err != nil {
		slog.Warn("history sink write failed", "kind", e.Kind, "error", err)
	}
}

// runTokenKey marks contexts handed to reactions during a run.
type runTokenKey struct{}

func withRunToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, runTokenKey{}, token)
}

func runToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(runTokenKey{}).(string)
	return token, ok
}
