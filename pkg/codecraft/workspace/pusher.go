package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/codecrafthq/codecraft/pkg/codecraft/logging"
	"github.com/codecrafthq/codecraft/pkg/codecraft/remote"
	"github.com/codecrafthq/codecraft/pkg/codecraft/tree"
)

// DefaultDebounce is the delay between the last mutation in a burst and
// the remote push that flushes it.
const DefaultDebounce = time.Second

// pusher owns the debounced remote push for one project. Each Notify
// re-arms the timer with the latest snapshot, so a burst of mutations
// collapses into one push of the final tree. A stopped pusher schedules
// nothing further but lets an in-flight push finish, which keeps a
// project switch from losing the previous project's pending changes.
type pusher struct {
	store       remote.Store
	projectID   string
	projectName string
	debounce    time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	snapshot *tree.Node
	pending  bool
	running  bool
	stopped  bool
}

func newPusher(store remote.Store, projectID, projectName string, debounce time.Duration) *pusher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &pusher{
		store:       store,
		projectID:   projectID,
		projectName: projectName,
		debounce:    debounce,
	}
}

// notify records the latest snapshot and (re)arms the timer.
func (p *pusher) notify(snapshot *tree.Node) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.pending = true
	p.snapshot = snapshot
	if p.timer == nil {
		p.timer = time.AfterFunc(p.debounce, p.onTimer)
		p.mu.Unlock()
		return
	}
	p.timer.Reset(p.debounce)
	p.mu.Unlock()
}

func (p *pusher) onTimer() {
	p.mu.Lock()
	if p.running {
		// Another push is in-flight; come back for the pending snapshot.
		if p.timer != nil {
			p.timer.Reset(p.debounce)
		}
		p.mu.Unlock()
		return
	}
	if !p.pending {
		p.mu.Unlock()
		return
	}
	p.pending = false
	p.running = true
	snapshot := p.snapshot
	p.mu.Unlock()

	p.push(context.Background(), snapshot)

	p.mu.Lock()
	p.running = false
	if p.pending && p.timer != nil && !p.stopped {
		p.timer.Reset(p.debounce)
	}
	p.mu.Unlock()
}

// flush pushes the latest snapshot immediately, bypassing the timer.
func (p *pusher) flush(ctx context.Context) {
	p.mu.Lock()
	if !p.pending && !p.running {
		p.mu.Unlock()
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.pending = false
	p.running = true
	snapshot := p.snapshot
	p.mu.Unlock()

	if snapshot != nil {
		p.push(ctx, snapshot)
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

// stop prevents any further scheduling. An already-armed push still
// fires and completes in the background; only new notifications are
// refused.
func (p *pusher) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
}

// busy reports whether a push is pending or in-flight.
func (p *pusher) busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending || p.running
}

// push sends every record of the snapshot to the remote store. The
// project is created first if the store does not know it yet. Upserts
// fan out concurrently and every outcome is awaited; per-file failures
// are logged and swallowed, so a partial push self-heals on the next
// flush rather than aborting the batch.
func (p *pusher) push(ctx context.Context, snapshot *tree.Node) {
	logger := logging.Get("pusher")

	project, err := p.store.GetProject(ctx, p.projectID)
	if err != nil {
		logger.Warn("checking remote project", "project", p.projectID, "error", err)
	} else if project == nil {
		if _, err := p.store.CreateProject(ctx, p.projectID, p.projectName); err != nil {
			logger.Warn("creating remote project", "project", p.projectID, "error", err)
		}
	}

	records := tree.FlatRecords(snapshot)
	var wg sync.WaitGroup
	for _, record := range records {
		wg.Add(1)
		go func(record tree.FlatRecord) {
			defer wg.Done()
			if err := p.store.UpsertFile(ctx, p.projectID, record); err != nil {
				logger.Warn("pushing file", "project", p.projectID, "file", record.FileID, "error", err)
			}
		}(record)
	}
	wg.Wait()

	logger.Debug("push settled", "project", p.projectID, "files", len(records))
}
