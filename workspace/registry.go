// Package workspace hands each signed-in owner their own canvas: one graph,
// one syncer with its writer goroutine, and one editing session.
package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/andrewpaige1/mindcanvas-api/canvas"
	"github.com/andrewpaige1/mindcanvas-api/completion"
	"github.com/andrewpaige1/mindcanvas-api/editor"
	"github.com/andrewpaige1/mindcanvas-api/store"
	"github.com/andrewpaige1/mindcanvas-api/syncer"
	"go.uber.org/zap"
)

type Workspace struct {
	OwnerID string
	Syncer  *syncer.Syncer
	Session *editor.Session

	lastUsed time.Time
}

// Graph is the owner's local canvas.
func (w *Workspace) Graph() *canvas.Graph {
	return w.Syncer.Graph()
}

type Options struct {
	Syncer         syncer.Options
	RewriteTimeout time.Duration
	// IdleTTL is how long a workspace may go without a Get before EvictIdle
	// drops it. Zero means 30 minutes.
	IdleTTL time.Duration
	Now     func() time.Time
}

// Registry creates workspaces on first use and keeps them until Close.
type Registry struct {
	store     store.Store
	state     editor.StateStore
	completer completion.Completer
	logger    *zap.Logger
	opts      Options

	mu         sync.Mutex
	workspaces map[string]*Workspace
	closed     bool
}

func NewRegistry(s store.Store, state editor.StateStore, completer completion.Completer, logger *zap.Logger, opts Options) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		store:      s,
		state:      state,
		completer:  completer,
		logger:     logger,
		opts:       opts,
		workspaces: make(map[string]*Workspace),
	}
}

// Get returns the owner's workspace, creating it on first access. It returns
// false after Close.
func (r *Registry) Get(ownerID string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false
	}
	if ws, ok := r.workspaces[ownerID]; ok {
		ws.lastUsed = r.opts.Now()
		return ws, true
	}

	logger := r.logger.With(zap.String("owner", ownerID))
	sy := syncer.New(r.store, canvas.NewGraph(), logger, r.opts.Syncer)
	ws := &Workspace{
		OwnerID:  ownerID,
		Syncer:   sy,
		Session:  editor.NewSession(ownerID, r.state, sy.Graph(), sy, r.completer, logger, r.opts.RewriteTimeout),
		lastUsed: r.opts.Now(),
	}
	r.workspaces[ownerID] = ws

	logger.Debug("workspace created")
	return ws, true
}

// Len is the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// EvictIdle closes and forgets workspaces unused for longer than the idle TTL.
// Workspaces with queued writes or a running rewrite are kept. The owner's
// next request starts a fresh workspace that has to be loaded again.
func (r *Registry) EvictIdle() int {
	r.mu.Lock()
	now := r.opts.Now()
	var idle []*Workspace
	for ownerID, ws := range r.workspaces {
		if now.Sub(ws.lastUsed) < r.opts.IdleTTL {
			continue
		}
		if ws.Syncer.Pending() > 0 || ws.Session.Rewriting() {
			continue
		}
		idle = append(idle, ws)
		delete(r.workspaces, ownerID)
	}
	r.mu.Unlock()

	for _, ws := range idle {
		ws.Syncer.Close()
		r.logger.Debug("workspace evicted", zap.String("owner", ws.OwnerID))
	}
	return len(idle)
}

// Run calls EvictIdle every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(); n > 0 {
				r.logger.Info("evicted idle workspaces", zap.Int("count", n), zap.Int("live", r.Len()))
			}
		}
	}
}

// Close drains every workspace's pending remote writes.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	workspaces := make([]*Workspace, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		workspaces = append(workspaces, ws)
	}
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, ws := range workspaces {
		wg.Add(1)
		go func(ws *Workspace) {
			defer wg.Done()
			ws.Syncer.Close()
		}(ws)
	}
	wg.Wait()
}
