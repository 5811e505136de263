// Package syncer keeps a user's local canvas snapshot and the remote store
// eventually consistent.
//
// Local mutations are applied synchronously; the matching remote write is
// queued and performed by a single writer goroutine, so writes for one canvas
// reach the store in the order they were made. A failed write is recorded and
// logged but never retried or rolled back: the local snapshot may diverge
// from the store until the next Load. Position and content are independent
// field groups and the last write of each wins.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/andrewpaige1/mindcanvas-api/canvas"
	"github.com/andrewpaige1/mindcanvas-api/metrics"
	"github.com/andrewpaige1/mindcanvas-api/models"
	"github.com/andrewpaige1/mindcanvas-api/store"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

var (
	// ErrNoMap means the owner's mind map could not be resolved. No canvas may
	// be shown in that case.
	ErrNoMap = errors.New("syncer: no usable mind map")
	// ErrNotLoaded is returned by mutations issued before a successful Load.
	ErrNotLoaded = errors.New("syncer: canvas not loaded")
	// ErrUnknownNode is returned when a mutation names a node that is not on
	// the local canvas.
	ErrUnknownNode = errors.New("syncer: unknown node")
	// ErrDanglingEdge is returned when an edge endpoint is missing or the edge
	// already exists.
	ErrDanglingEdge = errors.New("syncer: edge endpoints must exist")
	// ErrClosed is recorded for writes issued after Close.
	ErrClosed = errors.New("syncer: closed")
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Options tunes a Syncer. Zero values fall back to defaults.
type Options struct {
	DefaultMapTitle    string
	DefaultNodeLabel   string
	DefaultNodeContent string

	// WriteTimeout bounds each remote write.
	WriteTimeout time.Duration
	QueueSize    int
	// HistorySize is how many recent mutations Mutations reports.
	HistorySize int

	Metrics *metrics.Collector
	Now     func() time.Time
}

func (o Options) withDefaults() Options {
	if o.DefaultMapTitle == "" {
		o.DefaultMapTitle = "My First Mind Map"
	}
	if o.DefaultNodeLabel == "" {
		o.DefaultNodeLabel = "New Thought"
	}
	if o.DefaultNodeContent == "" {
		o.DefaultNodeContent = "<p>New idea...</p>"
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.HistorySize <= 0 {
		o.HistorySize = 200
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Snapshot is the canvas as currently held in memory.
type Snapshot struct {
	Map   models.MindMap `json:"map"`
	Nodes []models.Node  `json:"nodes"`
	Edges []models.Edge  `json:"edges"`
}

type write struct {
	seq     uint64
	kind    Kind
	nodeID  string
	apply   func(ctx context.Context) error
	barrier chan struct{}
}

// Syncer owns one canvas: its graph, its resolved map and its write queue.
type Syncer struct {
	store  store.Store
	graph  *canvas.Graph
	logger *zap.Logger
	opts   Options

	loadMu sync.Mutex

	mu      sync.Mutex
	mindMap *models.MindMap
	history []Mutation
	seq     uint64
	pending int

	sendMu    sync.RWMutex
	closed    bool
	queue     chan write
	done      chan struct{}
	closeOnce sync.Once
}

// New starts a Syncer and its writer goroutine. Call Close to stop it.
func New(s store.Store, graph *canvas.Graph, logger *zap.Logger, opts Options) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()

	sy := &Syncer{
		store:  s,
		graph:  graph,
		logger: logger,
		opts:   opts,
		queue:  make(chan write, opts.QueueSize),
		done:   make(chan struct{}),
	}
	go sy.run()
	return sy
}

// Graph returns the local snapshot this Syncer mutates.
func (s *Syncer) Graph() *canvas.Graph {
	return s.graph
}

// MindMap returns the resolved map, or nil before a successful Load.
func (s *Syncer) MindMap() *models.MindMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mindMap == nil {
		return nil
	}
	m := *s.mindMap
	return &m
}

// Load resolves the owner's map, creating it when missing, and replaces the
// local snapshot with exactly the nodes stored for that map. It waits for this
// Syncer's queued writes before reading.
func (s *Syncer) Load(ctx context.Context, ownerID string) (Snapshot, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	// Queued writes land first so the rows read back include them.
	if err := s.Flush(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("drain pending writes: %w", err)
	}

	mindMap, err := store.ResolveMap(ctx, s.store, ownerID, s.opts.DefaultMapTitle)
	if err != nil {
		s.logger.Error("failed to resolve mind map", zap.String("owner", ownerID), zap.Error(err))
		return Snapshot{}, fmt.Errorf("%w: %w", ErrNoMap, err)
	}
	if mindMap == nil || mindMap.ID == "" {
		s.logger.Error("mind map resolved without an id", zap.String("owner", ownerID))
		return Snapshot{}, ErrNoMap
	}

	rows, err := s.store.ListNodes(ctx, mindMap.ID)
	if err != nil {
		s.logger.Error("failed to fetch nodes", zap.String("map", mindMap.ID), zap.Error(err))
		return Snapshot{}, fmt.Errorf("load nodes: %w", err)
	}

	nodes := make([]models.Node, 0, len(rows))
	for _, n := range rows {
		if n.MapID == mindMap.ID {
			nodes = append(nodes, n)
		}
	}
	s.graph.ReplaceAll(nodes)

	s.mu.Lock()
	s.mindMap = mindMap
	s.mu.Unlock()

	s.logger.Info("canvas loaded",
		zap.String("owner", ownerID),
		zap.String("map", mindMap.ID),
		zap.Int("nodes", len(nodes)),
	)
	return s.Snapshot(), nil
}

// Snapshot returns the current local canvas.
func (s *Syncer) Snapshot() Snapshot {
	snap := Snapshot{
		Nodes: s.graph.Nodes(),
		Edges: s.graph.Edges(),
	}
	if m := s.MindMap(); m != nil {
		snap.Map = *m
	}
	return snap
}

// CreateNode places a new node at canvas coordinates (x, y). The node is in
// the local snapshot when CreateNode returns; the remote insert happens later
// and is not undone if it fails.
func (s *Syncer) CreateNode(ctx context.Context, x, y float64) (models.Node, error) {
	mindMap := s.MindMap()
	if mindMap == nil {
		return models.Node{}, ErrNotLoaded
	}

	id, err := s.newNodeID()
	if err != nil {
		return models.Node{}, fmt.Errorf("generate node id: %w", err)
	}

	node := models.Node{
		ID:        id,
		MapID:     mindMap.ID,
		Label:     s.opts.DefaultNodeLabel,
		Content:   s.opts.DefaultNodeContent,
		PositionX: x,
		PositionY: y,
	}
	s.graph.InsertOne(node)

	s.enqueue(KindInsert, id, func(ctx context.Context) error {
		return s.store.InsertNode(ctx, node)
	})
	return node, nil
}

// MoveNode records the end of a drag: one position write per call.
func (s *Syncer) MoveNode(ctx context.Context, nodeID string, x, y float64) error {
	if err := s.checkNode(nodeID); err != nil {
		return err
	}
	s.graph.Move(nodeID, x, y)

	s.enqueue(KindPosition, nodeID, func(ctx context.Context) error {
		return s.store.UpdateNodePosition(ctx, nodeID, x, y)
	})
	return nil
}

// UpdateContent replaces a node's content locally and remotely.
func (s *Syncer) UpdateContent(ctx context.Context, nodeID, content string) error {
	if err := s.checkNode(nodeID); err != nil {
		return err
	}
	s.graph.UpdateOneField(nodeID, canvas.FieldContent, content)

	s.enqueue(KindContent, nodeID, func(ctx context.Context) error {
		return s.store.UpdateNodeContent(ctx, nodeID, content)
	})
	return nil
}

// Connect adds a local edge. Edges are never written to the store.
func (s *Syncer) Connect(sourceID, targetID string) (models.Edge, error) {
	if s.MindMap() == nil {
		return models.Edge{}, ErrNotLoaded
	}
	if !s.graph.Connect(sourceID, targetID) {
		return models.Edge{}, ErrDanglingEdge
	}
	return models.Edge{SourceID: sourceID, TargetID: targetID}, nil
}

func (s *Syncer) checkNode(nodeID string) error {
	if s.MindMap() == nil {
		return ErrNotLoaded
	}
	if _, ok := s.graph.Node(nodeID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}
	return nil
}

// newNodeID returns a time-based id with a short random suffix so two nodes
// created within the same millisecond stay distinct.
func (s *Syncer) newNodeID() (string, error) {
	suffix, err := gonanoid.Generate(idAlphabet, 6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("node-%d-%s", s.opts.Now().UnixMilli(), suffix), nil
}

// Flush blocks until every write queued before the call has finished.
func (s *Syncer) Flush(ctx context.Context) error {
	barrier := make(chan struct{})

	s.sendMu.RLock()
	if s.closed {
		s.sendMu.RUnlock()
		<-s.done
		return nil
	}
	select {
	case s.queue <- write{barrier: barrier}:
	case <-ctx.Done():
		s.sendMu.RUnlock()
		return ctx.Err()
	}
	s.sendMu.RUnlock()

	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the queue and stops the writer goroutine.
func (s *Syncer) Close() {
	s.closeOnce.Do(func() {
		s.sendMu.Lock()
		s.closed = true
		close(s.queue)
		s.sendMu.Unlock()
	})
	<-s.done
}

func (s *Syncer) enqueue(kind Kind, nodeID string, apply func(ctx context.Context) error) {
	w := write{kind: kind, nodeID: nodeID, apply: apply}
	w.seq = s.record(w)
	s.opts.Metrics.MutationQueued()

	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.closed {
		s.finish(w, ErrClosed)
		return
	}
	s.queue <- w
}

func (s *Syncer) run() {
	defer close(s.done)

	for w := range s.queue {
		if w.barrier != nil {
			close(w.barrier)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.opts.WriteTimeout)
		err := w.apply(ctx)
		cancel()
		s.finish(w, err)
	}
}

func (s *Syncer) finish(w write, err error) {
	status := StatusCommitted
	if err != nil {
		status = StatusFailed
		s.logger.Error("remote write failed; local canvas keeps the change",
			zap.String("kind", string(w.kind)),
			zap.String("node", w.nodeID),
			zap.Error(err),
		)
	}
	s.complete(w.seq, status, err)
	s.opts.Metrics.MutationDone(string(w.kind), string(status))
}
