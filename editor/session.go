// Package editor is the single-node rich-text editing session. Every edit is
// persisted as it happens; there is no separate save step.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andrewpaige1/mindcanvas-api/completion"
	"github.com/andrewpaige1/mindcanvas-api/models"
	"go.uber.org/zap"
)

// The AI rewrite commands offered in the editor menu.
const (
	CommandFixGrammar = "Fix grammar and spelling"
	CommandSummarize  = "Summarize this in bullet points"
	CommandExpand     = "Expand on this idea and make it longer"
)

// Commands lists the rewrite menu in display order.
var Commands = []string{CommandFixGrammar, CommandSummarize, CommandExpand}

var (
	ErrUnknownCommand  = errors.New("editor: unknown rewrite command")
	ErrRewriteInFlight = errors.New("editor: a rewrite is already running")
	ErrRewriteFailed   = errors.New("editor: rewrite failed")
	// ErrStaleRewrite means the session moved to another node, or reopened,
	// while the rewrite ran. The result was discarded.
	ErrStaleRewrite = errors.New("editor: session changed during rewrite")
	ErrNoActiveNode = errors.New("editor: no node is open")
	ErrUnknownNode  = errors.New("editor: unknown node")
)

// IsCommand reports whether command is one of the menu commands.
func IsCommand(command string) bool {
	for _, c := range Commands {
		if c == command {
			return true
		}
	}
	return false
}

// NodeReader looks up nodes on the local canvas.
type NodeReader interface {
	Node(id string) (models.Node, bool)
}

// ContentWriter applies a content update locally and remotely.
type ContentWriter interface {
	UpdateContent(ctx context.Context, nodeID, content string) error
}

// View is what the editing dialog shows.
type View struct {
	NodeID     string `json:"node_id"`
	Label      string `json:"label"`
	Content    string `json:"content"`
	Generation int64  `json:"generation"`
	Rewriting  bool   `json:"rewriting"`
}

// Session edits one owner's nodes, one node at a time.
type Session struct {
	ownerID   string
	state     StateStore
	nodes     NodeReader
	content   ContentWriter
	completer completion.Completer
	logger    *zap.Logger
	timeout   time.Duration

	rewriting atomic.Bool
	// mu orders Open and Close against applying a rewrite result within
	// this process.
	mu sync.Mutex
}

func NewSession(ownerID string, state StateStore, nodes NodeReader, content ContentWriter, completer completion.Completer, logger *zap.Logger, rewriteTimeout time.Duration) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rewriteTimeout <= 0 {
		rewriteTimeout = 60 * time.Second
	}
	return &Session{
		ownerID:   ownerID,
		state:     state,
		nodes:     nodes,
		content:   content,
		completer: completer,
		logger:    logger.With(zap.String("owner", ownerID)),
		timeout:   rewriteTimeout,
	}
}

// Open makes nodeID the node being edited and starts a new generation.
func (s *Session) Open(ctx context.Context, nodeID string) (View, error) {
	node, ok := s.nodes.Node(nodeID)
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}

	s.mu.Lock()
	st, err := s.state.Activate(ctx, s.ownerID, nodeID)
	s.mu.Unlock()
	if err != nil {
		return View{}, err
	}
	return s.view(node, st), nil
}

// Close ends editing. Later edits are no-ops until the next Open.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Deactivate(ctx, s.ownerID)
}

// Current returns the dialog contents, or false when no node is open.
func (s *Session) Current(ctx context.Context) (View, bool, error) {
	st, err := s.state.Current(ctx, s.ownerID)
	if err != nil {
		return View{}, false, err
	}
	if !st.Active() {
		return View{}, false, nil
	}
	node, ok := s.nodes.Node(st.NodeID)
	if !ok {
		return View{}, false, nil
	}
	return s.view(node, st), true, nil
}

// Rewriting reports whether a rewrite is pending. It only drives the
// dialog's loading state.
func (s *Session) Rewriting() bool {
	return s.rewriting.Load()
}

// Edit forwards a content change of the open node. It reports false, without
// error, when no node is open.
func (s *Session) Edit(ctx context.Context, content string) (bool, error) {
	st, err := s.state.Current(ctx, s.ownerID)
	if err != nil {
		return false, err
	}
	if !st.Active() {
		return false, nil
	}
	if err := s.content.UpdateContent(ctx, st.NodeID, content); err != nil {
		return false, err
	}
	return true, nil
}

// Rewrite runs an AI command over the open node's content and, on success,
// replaces the content with the result. A failed call leaves the content
// untouched. The call is not cancelled when ctx is; it runs to completion or
// to the session's rewrite timeout, and its result is dropped if the session
// moved on meanwhile.
func (s *Session) Rewrite(ctx context.Context, command string) (string, error) {
	if !IsCommand(command) {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
	if !s.rewriting.CompareAndSwap(false, true) {
		return "", ErrRewriteInFlight
	}
	defer s.rewriting.Store(false)

	ctx = context.WithoutCancel(ctx)

	started, err := s.state.Current(ctx, s.ownerID)
	if err != nil {
		return "", err
	}
	if !started.Active() {
		return "", ErrNoActiveNode
	}
	node, ok := s.nodes.Node(started.NodeID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownNode, started.NodeID)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	result, err := completion.Rewrite(callCtx, s.completer, command, node.Content)
	cancel()
	if err != nil {
		s.logger.Warn("rewrite failed; content left unchanged",
			zap.String("node", started.NodeID),
			zap.String("command", command),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %w", ErrRewriteFailed, err)
	}

	if err := s.apply(ctx, started, result); err != nil {
		return "", err
	}
	return result, nil
}

// apply writes a rewrite result if the session is still on the node and
// generation the rewrite started under. The check and the write happen under
// mu, so a local Open or Close cannot slip in between. Sessions of the same
// owner on other instances are not covered.
func (s *Session) apply(ctx context.Context, started State, result string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now, err := s.state.Current(ctx, s.ownerID)
	if err != nil {
		return err
	}
	if now.NodeID != started.NodeID || now.Generation != started.Generation {
		s.logger.Info("discarding rewrite for a session that moved on",
			zap.String("node", started.NodeID),
			zap.Int64("generation", started.Generation),
			zap.String("current_node", now.NodeID),
			zap.Int64("current_generation", now.Generation),
		)
		return ErrStaleRewrite
	}

	return s.content.UpdateContent(ctx, started.NodeID, result)
}

func (s *Session) view(node models.Node, st State) View {
	label := node.Label
	if label == "" {
		label = "Untitled"
	}
	return View{
		NodeID:     node.ID,
		Label:      label,
		Content:    node.Content,
		Generation: st.Generation,
		Rewriting:  s.Rewriting(),
	}
}
