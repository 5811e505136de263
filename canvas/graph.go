// Package canvas holds the in-memory node and edge collections that drive
// rendering of one user's mind map.
package canvas

import (
	"sync"

	"github.com/andrewpaige1/mindcanvas-api/models"
)

// Field names a single updatable node attribute.
type Field int

const (
	FieldLabel Field = iota
	FieldContent
	FieldPositionX
	FieldPositionY
)

// Graph is the local snapshot of a canvas. Every mutation is synchronous and
// total: unknown ids and mistyped values are ignored rather than reported.
type Graph struct {
	mu    sync.RWMutex
	nodes []models.Node
	index map[string]int
	edges []models.Edge
}

func NewGraph() *Graph {
	return &Graph{index: make(map[string]int)}
}

// ReplaceAll swaps in a freshly loaded set of nodes. Edges are dropped because
// they are never persisted.
func (g *Graph) ReplaceAll(nodes []models.Node) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = make([]models.Node, 0, len(nodes))
	g.index = make(map[string]int, len(nodes))
	g.edges = nil
	for _, n := range nodes {
		g.insertLocked(n)
	}
}

// InsertOne adds a node, replacing any node that already has the same id.
func (g *Graph) InsertOne(node models.Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.insertLocked(node)
}

func (g *Graph) insertLocked(node models.Node) {
	if i, ok := g.index[node.ID]; ok {
		g.nodes[i] = node
		return
	}
	g.index[node.ID] = len(g.nodes)
	g.nodes = append(g.nodes, node)
}

// UpdateOneField sets one attribute of one node.
func (g *Graph) UpdateOneField(id string, field Field, value interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i, ok := g.index[id]
	if !ok {
		return
	}
	n := &g.nodes[i]

	switch field {
	case FieldLabel:
		if s, ok := value.(string); ok {
			n.Label = s
		}
	case FieldContent:
		if s, ok := value.(string); ok {
			n.Content = s
		}
	case FieldPositionX:
		if f, ok := toFloat(value); ok {
			n.PositionX = f
		}
	case FieldPositionY:
		if f, ok := toFloat(value); ok {
			n.PositionY = f
		}
	}
}

// Move sets both coordinates of a node at once.
func (g *Graph) Move(id string, x, y float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if i, ok := g.index[id]; ok {
		g.nodes[i].PositionX = x
		g.nodes[i].PositionY = y
	}
}

// Connect adds an edge between two present nodes. It reports false, and
// builds nothing, when an endpoint is missing or the edge already exists.
func (g *Graph) Connect(sourceID, targetID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.index[sourceID]; !ok {
		return false
	}
	if _, ok := g.index[targetID]; !ok {
		return false
	}
	for _, e := range g.edges {
		if e.SourceID == sourceID && e.TargetID == targetID {
			return false
		}
	}
	g.edges = append(g.edges, models.Edge{SourceID: sourceID, TargetID: targetID})
	return true
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (models.Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	i, ok := g.index[id]
	if !ok {
		return models.Node{}, false
	}
	return g.nodes[i], true
}

// Nodes returns a copy of the nodes in insertion order.
func (g *Graph) Nodes() []models.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]models.Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns a copy of the edges.
func (g *Graph) Edges() []models.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]models.Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

func toFloat(v interface{}) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	case int:
		return float64(f), true
	case int64:
		return float64(f), true
	default:
		return 0, false
	}
}
