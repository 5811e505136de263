package canvas

import (
	"testing"

	"github.com/andrewpaige1/mindcanvas-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNodes() []models.Node {
	return []models.Node{
		{ID: "a", MapID: "m", Label: "A", Content: "<p>a</p>", PositionX: 1, PositionY: 2},
		{ID: "b", MapID: "m", Label: "B", Content: "<p>b</p>", PositionX: 3, PositionY: 4},
	}
}

func TestReplaceAll(t *testing.T) {
	g := NewGraph()
	g.InsertOne(models.Node{ID: "old"})
	g.ReplaceAll(sampleNodes())
	require.True(t, g.Connect("a", "b"))

	g.ReplaceAll(sampleNodes())

	assert.Equal(t, sampleNodes(), g.Nodes())
	assert.Empty(t, g.Edges(), "edges are not carried across loads")
	_, ok := g.Node("old")
	assert.False(t, ok)
}

func TestInsertOne_ReplacesSameID(t *testing.T) {
	g := NewGraph()
	g.InsertOne(models.Node{ID: "a", Label: "first"})
	g.InsertOne(models.Node{ID: "b", Label: "second"})
	g.InsertOne(models.Node{ID: "a", Label: "again"})

	nodes := g.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "again", nodes[0].Label)
	assert.Equal(t, "second", nodes[1].Label)
}

func TestUpdateOneField(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		value interface{}
		want  models.Node
	}{
		{"label", FieldLabel, "renamed", models.Node{ID: "a", MapID: "m", Label: "renamed", Content: "<p>a</p>", PositionX: 1, PositionY: 2}},
		{"content", FieldContent, "<p>new</p>", models.Node{ID: "a", MapID: "m", Label: "A", Content: "<p>new</p>", PositionX: 1, PositionY: 2}},
		{"position x", FieldPositionX, 10.5, models.Node{ID: "a", MapID: "m", Label: "A", Content: "<p>a</p>", PositionX: 10.5, PositionY: 2}},
		{"position y int", FieldPositionY, 7, models.Node{ID: "a", MapID: "m", Label: "A", Content: "<p>a</p>", PositionX: 1, PositionY: 7}},
		{"mistyped value ignored", FieldContent, 42, models.Node{ID: "a", MapID: "m", Label: "A", Content: "<p>a</p>", PositionX: 1, PositionY: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			g.ReplaceAll(sampleNodes())

			g.UpdateOneField("a", tt.field, tt.value)

			got, ok := g.Node("a")
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			other, _ := g.Node("b")
			assert.Equal(t, sampleNodes()[1], other)
		})
	}
}

func TestUpdateOneField_UnknownID(t *testing.T) {
	g := NewGraph()
	g.ReplaceAll(sampleNodes())
	g.UpdateOneField("missing", FieldLabel, "x")
	assert.Equal(t, sampleNodes(), g.Nodes())
}

func TestMove(t *testing.T) {
	g := NewGraph()
	g.ReplaceAll(sampleNodes())
	g.Move("b", -5, 8)
	g.Move("missing", 1, 1)

	b, _ := g.Node("b")
	assert.Equal(t, -5.0, b.PositionX)
	assert.Equal(t, 8.0, b.PositionY)
	assert.Equal(t, "<p>b</p>", b.Content)
	assert.Len(t, g.Nodes(), 2)
}

func TestConnect(t *testing.T) {
	g := NewGraph()
	g.ReplaceAll(sampleNodes())

	assert.True(t, g.Connect("a", "b"))
	assert.False(t, g.Connect("a", "b"), "duplicate")
	assert.True(t, g.Connect("b", "a"))
	assert.False(t, g.Connect("a", "ghost"), "dangling target")
	assert.False(t, g.Connect("ghost", "a"), "dangling source")

	assert.Equal(t, []models.Edge{{SourceID: "a", TargetID: "b"}, {SourceID: "b", TargetID: "a"}}, g.Edges())
}

func TestAccessorsReturnCopies(t *testing.T) {
	g := NewGraph()
	g.ReplaceAll(sampleNodes())

	nodes := g.Nodes()
	nodes[0].Label = "mutated"

	a, _ := g.Node("a")
	assert.Equal(t, "A", a.Label)
}
