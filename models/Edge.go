package models

// Edge connects two nodes on the canvas. Edges only live in memory and are
// rebuilt per session.
type Edge struct {
	SourceID string `json:"source"`
	TargetID string `json:"target"`
}
