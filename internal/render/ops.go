package render

// OpKind discriminates draw operations emitted to the host surface.
type OpKind string

const (
	OpAddNode    OpKind = "add_node"
	OpUpdateNode OpKind = "update_node"
	OpRemoveNode OpKind = "remove_node"
	OpAddLink    OpKind = "add_link"
	OpUpdateLink OpKind = "update_link"
	OpRemoveLink OpKind = "remove_link"
)

// Circle is the node primitive: a circle with a label at a position.
type Circle struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Radius      float64 `json:"radius"`
	Color       string  `json:"color"`
	Label       string  `json:"label,omitempty"`
	ShowLabel   bool    `json:"showLabel"`
	Selected    bool    `json:"selected"`
	Highlighted bool    `json:"highlighted"`
	Hidden      bool    `json:"hidden"`
}

// Line is the link primitive between two world positions. Dashed
// distinguishes reverse and one-to-many relationships from direct
// references.
type Line struct {
	X1          float64 `json:"x1"`
	Y1          float64 `json:"y1"`
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
	Dashed      bool    `json:"dashed"`
	Highlighted bool    `json:"highlighted"`
	Hidden      bool    `json:"hidden"`
}

// Op is one incremental instruction for the rendering surface. Exactly
// one of Circle/Line is set, matching the kind.
type Op struct {
	Kind   OpKind  `json:"kind"`
	ID     string  `json:"id"` // node id or link key
	Circle *Circle `json:"circle,omitempty"`
	Line   *Line   `json:"line,omitempty"`
}

// Surface is the host rendering boundary; the engine does not assume
// SVG, canvas, or anything else behind it.
type Surface interface {
	Draw(ops []Op)
}
