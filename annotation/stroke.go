package annotation

import "slices"

type Tool string

const (
	ToolNone      Tool = "none"
	ToolPen       Tool = "pen"
	ToolHighlight Tool = "highlight"
	ToolEraser    Tool = "eraser"
)

// ParseTool returns the tool named s.
func ParseTool(s string) (Tool, bool) {
	switch t := Tool(s); t {
	case ToolNone, ToolPen, ToolHighlight, ToolEraser:
		return t, true
	}
	return ToolNone, false
}

// Inks reports whether strokes drawn with t are kept on the layer.
func (t Tool) Inks() bool {
	return t == ToolPen || t == ToolHighlight
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Stroke struct {
	Tool   Tool    `json:"tool" validate:"oneof=pen highlight"`
	Color  string  `json:"color"`
	Width  float64 `json:"width" validate:"gte=0"`
	Points []Point `json:"points"`
}

func (s Stroke) Clone() Stroke {
	s.Points = slices.Clone(s.Points)
	if s.Points == nil {
		s.Points = []Point{}
	}
	return s
}

type Preset struct {
	Color   string
	Width   float64
	Opacity float64
}

var presets = map[Tool]Preset{
	ToolPen:       {Color: "black", Width: 4, Opacity: 1},
	ToolHighlight: {Color: "yellow", Width: 20, Opacity: 0.3},
	ToolEraser:    {Color: "#FFFFFF", Width: 30, Opacity: 1},
}

// PresetFor returns the style a new stroke gets for tool t.
func PresetFor(t Tool) (Preset, bool) {
	p, ok := presets[t]
	return p, ok
}

// EraseMargin is added to a stroke's width when testing it against an eraser gesture.
const EraseMargin = 10.0
