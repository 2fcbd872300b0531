package annotation

type State int

const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	if s == Drawing {
		return "drawing"
	}
	return "idle"
}

// Layer holds the committed strokes of one rotation slot and at most one
// gesture in progress.
type Layer struct {
	strokes []Stroke
	current *Stroke
	hit     HitTest
}

type LayerOption func(l *Layer)

// WithHitTest changes how eraser gestures are matched against strokes.
func WithHitTest(hit HitTest) LayerOption {
	return func(l *Layer) { l.hit = hit }
}

func NewLayer(opts ...LayerOption) *Layer {
	l := &Layer{strokes: []Stroke{}, hit: PointHit}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Layer) State() State {
	if l.current != nil {
		return Drawing
	}
	return Idle
}

// Start begins a gesture at p. It returns false and does nothing when a
// gesture is already running or the tool cannot draw.
func (l *Layer) Start(tool Tool, p Point) bool {
	if l.current != nil {
		return false
	}
	preset, ok := PresetFor(tool)
	if !ok {
		return false
	}
	l.current = &Stroke{
		Tool:   tool,
		Color:  preset.Color,
		Width:  preset.Width,
		Points: []Point{p},
	}
	return true
}

// Move extends the running gesture. Ignored while idle.
func (l *Layer) Move(p Point) bool {
	if l.current == nil {
		return false
	}
	l.current.Points = append(l.current.Points, p)
	return true
}

// End finishes the running gesture. Pen and highlight strokes are committed;
// an eraser gesture removes every stroke it touches instead. It returns the
// number of strokes removed.
func (l *Layer) End() int {
	if l.current == nil {
		return 0
	}
	stroke := *l.current
	l.current = nil

	if stroke.Tool == ToolEraser {
		before := len(l.strokes)
		l.strokes = Erase(l.strokes, stroke.Points, l.hit)
		return before - len(l.strokes)
	}
	l.strokes = append(l.strokes, stroke)
	return 0
}

// Cancel drops the running gesture without committing it.
func (l *Layer) Cancel() {
	l.current = nil
}

// Clear removes every committed stroke, whatever the state.
func (l *Layer) Clear() {
	l.strokes = []Stroke{}
}

// Strokes returns a copy of the committed strokes.
func (l *Layer) Strokes() []Stroke {
	out := make([]Stroke, len(l.strokes))
	for i, s := range l.strokes {
		out[i] = s.Clone()
	}
	return out
}

// Current returns a copy of the gesture in progress.
func (l *Layer) Current() (Stroke, bool) {
	if l.current == nil {
		return Stroke{}, false
	}
	return l.current.Clone(), true
}

// Preview is what gets drawn while a gesture runs: the committed strokes plus
// the pending one. Eraser gestures are never drawn.
func (l *Layer) Preview() []Stroke {
	out := l.Strokes()
	if l.current != nil && l.current.Tool.Inks() {
		out = append(out, l.current.Clone())
	}
	return out
}

// Reset replaces the committed strokes and abandons any running gesture.
func (l *Layer) Reset(strokes []Stroke) {
	l.current = nil
	l.strokes = make([]Stroke, len(strokes))
	for i, s := range strokes {
		l.strokes[i] = s.Clone()
	}
}

// Clone copies the layer including a running gesture.
func (l *Layer) Clone() *Layer {
	c := &Layer{strokes: l.Strokes(), hit: l.hit}
	if cur, ok := l.Current(); ok {
		c.current = &cur
	}
	return c
}
