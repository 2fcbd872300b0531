package annotation

import "math"

// HitTest reports whether an eraser gesture touches a stroke.
type HitTest func(stroke Stroke, gesture []Point) bool

// PointHit compares recorded points only. A fast gesture can pass between the
// sampled points of a thin stroke without touching it.
func PointHit(stroke Stroke, gesture []Point) bool {
	radius := stroke.Width + EraseMargin
	for _, sp := range stroke.Points {
		for _, ep := range gesture {
			if math.Hypot(sp.X-ep.X, sp.Y-ep.Y) < radius {
				return true
			}
		}
	}
	return false
}

// SegmentHit measures the distance from the eraser path segments to the stroke
// path segments, so strokes crossed between samples are caught too.
func SegmentHit(stroke Stroke, gesture []Point) bool {
	if len(stroke.Points) == 0 || len(gesture) == 0 {
		return false
	}
	radius := stroke.Width + EraseMargin
	for _, a := range segments(stroke.Points) {
		for _, b := range segments(gesture) {
			if segmentDistance(a, b) < radius {
				return true
			}
		}
	}
	return false
}

type segment struct{ p, q Point }

// segments turns a path into its segments. A single point is a zero length segment.
func segments(path []Point) []segment {
	if len(path) == 1 {
		return []segment{{path[0], path[0]}}
	}
	out := make([]segment, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		out = append(out, segment{path[i-1], path[i]})
	}
	return out
}

func segmentDistance(a, b segment) float64 {
	if segmentsIntersect(a, b) {
		return 0
	}
	return math.Min(
		math.Min(pointSegmentDistance(a.p, b), pointSegmentDistance(a.q, b)),
		math.Min(pointSegmentDistance(b.p, a), pointSegmentDistance(b.q, a)),
	)
}

func pointSegmentDistance(p Point, s segment) float64 {
	dx, dy := s.q.X-s.p.X, s.q.Y-s.p.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-s.p.X, p.Y-s.p.Y)
	}
	t := ((p.X-s.p.X)*dx + (p.Y-s.p.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(s.p.X+t*dx), p.Y-(s.p.Y+t*dy))
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// segmentsIntersect only reports proper crossings; touching and collinear cases
// are left to the endpoint distances, which are zero for them anyway.
func segmentsIntersect(a, b segment) bool {
	d1 := cross(b.p, b.q, a.p)
	d2 := cross(b.p, b.q, a.q)
	d3 := cross(a.p, a.q, b.p)
	d4 := cross(a.p, a.q, b.q)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// Erase returns the strokes that the gesture does not touch. An empty gesture
// removes nothing.
func Erase(strokes []Stroke, gesture []Point, hit HitTest) []Stroke {
	if hit == nil {
		hit = PointHit
	}
	kept := make([]Stroke, 0, len(strokes))
	for _, s := range strokes {
		if len(gesture) > 0 && hit(s, gesture) {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}
