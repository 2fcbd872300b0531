package codec

import (
	"fmt"

	"github.com/mattfehr/volleyball-rotation-tracker/annotation"
	"github.com/mattfehr/volleyball-rotation-tracker/rotation"
)

// Labels name the six rotations in the keyed shape.
var Labels = [rotation.SlotCount]string{"R1", "R2", "R3", "R4", "R5", "R6"}

func LabelFor(i int) (string, bool) {
	if i < 0 || i >= len(Labels) {
		return "", false
	}
	return Labels[i], true
}

func IndexOf(label string) (int, bool) {
	for i, l := range Labels {
		if l == label {
			return i, true
		}
	}
	return -1, false
}

// KeyedDocument is the shape kept in remote storage: the same content as a
// Document with rotations keyed by label instead of position.
type KeyedDocument struct {
	Title       string                         `json:"title"`
	Players     map[string][]rotation.Player   `json:"players"`
	Annotations map[string][]annotation.Stroke `json:"annotations"`
}

// ToKeyed converts a flat document. Missing trailing slots become empty.
func ToKeyed(doc Document) KeyedDocument {
	doc = normalize(doc)
	out := KeyedDocument{
		Title:       doc.Title,
		Players:     make(map[string][]rotation.Player, len(Labels)),
		Annotations: make(map[string][]annotation.Stroke, len(Labels)),
	}
	for i, label := range Labels {
		out.Players[label] = []rotation.Player{}
		out.Annotations[label] = []annotation.Stroke{}
		if i < len(doc.Rotations) {
			out.Players[label] = doc.Rotations[i]
		}
		if i < len(doc.Annotations) {
			out.Annotations[label] = doc.Annotations[i]
		}
	}
	return out
}

// FromKeyed converts back to the flat shape. Every label R1..R6 must be
// present in both maps and nothing else may be.
func FromKeyed(kdoc KeyedDocument) (Document, error) {
	if err := checkLabels(kdoc.Players); err != nil {
		return Document{}, fmt.Errorf("%w: players: %w", ErrInvalidShape, err)
	}
	if err := checkLabels(kdoc.Annotations); err != nil {
		return Document{}, fmt.Errorf("%w: annotations: %w", ErrInvalidShape, err)
	}

	doc := Document{
		Title:       kdoc.Title,
		Rotations:   make([][]rotation.Player, len(Labels)),
		Annotations: make([][]annotation.Stroke, len(Labels)),
	}
	for i, label := range Labels {
		doc.Rotations[i] = kdoc.Players[label]
		doc.Annotations[i] = kdoc.Annotations[label]
	}
	doc = normalize(doc)
	if err := Validate(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func checkLabels[T any](m map[string][]T) error {
	if len(m) != len(Labels) {
		return fmt.Errorf("expected %d labels, got %d", len(Labels), len(m))
	}
	for _, label := range Labels {
		if _, ok := m[label]; !ok {
			return fmt.Errorf("missing label %s", label)
		}
	}
	return nil
}
