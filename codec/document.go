package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mattfehr/volleyball-rotation-tracker/annotation"
	"github.com/mattfehr/volleyball-rotation-tracker/rotation"
)

const ExportFileName = "rotation-set.json"

var (
	ErrMalformedDocument = errors.New("malformed-document")
	ErrInvalidShape      = errors.New("invalid-shape")
)

// Document is the flat shape used for file export and import.
type Document struct {
	Title       string                `json:"title"`
	Rotations   [][]rotation.Player   `json:"rotations" validate:"len=6,dive"`
	Annotations [][]annotation.Stroke `json:"annotations" validate:"len=6,dive,dive"`
}

var validate = validator.New()

// Export copies the whole set into a flat document.
func Export(set *rotation.Set) Document {
	doc := Document{
		Title:       set.Title,
		Rotations:   make([][]rotation.Player, rotation.SlotCount),
		Annotations: make([][]annotation.Stroke, rotation.SlotCount),
	}
	for i := 0; i < rotation.SlotCount; i++ {
		doc.Rotations[i] = set.Slot(i)
		doc.Annotations[i] = set.Layer(i).Strokes()
	}
	return doc
}

// Encode renders doc the way it is written to disk.
func Encode(doc Document) ([]byte, error) {
	return json.MarshalIndent(normalize(doc), "", "  ")
}

// rawDocument keeps the two collections unparsed so their presence and kind
// can be checked before anything else.
type rawDocument struct {
	Title       string          `json:"title"`
	Rotations   json.RawMessage `json:"rotations"`
	Annotations json.RawMessage `json:"annotations"`
}

// Decode parses a flat document. ErrMalformedDocument means the bytes are not
// JSON at all; ErrInvalidShape means they are, but not a rotation set.
func Decode(data []byte) (Document, error) {
	if !json.Valid(data) {
		return Document{}, ErrMalformedDocument
	}
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidShape, err)
	}

	if !isArray(raw.Rotations) {
		return Document{}, fmt.Errorf("%w: rotations must be an array", ErrInvalidShape)
	}
	if !isArray(raw.Annotations) {
		return Document{}, fmt.Errorf("%w: annotations must be an array", ErrInvalidShape)
	}

	doc := Document{Title: raw.Title}
	if err := json.Unmarshal(raw.Rotations, &doc.Rotations); err != nil {
		return Document{}, fmt.Errorf("%w: rotations: %w", ErrInvalidShape, err)
	}
	if err := json.Unmarshal(raw.Annotations, &doc.Annotations); err != nil {
		return Document{}, fmt.Errorf("%w: annotations: %w", ErrInvalidShape, err)
	}
	if err := Validate(doc); err != nil {
		return Document{}, err
	}
	return normalize(doc), nil
}

// Validate checks that doc describes exactly six slots with well formed
// players and strokes.
func Validate(doc Document) error {
	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidShape, err)
	}
	return nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// normalize turns null slots and point lists into empty arrays.
func normalize(doc Document) Document {
	out := Document{
		Title:       doc.Title,
		Rotations:   make([][]rotation.Player, len(doc.Rotations)),
		Annotations: make([][]annotation.Stroke, len(doc.Annotations)),
	}
	for i, players := range doc.Rotations {
		out.Rotations[i] = rotation.Slot(players).Clone()
	}
	for i, strokes := range doc.Annotations {
		out.Annotations[i] = make([]annotation.Stroke, len(strokes))
		for j, s := range strokes {
			out.Annotations[i][j] = s.Clone()
		}
	}
	return out
}

// Apply replaces the whole state of set with doc and selects R1. When doc is
// not a valid rotation set, set is left exactly as it was.
func Apply(doc Document, set *rotation.Set) error {
	if err := Validate(doc); err != nil {
		return err
	}
	doc = normalize(doc)
	slots := make([]rotation.Slot, len(doc.Rotations))
	for i, players := range doc.Rotations {
		slots[i] = players
	}
	set.Replace(doc.Title, slots, doc.Annotations)
	return nil
}

// Import decodes data and applies it to set. On error set is untouched.
func Import(data []byte, set *rotation.Set) error {
	doc, err := Decode(data)
	if err != nil {
		return err
	}
	return Apply(doc, set)
}
