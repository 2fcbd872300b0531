package editor

import (
	"encoding/json"
	"fmt"

	"github.com/mattfehr/volleyball-rotation-tracker/annotation"
	"github.com/mattfehr/volleyball-rotation-tracker/rotation"
)

// Envelope is the frame exchanged over the editor socket.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"`
}

// Commands sent by the client.
const (
	CmdSelect             = "select"
	CmdNext               = "next"
	CmdPrev               = "prev"
	CmdTitle              = "title"
	CmdAddPlayer          = "add_player"
	CmdUpdatePlayer       = "update_player"
	CmdMovePlayer         = "move_player"
	CmdRemovePlayer       = "remove_player"
	CmdCheck              = "check"
	CmdRotateFromPrevious = "rotate_from_previous"
	CmdTool               = "tool"
	CmdGestureStart       = "gesture_start"
	CmdGestureMove        = "gesture_move"
	CmdGestureEnd         = "gesture_end"
	CmdClear              = "clear"
	CmdExport             = "export"
	CmdImport             = "import"
	CmdSave               = "save"
	CmdLoad               = "load"
)

// Replies sent by the server.
const (
	ReplyState    = "state"
	ReplyLegality = "legality"
	ReplyDocument = "document"
	ReplySaved    = "saved"
	ReplyError    = "error"
)

func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("envelope without type")
	}
	env := Envelope{T: t}
	if payload != nil {
		pb, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.P = pb
	}
	return json.Marshal(env)
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("empty envelope")
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, err
	}
	if e.T == "" {
		return Envelope{}, fmt.Errorf("envelope without type")
	}
	return e, nil
}

func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	err := json.Unmarshal(env.P, &out)
	return out, err
}

type SelectPayload struct {
	Index int `json:"index"`
}

type TitlePayload struct {
	Title string `json:"title"`
}

// AddPlayerPayload carries the initial fields of a new player. Absent fields
// keep their defaults.
type AddPlayerPayload struct {
	Label *string        `json:"label"`
	Name  *string        `json:"name"`
	X     *float64       `json:"x"`
	Y     *float64       `json:"y"`
	Zone  *rotation.Zone `json:"zone"`
}

type UpdatePlayerPayload struct {
	ID    string          `json:"id"`
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

type MovePlayerPayload struct {
	ID string  `json:"id"`
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type PlayerIDPayload struct {
	ID string `json:"id"`
}

type ToolPayload struct {
	Tool string `json:"tool"`
}

type LoadPayload struct {
	ID string `json:"id"`
}

// State is the full view of the active rotation sent after every change.
type State struct {
	Title   string              `json:"title"`
	Active  int                 `json:"active"`
	Label   string              `json:"label"`
	Players []rotation.Player   `json:"players"`
	Strokes []annotation.Stroke `json:"strokes"`
	Tool    annotation.Tool     `json:"tool"`
	Drawing bool                `json:"drawing"`
	SetID   string              `json:"setId,omitempty"`
}

type LegalityReport struct {
	Outcome   string   `json:"outcome"`
	Legal     bool     `json:"legal"`
	Summary   string   `json:"summary"`
	Messages  []string `json:"messages"`
	Violators []string `json:"violators"`
}

func NewLegalityReport(r rotation.Result) LegalityReport {
	messages := r.Messages
	if messages == nil {
		messages = []string{}
	}
	return LegalityReport{
		Outcome:   r.Outcome.String(),
		Legal:     r.Outcome == rotation.Legal,
		Summary:   r.Summary(),
		Messages:  messages,
		Violators: r.ViolatorIDs(),
	}
}

type SavedPayload struct {
	ID string `json:"id"`
}

type ErrorPayload struct {
	Code string `json:"code"`
}
