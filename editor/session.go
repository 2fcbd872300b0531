package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattfehr/volleyball-rotation-tracker/annotation"
	"github.com/mattfehr/volleyball-rotation-tracker/codec"
	"github.com/mattfehr/volleyball-rotation-tracker/domain"
	"github.com/mattfehr/volleyball-rotation-tracker/metrics"
	"github.com/mattfehr/volleyball-rotation-tracker/rotation"
)

var (
	ErrUnknownCommand = errors.New("unknown-command")
	ErrBadPayload     = errors.New("bad-payload")
	ErrUnknownField   = errors.New("unknown-field")
	ErrUnknownTool    = errors.New("unknown-tool")
	ErrNotSignedIn    = errors.New("not-signed-in")
)

// Library is the remote store a session saves to and loads from.
type Library interface {
	Save(ctx context.Context, userId, id string, doc codec.Document) (string, error)
	Load(ctx context.Context, userId, id string) (codec.Document, error)
}

// Session is one coach editing one rotation set. It is not safe for
// concurrent use: commands are meant to be fed one at a time by a single
// goroutine.
type Session struct {
	userId  string
	setId   string
	set     *rotation.Set
	tool    annotation.Tool
	ids     rotation.IDGenerator
	table   rotation.PositionTable
	layers  []annotation.LayerOption
	library Library
	metrics *metrics.Metrics
}

type Option func(*Session)

func WithIDGenerator(ids rotation.IDGenerator) Option {
	return func(s *Session) { s.ids = ids }
}

func WithPositions(table rotation.PositionTable) Option {
	return func(s *Session) { s.table = table }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithHitTest selects how eraser gestures pick strokes.
func WithHitTest(hit annotation.HitTest) Option {
	return func(s *Session) { s.layers = append(s.layers, annotation.WithHitTest(hit)) }
}

// NewSession starts from the default set. userId may be empty, in which case
// save and load are refused.
func NewSession(userId string, library Library, opts ...Option) *Session {
	s := &Session{
		userId:  userId,
		tool:    annotation.ToolPen,
		ids:     rotation.UUIDGenerator{},
		table:   rotation.DefaultPositions,
		library: library,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.Discard()
	}

	s.set = rotation.NewDefaultSet(s.ids, s.layers...)
	return s
}

// Open replaces the session content with a document saved under id.
func (s *Session) Open(id string, doc codec.Document) error {
	next := rotation.NewSet("", s.layers...)
	if err := codec.Apply(doc, next); err != nil {
		return err
	}
	s.set = next
	s.setId = id
	return nil
}

func (s *Session) Set() *rotation.Set {
	return s.set
}

func (s *Session) SetID() string {
	return s.setId
}

func (s *Session) Tool() annotation.Tool {
	return s.tool
}

func (s *Session) State() State {
	layer := s.set.ActiveLayer()
	label, _ := codec.LabelFor(s.set.Active())
	return State{
		Title:   s.set.Title,
		Active:  s.set.Active(),
		Label:   label,
		Players: s.set.ActiveSlot(),
		Strokes: layer.Preview(),
		Tool:    s.tool,
		Drawing: layer.State() == annotation.Drawing,
		SetID:   s.setId,
	}
}

func reply(t string, payload any) Envelope {
	pb, err := json.Marshal(payload)
	if err != nil {
		return errorReply(err)
	}
	return Envelope{T: t, P: pb}
}

// ErrorCode maps err onto the code sent to the client.
func ErrorCode(err error) string {
	for _, known := range []error{
		ErrUnknownCommand,
		ErrBadPayload,
		ErrUnknownField,
		ErrUnknownTool,
		ErrNotSignedIn,
		rotation.ErrSlotOutOfRange,
		codec.ErrMalformedDocument,
		codec.ErrInvalidShape,
		domain.ErrRotationSetNotFound,
		domain.ErrUserNotFound,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "server-timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return "unknown-error"
}

func errorReply(err error) Envelope {
	pb, _ := json.Marshal(ErrorPayload{Code: ErrorCode(err)})
	return Envelope{T: ReplyError, P: pb}
}

func (s *Session) stateReply() Envelope {
	return reply(ReplyState, s.State())
}

// Handle runs one command to completion. It returns the reply to send, or
// false when the command needs no answer.
func (s *Session) Handle(ctx context.Context, env Envelope) (Envelope, bool) {
	out, ok, err := s.dispatch(ctx, env)

	command := env.T
	if errors.Is(err, ErrUnknownCommand) {
		command = "unknown"
	}
	s.metrics.EditorCommands.WithLabelValues(command).Inc()

	if err != nil {
		return errorReply(err), true
	}
	return out, ok
}

func (s *Session) dispatch(ctx context.Context, env Envelope) (Envelope, bool, error) {
	switch env.T {
	case CmdSelect:
		p, err := DecodePayload[SelectPayload](env)
		if err != nil {
			return Envelope{}, false, fmt.Errorf("%w: %w", ErrBadPayload, err)
		}
		s.set.ActiveLayer().Cancel()
		if err := s.set.Select(p.Index); err != nil {
			return Envelope{}, false, err
		}

	case CmdNext:
		s.set.ActiveLayer().Cancel()
		s.set.Next()

	case CmdPrev:
		s.set.ActiveLayer().Cancel()
		s.set.Prev()

	case CmdTitle:
		p, err := DecodePayload[TitlePayload](env)
		if err != nil {
			return Envelope{}, false, fmt.Errorf("%w: %w", ErrBadPayload, err)
		}
		s.set.Title = p.Title

	case CmdAddPlayer:
		p := AddPlayerPayload{}
		if len(env.P) > 0 {
			if err := json.Unmarshal(env.P, &p); err != nil {
				return Envelope{}, false, fmt.Errorf("%w: %w", ErrBadPayload, err)
			}
		}
		s.set.ReplaceActive(rotation.Add(s.set.ActiveSlot(), s.ids, p.edits()...))

	case CmdUpdatePlayer:
		p, err := DecodePayload[UpdatePlayerPayload](env)
		if err != nil {
			return Envelope{}, false, fmt.Errorf("%w: %w", ErrBadPayload, err)
		}
		edit, err := fieldEdit(p.Field, p.Value)
		if err != nil {
			return Envelope{}, false, err
		}
		s.set.ReplaceActive(rotation.Update(s.set.ActiveSlot(), p.ID, edit))

	case CmdMovePlayer:
		p, err := DecodePayload[MovePlayerPayload](env)
		if err != nil {
			return Envelope{}, false, fmt.Errorf("%w: %w", ErrBadPayload, err)
		}
		s.set.ReplaceActive(rotation.Update(s.set.ActiveSlot(), p.ID, rotation.MoveBy(p.DX, p.DY)))

	case CmdRemovePlayer:
		p, err := DecodePayload[PlayerIDPayload](env)
		if err != nil {
			return Envelope{}, false, fmt.Errorf("%w: %w", ErrBadPayload, err)
		}
		s.set.ReplaceActive(rotation.Remove(s.set.ActiveSlot(), p.ID))

	case CmdCheck:
		result := rotation.Check(s.set.ActiveSlot())
		s.metrics.ObserveLegality(result.Outcome.String())
		return reply(ReplyLegality, NewLegalityReport(result)), true, nil

	case CmdRotateFromPrevious:
		s.set.RotateFromPrevious(s.table, s.ids)
		s.metrics.Derivations.Inc()

	case CmdTool:
		p, err := DecodePayload[ToolPayload](env)
		if err != nil {
			return Envelope{}, false, fmt.Errorf("%w: %w", ErrBadPayload, err)
		}
		tool, ok := annotation.ParseTool(p.Tool)
		if !ok {
			return Envelope{}, false, ErrUnknownTool
		}
		s.tool = tool

	case CmdGestureStart:
		p, err := DecodePayload[annotation.Point](env)
		if err != nil {
			return Envelope{}, false, fmt.Errorf("%w: %w", ErrBadPayload, err)
		}
		if !s.set.ActiveLayer().Start(s.tool, p) {
			return Envelope{}, false, nil
		}

	case CmdGestureMove:
		p, err := DecodePayload[annotation.Point](env)
		if err != nil {
			return Envelope{}, false, fmt.Errorf("%w: %w", ErrBadPayload, err)
		}
		// moves are drawn client side; only the final stroke is echoed
		s.set.ActiveLayer().Move(p)
		return Envelope{}, false, nil

	case CmdGestureEnd:
		layer := s.set.ActiveLayer()
		if layer.State() != annotation.Drawing {
			return Envelope{}, false, nil
		}
		if removed := layer.End(); removed > 0 {
			s.metrics.StrokesErased.Add(float64(removed))
		}

	case CmdClear:
		s.set.ActiveLayer().Clear()

	case CmdExport:
		return reply(ReplyDocument, codec.Export(s.set)), true, nil

	case CmdImport:
		if len(env.P) == 0 {
			return Envelope{}, false, codec.ErrMalformedDocument
		}
		next := rotation.NewSet("", s.layers...)
		if err := codec.Import(env.P, next); err != nil {
			return Envelope{}, false, err
		}
		// an imported file is not yet in the library
		s.set = next
		s.setId = ""

	case CmdSave:
		id, err := s.save(ctx)
		if err != nil {
			return Envelope{}, false, err
		}
		return reply(ReplySaved, SavedPayload{ID: id}), true, nil

	case CmdLoad:
		p, err := DecodePayload[LoadPayload](env)
		if err != nil {
			return Envelope{}, false, fmt.Errorf("%w: %w", ErrBadPayload, err)
		}
		if err := s.load(ctx, p.ID); err != nil {
			return Envelope{}, false, err
		}

	default:
		return Envelope{}, false, fmt.Errorf("%w: %q", ErrUnknownCommand, env.T)
	}

	return s.stateReply(), true, nil
}

func (s *Session) save(ctx context.Context) (string, error) {
	if s.userId == "" || s.library == nil {
		return "", ErrNotSignedIn
	}
	id, err := s.library.Save(ctx, s.userId, s.setId, codec.Export(s.set))
	if err != nil {
		return "", err
	}
	s.setId = id
	return id, nil
}

func (s *Session) load(ctx context.Context, id string) error {
	if s.userId == "" || s.library == nil {
		return ErrNotSignedIn
	}
	doc, err := s.library.Load(ctx, s.userId, id)
	if err != nil {
		return err
	}
	return s.Open(id, doc)
}

func (p AddPlayerPayload) edits() []rotation.Edit {
	var edits []rotation.Edit
	if p.Label != nil {
		edits = append(edits, rotation.SetLabel(*p.Label))
	}
	if p.Name != nil {
		edits = append(edits, rotation.SetName(*p.Name))
	}
	if p.X != nil {
		edits = append(edits, rotation.SetX(*p.X))
	}
	if p.Y != nil {
		edits = append(edits, rotation.SetY(*p.Y))
	}
	if p.Zone != nil {
		edits = append(edits, rotation.SetZone(*p.Zone))
	}
	return edits
}

// fieldEdit turns an update_player field and raw value into an edit.
func fieldEdit(field string, value json.RawMessage) (rotation.Edit, error) {
	bad := func(err error) (rotation.Edit, error) {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadPayload, field, err)
	}
	if len(value) == 0 {
		value = json.RawMessage("null")
	}

	switch field {
	case "label", "name":
		var v string
		if err := json.Unmarshal(value, &v); err != nil {
			return bad(err)
		}
		if field == "label" {
			return rotation.SetLabel(v), nil
		}
		return rotation.SetName(v), nil
	case "x", "y":
		var v float64
		if err := json.Unmarshal(value, &v); err != nil {
			return bad(err)
		}
		if field == "x" {
			return rotation.SetX(v), nil
		}
		return rotation.SetY(v), nil
	case "zone":
		var z rotation.Zone
		if err := json.Unmarshal(value, &z); err != nil {
			return bad(err)
		}
		return rotation.SetZone(z), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
}
