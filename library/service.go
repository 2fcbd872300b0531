package library

import (
	"context"
	"fmt"
	"time"

	"github.com/mattfehr/volleyball-rotation-tracker/codec"
	"github.com/mattfehr/volleyball-rotation-tracker/domain"
	"github.com/mattfehr/volleyball-rotation-tracker/metrics"
)

// UntitledListing is shown for sets saved with an empty title.
const UntitledListing = "Untitled"

type Repo interface {
	CreateRotationSet(ctx context.Context, userId string, doc codec.KeyedDocument) (string, error)
	UpdateRotationSet(ctx context.Context, userId, id string, doc codec.KeyedDocument) error
	GetRotationSet(ctx context.Context, userId, id string) (domain.RotationSetRecord, error)
	ListRotationSets(ctx context.Context, userId string) ([]domain.RotationSetRecord, error)
	DeleteRotationSet(ctx context.Context, userId, id string) error
}

// Summary is one entry of a user's library listing.
type Summary struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Service struct {
	repo    Repo
	metrics *metrics.Metrics
}

func NewService(repo Repo, m *metrics.Metrics) *Service {
	if m == nil {
		m = metrics.Discard()
	}
	return &Service{repo: repo, metrics: m}
}

// Save stores doc for userId. An empty id creates a new set; otherwise the
// existing set is overwritten. The returned id is the one the set lives under.
func (s *Service) Save(ctx context.Context, userId, id string, doc codec.Document) (string, error) {
	if err := codec.Validate(doc); err != nil {
		return "", err
	}
	keyed := codec.ToKeyed(doc)

	var err error
	if id == "" {
		id, err = s.repo.CreateRotationSet(ctx, userId, keyed)
		s.metrics.ObserveLibrary("create", err)
	} else {
		err = s.repo.UpdateRotationSet(ctx, userId, id, keyed)
		s.metrics.ObserveLibrary("update", err)
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// Load fetches a saved set in the flat shape.
func (s *Service) Load(ctx context.Context, userId, id string) (codec.Document, error) {
	record, err := s.repo.GetRotationSet(ctx, userId, id)
	s.metrics.ObserveLibrary("load", err)
	if err != nil {
		return codec.Document{}, err
	}

	doc, err := codec.FromKeyed(record.Document)
	if err != nil {
		return codec.Document{}, fmt.Errorf("%w: stored set %s: %v", domain.UnexpectedDatabaseError, id, err)
	}
	return doc, nil
}

func (s *Service) List(ctx context.Context, userId string) ([]Summary, error) {
	records, err := s.repo.ListRotationSets(ctx, userId)
	s.metrics.ObserveLibrary("list", err)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(records))
	for _, r := range records {
		title := r.Document.Title
		if title == "" {
			title = UntitledListing
		}
		summaries = append(summaries, Summary{
			Id:        r.Id,
			Title:     title,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return summaries, nil
}

func (s *Service) Delete(ctx context.Context, userId, id string) error {
	err := s.repo.DeleteRotationSet(ctx, userId, id)
	s.metrics.ObserveLibrary("delete", err)
	return err
}
