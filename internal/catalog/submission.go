package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

// Minimum lengths, in characters, of the free-text submission fields.
const (
	MinDescriptionLength = 1200
	MinWhyMattersLength  = 500
)

// UncategorizedCategory is used for manual submissions without a category.
const UncategorizedCategory = "Uncategorized"

// SubmissionMode tells whether the paper details came from the resolver or
// were typed in by the user.
type SubmissionMode string

const (
	ModeResolved SubmissionMode = "resolved"
	ModeManual   SubmissionMode = "manual"
)

// SubmissionRequest is a user's paper submission.
//
// In resolved mode title, authors, date, category and DOI come from
// Metadata; in manual mode from the plain fields. Description becomes the
// abstract in both modes.
type SubmissionRequest struct {
	Mode            SubmissionMode   `json:"mode" validate:"required,oneof=resolved manual"`
	Metadata        *domain.Metadata `json:"metadata,omitempty" validate:"required_if=Mode resolved"`
	Title           string           `json:"title" validate:"required_if=Mode manual"`
	Authors         string           `json:"authors" validate:"required_if=Mode manual"`
	Description     string           `json:"description" validate:"required,min=1200"`
	PublicationDate string           `json:"publicationDate"`
	Category        string           `json:"category"`
	Link            string           `json:"link"`
	WhyMatters      string           `json:"whyMatters" validate:"required,min=500"`
}

// PaperWriter persists submitted papers. *repository.PgPaperRepository implements it.
type PaperWriter interface {
	Insert(ctx context.Context, paper *domain.Paper) error
}

// SubmissionStore keeps the locally stored user submissions.
type SubmissionStore interface {
	SaveSubmission(ctx context.Context, paper *domain.Paper) error
}

// InsertPublisher announces new papers to other instances.
type InsertPublisher interface {
	PublishInserted(ctx context.Context, paper *domain.Paper) error
}

// SubmissionMetrics receives submission outcomes.
type SubmissionMetrics interface {
	RecordSubmission(mode string)
}

// Submitter validates submissions, builds paper records and fans them out
// to storage, the realtime feed and the catalog.
type Submitter struct {
	catalog   *Catalog
	writer    PaperWriter
	store     SubmissionStore
	publisher InsertPublisher
	metrics   SubmissionMetrics
	validate  *validator.Validate
	now       func() time.Time
	logger    zerolog.Logger
}

// SubmitterOption configures a Submitter.
type SubmitterOption func(*Submitter)

// WithPaperWriter persists submissions to the shared database.
func WithPaperWriter(w PaperWriter) SubmitterOption {
	return func(s *Submitter) { s.writer = w }
}

// WithSubmissionStore keeps submissions in the local submission store.
func WithSubmissionStore(st SubmissionStore) SubmitterOption {
	return func(s *Submitter) { s.store = st }
}

// WithPublisher announces submissions on the realtime feed.
func WithPublisher(p InsertPublisher) SubmitterOption {
	return func(s *Submitter) { s.publisher = p }
}

// WithSubmissionMetrics attaches a metrics recorder.
func WithSubmissionMetrics(m SubmissionMetrics) SubmitterOption {
	return func(s *Submitter) { s.metrics = m }
}

// WithClock replaces the clock used for IDs and timestamps.
func WithClock(now func() time.Time) SubmitterOption {
	return func(s *Submitter) { s.now = now }
}

// NewSubmitter creates a Submitter that applies accepted papers to catalog.
func NewSubmitter(catalog *Catalog, logger zerolog.Logger, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		catalog:  catalog,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		logger:   logger.With().Str("component", "submitter").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks a request and returns a *domain.ValidationError for the
// first failing field.
func (s *Submitter) Validate(req *SubmissionRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validating submission: %w", err)
	}
	fe := verrs[0]
	return domain.NewValidationError(jsonFieldName(fe.Field()), validationMessage(fe))
}

// Build turns a valid request into a paper record.
func Build(req *SubmissionRequest, now time.Time) *domain.Paper {
	paper := &domain.Paper{
		ID:              fmt.Sprintf("sub-%d", now.UnixMilli()),
		Provenance:      domain.ProvenanceSubmission,
		Abstract:        req.Description,
		AbstractPreview: domain.Preview(req.Description),
		WhyMatters:      req.WhyMatters,
		Timestamp:       now.UnixMilli(),
	}

	if req.Mode == ModeManual {
		paper.Title = req.Title
		paper.Authors = splitManualAuthors(req.Authors)
		paper.PublicationDate = req.PublicationDate
		paper.Category = req.Category
		if strings.TrimSpace(paper.Category) == "" {
			paper.Category = UncategorizedCategory
		}
		paper.DOI = req.Link
		return paper
	}

	meta := req.Metadata
	paper.Title = meta.Title
	paper.Authors = append([]string(nil), meta.Authors...)
	paper.PublicationDate = meta.PublicationDate
	paper.Category = meta.Category
	paper.DOI = meta.DOI
	return paper
}

// Submit validates req, builds the paper and records it everywhere. Only
// validation and catalog errors fail the submission; storage and feed
// failures are logged.
func (s *Submitter) Submit(ctx context.Context, req *SubmissionRequest) (*domain.Paper, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	paper := Build(req, s.now())
	logger := s.logger.With().Str("paper_id", paper.ID).Str("mode", string(req.Mode)).Logger()

	if s.store != nil {
		if err := s.store.SaveSubmission(ctx, paper); err != nil {
			logger.Error().Err(err).Msg("failed to store submission locally")
		}
	}
	if s.writer != nil {
		if err := s.writer.Insert(ctx, paper); err != nil {
			logger.Error().Err(err).Msg("failed to persist submission")
		}
	}

	// The paper must be in the catalog before it is published, so the echo
	// of our own event finds it and is dropped.
	if _, err := s.catalog.Apply(ctx, PrependEvent(paper)); err != nil {
		return nil, fmt.Errorf("adding submission to catalog: %w", err)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishInserted(ctx, paper); err != nil {
			logger.Warn().Err(err).Msg("failed to publish submission")
		}
	}
	if s.metrics != nil {
		s.metrics.RecordSubmission(string(req.Mode))
	}

	logger.Info().Str("title", paper.Title).Msg("paper submitted")
	return paper, nil
}

func splitManualAuthors(raw string) []string {
	parts := strings.Split(raw, ",")
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		authors = append(authors, strings.TrimSpace(p))
	}
	return authors
}

var submissionJSONNames = map[string]string{
	"Mode":            "mode",
	"Metadata":        "metadata",
	"Title":           "title",
	"Authors":         "authors",
	"Description":     "description",
	"PublicationDate": "publicationDate",
	"Category":        "category",
	"Link":            "link",
	"WhyMatters":      "whyMatters",
}

func jsonFieldName(field string) string {
	if name, ok := submissionJSONNames[field]; ok {
		return name
	}
	return field
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
