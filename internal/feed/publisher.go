package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher announces inserted papers on the feed topic.
type Publisher struct {
	writer messageWriter
	now    func() time.Time
	logger zerolog.Logger
}

// NewPublisher creates a Publisher writing to cfg.Brokers.
func NewPublisher(cfg Config, logger zerolog.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.topic(),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(writer, logger)
}

func newPublisher(w messageWriter, logger zerolog.Logger) *Publisher {
	return &Publisher{
		writer: w,
		now:    time.Now,
		logger: logger.With().Str("component", "feed_publisher").Logger(),
	}
}

// PublishInserted writes an insert event for paper, keyed by paper ID.
func (p *Publisher) PublishInserted(ctx context.Context, paper *domain.Paper) error {
	if paper == nil || paper.ID == "" {
		return domain.NewValidationError("paper", "an ID is required")
	}

	value, err := json.Marshal(PaperInsertedEvent{
		EventType:   EventInsert,
		Paper:       paper,
		PublishedAt: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding insert event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(paper.ID), Value: value}); err != nil {
		return fmt.Errorf("publishing insert event: %w", err)
	}

	p.logger.Debug().Str("paper_id", paper.ID).Msg("published insert event")
	return nil
}

// Close flushes and closes the Kafka writer.
func (p *Publisher) Close() error {
	p.logger.Info().Msg("closing feed publisher")
	return p.writer.Close()
}
