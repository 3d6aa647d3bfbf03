// Package feed carries newly inserted papers between service instances
// over Kafka, so a submission on one instance shows up in every catalog.
package feed

import (
	"time"

	"github.com/nexus/paper-discovery-service/internal/domain"
)

// DefaultTopic is the Kafka topic for inserted papers.
const DefaultTopic = "nexus.papers.inserted"

// EventInsert marks a paper insertion.
const EventInsert = "INSERT"

// PaperInsertedEvent is the message published for every new paper.
type PaperInsertedEvent struct {
	EventType   string        `json:"event_type"`
	Paper       *domain.Paper `json:"paper"`
	PublishedAt time.Time     `json:"published_at"`
}

// Config holds Kafka settings for the feed.
type Config struct {
	// Brokers is the list of Kafka broker addresses.
	Brokers []string
	// Topic is the Kafka topic for inserted papers.
	Topic string
	// GroupID is the consumer group ID. Each instance needs its own group so
	// that every instance sees every insert.
	GroupID string
}

func (c Config) topic() string {
	if c.Topic == "" {
		return DefaultTopic
	}
	return c.Topic
}
