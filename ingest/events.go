// Package ingest runs crawl cycles: fetch listings, extract
// candidates, canonicalize, persist idempotently, then mark semantic
// duplicates over the recent window.
package ingest

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"

	"noticewala/types"
)

// Event types published after persistence.
const (
	EventAnnouncementSaved   = "announcement.saved"
	EventAnnouncementUpdated = "announcement.updated"
	EventDuplicateResolved   = "announcement.duplicate"
)

// AnnouncementEvent is the Kafka payload emitted for downstream
// consumers (notification and search indexing services).
type AnnouncementEvent struct {
	Type           string    `json:"type"`
	AnnouncementID string    `json:"announcement_id"`
	SourceName     string    `json:"source_name"`
	SourceURL      string    `json:"source_url"`
	Title          string    `json:"title"`
	PriorityScore  float64   `json:"priority_score"`
	DuplicateOf    string    `json:"duplicate_of,omitempty"`
	EmittedAt      time.Time `json:"emitted_at"`
}

// EventPublisher emits pipeline events. The coordinator treats it as
// optional; a nil publisher means events are disabled.
type EventPublisher interface {
	Publish(event AnnouncementEvent) error
	Close() error
}

// KafkaPublisher implements EventPublisher on a sarama sync producer.
// Messages are keyed by announcement ID so updates for one record stay
// in partition order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

var _ EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher connects to the brokers and verifies the producer.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	log.Printf("Kafka publisher started (topic: %s)", topic)
	return &KafkaPublisher{producer: producer, topic: topic}, nil
}

func (p *KafkaPublisher) Publish(event AnnouncementEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.AnnouncementID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("send event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

func savedEvent(ann *types.Announcement) AnnouncementEvent {
	return AnnouncementEvent{
		Type:           EventAnnouncementSaved,
		AnnouncementID: ann.ID,
		SourceName:     ann.SourceName,
		SourceURL:      ann.SourceURL,
		Title:          ann.Title,
		PriorityScore:  ann.PriorityScore,
		EmittedAt:      time.Now().UTC(),
	}
}

func updatedEvent(ann *types.Announcement) AnnouncementEvent {
	ev := savedEvent(ann)
	ev.Type = EventAnnouncementUpdated
	return ev
}

func duplicateEvent(pair types.DuplicatePair) AnnouncementEvent {
	return AnnouncementEvent{
		Type:           EventDuplicateResolved,
		AnnouncementID: pair.DuplicateID,
		DuplicateOf:    pair.RootID,
		EmittedAt:      time.Now().UTC(),
	}
}
