package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaProducer struct {
	writer *kafka.Writer
}

type KafkaConsumer struct {
	reader *kafka.Reader
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
		Async:    false,
	}

	return &KafkaProducer{writer: writer}
}

func NewKafkaConsumer(brokers []string, topic, groupID string) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 1 * time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	return &KafkaConsumer{reader: reader}
}

func (p *KafkaProducer) Publish(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	return p.writer.WriteMessages(ctx, message)
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// Subscribe reads messages until ctx is cancelled, handing each decoded event
// to handler. Handler errors are reported but do not stop consumption.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler func(event Event) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			fmt.Printf("Failed to decode event: %v\n", err)
			continue
		}

		if err := handler(event); err != nil {
			fmt.Printf("Failed to handle event: %v\n", err)
			continue
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

type EventType string

const (
	EventLikeToggled         EventType = "like_toggled"
	EventSubscriptionToggled EventType = "subscription_toggled"
	EventVideoViewed         EventType = "video_viewed"
	EventVideoPublished      EventType = "video_published"
	EventCommentCreated      EventType = "comment_created"
)

type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent wraps payload for publishing; payloads are one of the *EventData
// structs below.
func NewEvent(eventType EventType, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return Event{Type: eventType, Timestamp: time.Now(), Data: data}, nil
}

type LikeEventData struct {
	UserID      string `json:"user_id"`
	SubjectType string `json:"subject_type"`
	SubjectID   string `json:"subject_id"`
	Active      bool   `json:"active"`
}

type SubscriptionEventData struct {
	SubscriberID string `json:"subscriber_id"`
	ChannelID    string `json:"channel_id"`
	Active       bool   `json:"active"`
}

type ViewEventData struct {
	VideoID  string `json:"video_id"`
	ViewerID string `json:"viewer_id,omitempty"`
}

type VideoEventData struct {
	VideoID string `json:"video_id"`
	OwnerID string `json:"owner_id"`
	Title   string `json:"title"`
}

type CommentEventData struct {
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id"`
	VideoID   string `json:"video_id"`
}
