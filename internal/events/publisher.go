// Package events publishes domain events to RabbitMQ. Publishing is best
// effort: callers log a failure and carry on, an import never fails because
// the broker is down.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const QueueDatasetImported = "dataset.imported"

// DatasetImported is emitted after a dataset and its rows are stored.
type DatasetImported struct {
	DatasetID     string    `json:"dataset_id"`
	Nome          string    `json:"nome"`
	Origem        string    `json:"origem"`
	ImportadoPor  string    `json:"importado_por,omitempty"`
	Veiculos      int       `json:"vehicles"`
	Utilizacoes   int       `json:"vehicle_uses"`
	Manutencoes   int       `json:"maintenances"`
	Usuarios      int       `json:"users"`
	Pontos        int       `json:"point_records"`
	PontosSemData int       `json:"point_records_without_timestamp"`
	ImportedAt    time.Time `json:"imported_at"`
}

type Publisher interface {
	PublishDatasetImported(ctx context.Context, evt DatasetImported) error
}

// New returns a RabbitMQ publisher, or a no-op one when url is empty.
func New(url string) Publisher {
	if url == "" {
		return NopPublisher{}
	}
	return &rabbitPublisher{url: url}
}

// NopPublisher drops every event. Used when RABBITMQ_URL is not set.
type NopPublisher struct{}

func (NopPublisher) PublishDatasetImported(context.Context, DatasetImported) error { return nil }

// rabbitPublisher opens a connection per event.
type rabbitPublisher struct {
	url string
}

func (p *rabbitPublisher) PublishDatasetImported(ctx context.Context, evt DatasetImported) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}
	return p.publish(ctx, QueueDatasetImported, body)
}

func (p *rabbitPublisher) publish(ctx context.Context, queue string, body []byte) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("events: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("events: open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// durable, not auto-deleted, not exclusive
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("events: declare %s: %w", queue, err)
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("events: publish %s: %w", queue, err)
	}
	log.Debug().Str("queue", queue).Int("bytes", len(body)).Msg("event published")
	return nil
}
