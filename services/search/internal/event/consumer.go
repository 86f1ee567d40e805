package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/kafka"
)

// TopicCatalogImported carries catalog.imported events from catalogctl.
var TopicCatalogImported = pkgkafka.Topic("catalog", "imported")

// CatalogImportedData is the payload of a catalog.imported event.
type CatalogImportedData struct {
	Products  int    `json:"products"`
	Images    int    `json:"images"`
	Output    string `json:"output"`
	ImportDir string `json:"import_dir,omitempty"`
}

// Refresher is the part of the catalog refresher the consumer drives.
type Refresher interface {
	Trigger()
}

// Consumer turns catalog events into refreshes of the search snapshot.
type Consumer struct {
	refresher Refresher
	logger    *slog.Logger
}

// NewConsumer creates a new event consumer for the search service.
func NewConsumer(refresher Refresher, logger *slog.Logger) *Consumer {
	return &Consumer{
		refresher: refresher,
		logger:    logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicCatalogImported:
		return c.handleCatalogImported(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *Consumer) handleCatalogImported(ctx context.Context, event *pkgkafka.Event) error {
	var data CatalogImportedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal catalog.imported data: %w", err)
	}

	c.refresher.Trigger()

	c.logger.InfoContext(ctx, "catalog refresh triggered by import",
		slog.String("event_id", event.EventID),
		slog.Int("products", data.Products),
		slog.String("output", data.Output),
	)
	return nil
}
