package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/kafka"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/logger"
)

// TopicCatalogImported announces that products.json was rewritten.
var TopicCatalogImported = pkgkafka.Topic("catalog", "imported")

// AggregateTypeCatalog is the aggregate type of catalog events.
const AggregateTypeCatalog = "catalog"

// SourceCatalogCtl identifies events originating from catalogctl.
const SourceCatalogCtl = "catalogctl"

// CatalogImportedData is the payload of a catalog.imported event.
type CatalogImportedData struct {
	Products  int    `json:"products"`
	Images    int    `json:"images"`
	Output    string `json:"output"`
	ImportDir string `json:"import_dir,omitempty"`
}

// Producer publishes catalog events to Kafka.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer for catalogctl.
func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishImported publishes a catalog.imported event keyed by the output path.
func (p *Producer) PublishImported(ctx context.Context, data CatalogImportedData) error {
	event, err := pkgkafka.NewEvent(TopicCatalogImported, data.Output, AggregateTypeCatalog, SourceCatalogCtl, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", TopicCatalogImported, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, TopicCatalogImported, event); err != nil {
		return fmt.Errorf("publish %s event: %w", TopicCatalogImported, err)
	}

	p.logger.InfoContext(ctx, "published catalog.imported event",
		slog.String("event_id", event.EventID),
		slog.Int("products", data.Products),
	)
	return nil
}
