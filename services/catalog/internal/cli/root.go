// Package cli wires catalogctl's cobra commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	pkgkafka "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/kafka"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/logger"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/catalog/internal/config"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/catalog/internal/event"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/catalog/internal/images"
)

// runtime carries what every subcommand needs once flags and env are parsed.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger

	envFile   string
	publicDir string
	verbose   bool
}

// NewRootCmd builds the catalogctl command tree.
func NewRootCmd() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Maintain the storefront catalog: import spreadsheets, generate demo data, curate images",
		Long: `catalogctl writes the products.json the storefront and search service read.

Settings come from CATALOG_* environment variables; a .env file in the
current directory is loaded first when present.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&rt.envFile, "env-file", "", "Load environment from this file instead of ./.env")
	root.PersistentFlags().StringVar(&rt.publicDir, "public-dir", "", "Storefront static root (overrides CATALOG_PUBLIC_DIR)")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newImportCmd(rt),
		newWatchCmd(rt),
		newGenerateCmd(rt),
		newPlaceholdersCmd(rt),
		newAttachImagesCmd(rt),
		newPruneImagesCmd(rt),
	)
	return root
}

// Execute runs catalogctl with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (rt *runtime) init(cmd *cobra.Command) error {
	if rt.envFile != "" {
		if err := godotenv.Load(rt.envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else {
		// A missing .env is normal.
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if rt.publicDir != "" {
		cfg.PublicDir = rt.publicDir
	}
	if rt.verbose {
		cfg.LogLevel = "debug"
	}

	rt.cfg = cfg
	rt.logger = logger.NewCLI(cmd.ErrOrStderr(), cfg.LogLevel)
	return nil
}

// storage returns the configured image backend.
func (rt *runtime) storage() images.Storage {
	if rt.cfg.Storage == config.StorageS3 {
		return images.NewS3Storage(images.NewS3Client(rt.cfg.S3), rt.cfg.S3)
	}
	return images.NewLocalStorage(rt.cfg.ImagesDir(), images.DefaultURLPrefix)
}

// announce publishes catalog.imported when Kafka is configured. A failure
// is logged; the catalog on disk is already up to date.
func (rt *runtime) announce(ctx context.Context, data event.CatalogImportedData) {
	if len(rt.cfg.KafkaBrokers) == 0 {
		return
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(rt.cfg.KafkaBrokers), rt.logger)
	defer func() {
		if err := producer.Close(); err != nil {
			rt.logger.Warn("failed to close kafka producer", slog.String("error", err.Error()))
		}
	}()

	if err := event.NewProducer(producer, rt.logger).PublishImported(ctx, data); err != nil {
		rt.logger.ErrorContext(ctx, "failed to announce catalog update", slog.String("error", err.Error()))
	}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
