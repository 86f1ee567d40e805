package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/httpclient"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/catalog/internal/event"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/catalog/internal/importer"
)

type importFlags struct {
	copyImages bool
	overwrite  bool
	out        string
}

func (f *importFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.copyImages, "copy-images", false, "Copy or download images into the import archive and image storage")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite-images", false, "Replace stored images with the same name instead of numbering new ones")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output products.json (default <public-dir>/data/products.json)")
}

func newImportCmd(rt *runtime) *cobra.Command {
	var flags importFlags
	cmd := &cobra.Command{
		Use:   "import <file.csv|file.xlsx>",
		Short: "Import a spreadsheet export into products.json",
		Long: `Reads a CSV file or an Excel workbook and writes products.json.

Workbook sheets map to categories by name (jewel, cloth, drink) or by
position. Image cells may list URLs, paths relative to the file, or base
names matched against the file's directory and the storefront image dir.

Example:
  catalogctl import products.xlsx --copy-images`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := rt.runImport(cmd.Context(), args[0], flags)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Wrote %s with %d products", res.Output, res.Products)
			if res.ImportDir != "" {
				printf(cmd.OutOrStdout(), " (%d images, archive %s)", res.Images, res.ImportDir)
			}
			printf(cmd.OutOrStdout(), "\n")
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (rt *runtime) newImporter() *importer.Importer {
	client := httpclient.NewCircuitBreakerClient(
		httpclient.New(rt.cfg.HTTP),
		httpclient.DefaultCircuitBreakerConfig("image-download"),
		rt.logger,
	)
	return importer.New(rt.storage(), client, rt.logger)
}

func (rt *runtime) importOptions(flags importFlags) importer.Options {
	out := flags.out
	if out == "" {
		out = rt.cfg.OutputPath()
	}
	return importer.Options{
		Output:          out,
		PublicDir:       rt.cfg.PublicDir,
		ImagesDir:       rt.cfg.ImagesDir(),
		ImportsDir:      rt.cfg.ImportsDir,
		CopyImages:      flags.copyImages,
		OverwriteImages: flags.overwrite,
		Concurrency:     rt.cfg.DownloadConcurrency,
	}
}

func (rt *runtime) runImport(ctx context.Context, file string, flags importFlags) (*importer.Result, error) {
	start := time.Now()
	res, err := rt.newImporter().Run(ctx, file, rt.importOptions(flags))
	if err != nil {
		return nil, err
	}

	rt.logger.DebugContext(ctx, "import finished",
		slog.String("file", file),
		slog.Duration("duration", time.Since(start)),
	)
	rt.announce(ctx, event.CatalogImportedData{
		Products:  res.Products,
		Images:    res.Images,
		Output:    res.Output,
		ImportDir: res.ImportDir,
	})
	return res, nil
}
