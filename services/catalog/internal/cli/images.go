package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/catalog/internal/curate"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/catalog/internal/images"
)

func newPlaceholdersCmd(rt *runtime) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "placeholders",
		Short: "Write SVG placeholder product and hero images",
		Long: `Writes J1..Jn, C1..Cn and D1..Dn product placeholders in category colours
plus a hero banner per category to the configured image storage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			written, err := images.WritePlaceholders(cmd.Context(), rt.storage(), count)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Wrote %d placeholder images\n", len(written))
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "Placeholders per category")
	return cmd
}

func newAttachImagesCmd(rt *runtime) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "attach-images",
		Short: "Point products at every matching file in the image dir",
		Long: `For each product, finds files in <public-dir>/data/images named after its
hero image (C1.jpg, C1_2.jpg, C1-back.png, ...) and rewrites its gallery.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				file = rt.cfg.OutputPath()
			}
			products, err := catalog.Load(file)
			if err != nil {
				return err
			}

			store := images.NewLocalStorage(rt.cfg.ImagesDir(), images.DefaultURLPrefix)
			files, err := store.List()
			if err != nil {
				return err
			}

			changed := curate.Attach(products, files, store.URL)
			if changed == 0 {
				printf(cmd.OutOrStdout(), "No changes required\n")
				return nil
			}
			if err := catalog.Save(file, products); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Updated images of %d products in %s\n", changed, file)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Catalog to update (default <public-dir>/data/products.json)")
	return cmd
}

func newPruneImagesCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "prune-images [products.json...]",
		Short: "Keep only the hero image of every product",
		Long: `Trims each product's gallery to its first image. With no arguments the
storefront catalog is pruned; missing files are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{rt.cfg.OutputPath()}
			}

			var errs []error
			for _, file := range args {
				if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
					rt.logger.Warn("skipping missing catalog", slog.String("file", file))
					continue
				}
				products, err := catalog.Load(file)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				cleaned := curate.Prune(products)
				if err := catalog.Save(file, products); err != nil {
					errs = append(errs, err)
					continue
				}
				printf(cmd.OutOrStdout(), "%s: pruned %d products\n", file, cleaned)
			}
			return errors.Join(errs...)
		},
	}
}
