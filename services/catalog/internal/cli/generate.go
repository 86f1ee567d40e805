package cli

import (
	"github.com/spf13/cobra"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/catalog"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/catalog/internal/event"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/catalog/internal/generator"
)

func newGenerateCmd(rt *runtime) *cobra.Command {
	var (
		preset      string
		presetsFile string
		out         string
		list        bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a demo catalog from a preset",
		Long: `Writes products.json from a named preset. Built-in presets:

  prefixed       J1-J10, C1-C10 and D1-D10 placeholders per category
  consistent     every category drawn from the C1-C30 image range
  clothing-only  ten clothing items

--presets loads additional recipes from a YAML file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			presets, err := generator.Builtin()
			if err != nil {
				return err
			}
			if presetsFile != "" {
				custom, err := generator.LoadFile(presetsFile)
				if err != nil {
					return err
				}
				for name, p := range custom {
					presets[name] = p
				}
			}

			if list {
				for _, name := range presets.Names() {
					printf(cmd.OutOrStdout(), "%-16s %s\n", name, presets[name].Description)
				}
				return nil
			}

			products, err := presets.Generate(preset)
			if err != nil {
				return err
			}
			if err := catalog.Validate(products); err != nil {
				return err
			}
			if out == "" {
				out = rt.cfg.OutputPath()
			}
			if err := catalog.Save(out, products); err != nil {
				return err
			}

			rt.announce(cmd.Context(), event.CatalogImportedData{Products: len(products), Output: out})
			printf(cmd.OutOrStdout(), "Wrote %s with %d products (preset %s)\n", out, len(products), preset)
			return nil
		},
	}
	cmd.Flags().StringVarP(&preset, "preset", "p", generator.DefaultPreset, "Preset to generate")
	cmd.Flags().StringVar(&presetsFile, "presets", "", "YAML file with extra presets")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output products.json (default <public-dir>/data/products.json)")
	cmd.Flags().BoolVar(&list, "list", false, "List available presets and exit")
	return cmd
}
