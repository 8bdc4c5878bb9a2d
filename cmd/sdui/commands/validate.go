package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	sdui "github.com/goliatone/go-sdui"
	"github.com/goliatone/go-sdui/pkg/layout"
	"github.com/goliatone/go-sdui/pkg/resolver"
)

// errInvalidLayout marks a layout that failed validation. Details are printed
// before it is returned.
var errInvalidLayout = errors.New("layout is invalid")

func newValidateCommand(g *globals) *cobra.Command {
	var layoutRef string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a layout without rendering it",
		Long: `Decode a layout and run the same checks the resolver applies before
rendering. Every dropped widget descriptor is listed. The command exits
non-zero when the layout cannot be decoded, has no widgets sequence, or any
descriptor is dropped. Widget types without a renderer are reported but
accepted.`,
		Example: `  sdui validate --layout layouts/home.yaml
  sdui validate --layout https://api.example.com/layouts/home`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			src := layout.ParseSource(layoutRef)
			if src == nil {
				return fmt.Errorf("invalid layout reference %q", layoutRef)
			}

			doc, err := sdui.NewLoader().Load(cmd.Context(), src)
			if err != nil {
				return err
			}
			page, err := doc.Layout()
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", src.Location(), err)
				return errInvalidLayout
			}

			engine, closer, err := g.newEngine(cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			result := engine.Validate(page)
			report(cmd, src.Location(), result)
			if result.Degraded || len(result.Diagnostics) > 0 {
				return errInvalidLayout
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&layoutRef, "layout", "l", "", "layout file path or URL")
	_ = cmd.MarkFlagRequired("layout")

	return cmd
}

func report(cmd *cobra.Command, location string, result resolver.Result) {
	w := cmd.OutOrStdout()
	for _, diag := range result.Diagnostics {
		fmt.Fprintf(w, "  - %s\n", diag)
	}
	for _, entry := range result.Plan.Entries {
		if !entry.Supported {
			fmt.Fprintf(w, "  ! widget %d: no renderer for type %q, it will be skipped\n", entry.SourceIndex, entry.Descriptor.Type)
		}
	}
	if result.Degraded {
		fmt.Fprintf(w, "%s: invalid (%v)\n", location, result.Cause)
		return
	}
	fmt.Fprintf(w, "%s: %d widgets, %d dropped\n", location, result.Plan.Len(), result.Dropped())
}
