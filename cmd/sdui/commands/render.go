package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	sdui "github.com/goliatone/go-sdui"
	"github.com/goliatone/go-sdui/internal/prompt"
	"github.com/goliatone/go-sdui/pkg/layout"
	"github.com/goliatone/go-sdui/pkg/provider"
	"github.com/goliatone/go-sdui/pkg/server"
)

func newRenderCommand(g *globals) *cobra.Command {
	var (
		layoutRef string
		page      string
		dir       string
		catalog   string
		out       string
		asJSON    bool
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Resolve and render one page",
		Long: `Resolve a page layout once, wait for data backed widgets to settle,
and print the composed HTML page (or the rendered units as JSON).

Without --layout the page is looked up in the layouts directory. When no
page is given either, the available pages are offered in a prompt.`,
		Example: `  # Render a layout file
  sdui render --layout layouts/home.yaml --catalog catalog.yaml

  # Render a page from a directory as JSON
  sdui render --dir layouts --page deals --json

  # Pick a page interactively and write it to a file
  sdui render --dir layouts --out home.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.Layouts.Dir = dir
				cfg.Layouts.URL = ""
			}
			if catalog != "" {
				cfg.Catalog.Fixture = catalog
			}

			var options []sdui.Option
			if layoutRef != "" {
				p, err := staticProvider(layoutRef, cfg.Layouts.Timeout)
				if err != nil {
					return err
				}
				options = append(options, sdui.WithProvider(p))
				if page == "" {
					page = pageFromRef(layoutRef)
				}
			}

			engine, closer, err := g.newEngine(cfg, options...)
			if err != nil {
				return err
			}
			defer closer.Close()

			if page == "" {
				pages, err := engine.Pages()
				if err != nil {
					return err
				}
				page, err = prompt.PickPage(ctx, g.prompt, pages, "home")
				if err != nil {
					return fmt.Errorf("choose page: %w", err)
				}
			}

			result, err := engine.RenderPage(ctx, page)
			if err != nil {
				return err
			}
			log.Debug().
				Str("page", page).
				Str("phase", string(result.State.Phase)).
				Int("units", len(result.State.Units)).
				Msg("page rendered")

			var payload []byte
			if asJSON {
				payload, err = json.MarshalIndent(server.NewStateView(result.State), "", "  ")
				if err != nil {
					return err
				}
				payload = append(payload, '\n')
			} else {
				payload = []byte(result.HTML)
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(payload)
				return err
			}
			if !force {
				if _, err := os.Stat(out); err == nil {
					ok, err := prompt.ConfirmOverwrite(ctx, g.prompt, out)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("%s exists, not overwritten", out)
					}
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}
			if err := os.WriteFile(out, payload, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Page %s (%s) written to %s\n", page, result.State.Phase, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&layoutRef, "layout", "l", "", "layout file path or URL")
	cmd.Flags().StringVarP(&page, "page", "p", "", "page type to render")
	cmd.Flags().StringVar(&dir, "dir", "", "layouts directory (overrides config)")
	cmd.Flags().StringVar(&catalog, "catalog", "", "catalog fixture for product and category widgets")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rendered units as JSON instead of HTML")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite the output file without asking")

	return cmd
}

// staticProvider serves the layout at ref for every page.
func staticProvider(ref string, timeout time.Duration) (*provider.SourceProvider, error) {
	src := layout.ParseSource(ref)
	if src == nil {
		return nil, fmt.Errorf("invalid layout reference %q", ref)
	}
	return provider.NewStatic(sdui.NewLoader(provider.WithHTTPFallback(timeout)), src)
}

// pageFromRef names a page after the layout file: layouts/deals.json renders
// as page "deals".
func pageFromRef(ref string) string {
	name := ref
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && u.Host != "" {
		name = u.Path
	}
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		return "home"
	}
	return base
}
