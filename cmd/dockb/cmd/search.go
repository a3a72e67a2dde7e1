package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	kberrors "github.com/dockb/dockb/internal/errors"
	"github.com/dockb/dockb/internal/output"
	"github.com/dockb/dockb/internal/search"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	category    string
	subcategory string
	content     bool
	limit       int
	format      string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the knowledge base",
		Long: `Search indexed documents by full text and metadata.

An empty query or "*" lists every document matching the filters.

Examples:
  dockb search "error handling"
  dockb search "*" --category project-spec
  dockb search "http client" --subcategory go --content
  dockb search "api" --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd, query, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "Filter by category (reference-doc, project-spec)")
	cmd.Flags().StringVarP(&opts.subcategory, "subcategory", "s", "", "Filter by language or project name")
	cmd.Flags().BoolVar(&opts.content, "content", false, "Include document bodies and match excerpts")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (0 = unlimited)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	service, _, cleanup, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := service.Search(cmd.Context(), query, search.Options{
		Category:       opts.category,
		Subcategory:    opts.subcategory,
		IncludeContent: opts.content,
		Limit:          opts.limit,
	})
	if err != nil {
		if opts.format == "json" {
			fmt.Fprintln(os.Stderr, kberrors.FormatJSON(err))
		}
		return err
	}

	switch opts.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "text":
		fmt.Print(output.NewFormatter().SearchResults(results))
		return nil
	default:
		return fmt.Errorf("unknown format: %s (supported: text, json)", opts.format)
	}
}
