package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/spyglass/internal/bus"
	"github.com/crimson-sun/spyglass/internal/config"
	"github.com/crimson-sun/spyglass/internal/logging"
	"github.com/crimson-sun/spyglass/internal/model"
	"github.com/crimson-sun/spyglass/internal/output"
	"github.com/crimson-sun/spyglass/internal/source"
	_ "github.com/crimson-sun/spyglass/internal/source/httpapi"
	"github.com/crimson-sun/spyglass/internal/tui"
	"github.com/crimson-sun/spyglass/internal/viewer"
)

var (
	viewOffset int
	viewLines  int
	viewFollow bool
	viewSearch string
	viewSev    string
)

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Read lines from a file, or page through it interactively",
	Long: `View prints a line range from a file. Small files load whole; large
files fetch only the requested window. With --follow, opens a full-screen
pager instead; press / inside it to search.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().IntVar(&viewOffset, "offset", 0, "first line to print (0-based)")
	viewCmd.Flags().IntVarP(&viewLines, "lines", "n", 50, "number of lines to print")
	viewCmd.Flags().BoolVarP(&viewFollow, "follow", "f", false, "open the interactive pager")
	viewCmd.Flags().StringVarP(&viewSearch, "search", "s", "", "only lines matching this term")
	viewCmd.Flags().StringVar(&viewSev, "severity", "", "only lines at this severity: info, warning, error")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if url := resolveEndpoint(); url != "" {
		cfg.Source.Endpoint = url
	}
	if tok := resolveToken(); tok != "" {
		cfg.Source.APIKey = tok
	}

	ctor, err := source.Get(cfg.Source.Provider)
	if err != nil {
		return err
	}
	src := ctor(cfg.Source)

	b := bus.New()
	defer b.Close()

	ctx := context.Background()
	file := args[0]
	filter := viewer.Filter{Search: viewSearch, Severity: model.Severity(viewSev)}

	meta, err := src.Metadata(ctx, file)
	if err != nil {
		meta = model.FileMetadata{}
	}

	if viewFollow {
		logging.Silence()
		v := viewer.Open(ctx, src, cfg.Viewer, b, file, meta, filter)
		return tui.Run(ctx, src, cfg, b, file, v)
	}

	v := viewer.Open(ctx, src, cfg.Viewer, b, file, meta, filter)
	defer v.Close()

	vp := viewer.Viewport{ScrollOffset: viewOffset, Height: viewLines, RowHeight: 1}
	lines := v.Lines(ctx, vp)

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(lines)
	}

	r := output.NewRenderer(os.Stdout, true)
	if adv := v.State().Advisory; adv != "" {
		r.Advisory(adv)
	}
	r.Lines(lines)
	return nil
}
