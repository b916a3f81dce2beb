package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/spyglass/internal/histogram"
	"github.com/crimson-sun/spyglass/internal/model"
	"github.com/crimson-sun/spyglass/internal/output"
	"github.com/crimson-sun/spyglass/pkg/spyglass"
)

var (
	searchLimit     int
	searchContext   int
	searchGitLab    bool
	searchCrossNode bool
	searchNodeID    string
	searchHistogram bool
	histogramField  string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a streaming search across the archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "result limit (0 = server default)")
	searchCmd.Flags().IntVar(&searchContext, "context", 0, "lines of context around each match")
	searchCmd.Flags().BoolVar(&searchGitLab, "gitlab-only", false, "restrict to GitLab-generated logs")
	searchCmd.Flags().BoolVar(&searchCrossNode, "cross-node", false, "fan out across all nodes")
	searchCmd.Flags().StringVar(&searchNodeID, "node", "", "restrict to one node")
	searchCmd.Flags().BoolVar(&searchHistogram, "histogram", false, "print a time histogram of the results")
	searchCmd.Flags().StringVar(&histogramField, "time-field", "", "preferred timestamp field for the histogram")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	set, err := c.SearchWithOptions(context.Background(), args[0], spyglass.SearchOptions{
		Limit:        searchLimit,
		ContextLines: searchContext,
		GitLabOnly:   searchGitLab,
		CrossNode:    searchCrossNode,
		NodeID:       searchNodeID,
	})
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(set)
	}

	r := output.NewRenderer(os.Stdout, true)
	results := make([]model.SearchResult, len(set.Results))
	for i, res := range set.Results {
		results[i] = model.SearchResult{
			File:       res.File,
			LineNumber: res.LineNumber,
			Content:    res.Content,
			NodeName:   res.NodeName,
		}
		if res.Fields != nil {
			results[i].Match = &model.MatchDetails{ParsedFields: res.Fields}
		}
	}
	r.Results(results, set.Total, set.Truncated)

	if searchHistogram {
		b := histogram.New(histogramField)
		r.Histogram(b.Build(results))
	}
	return nil
}
