package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/spyglass/pkg/spyglass"
)

var (
	exportSearch   string
	exportSeverity string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Download filtered file content",
	Long: `Export streams a file's content, optionally filtered by search term
and severity. When the archive has no export endpoint, the direct
download URL is printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportSearch, "search", "s", "", "filter lines by search term")
	exportCmd.Flags().StringVar(&exportSeverity, "severity", "", "filter lines by severity: info, warning, error")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	rc, err := c.Export(context.Background(), args[0], exportSearch, exportSeverity)
	if errors.Is(err, spyglass.ErrExportUnavailable) {
		fmt.Fprintf(os.Stderr, "export endpoint unavailable, download directly:\n")
		fmt.Println(c.RawURL(args[0]))
		return nil
	}
	if err != nil {
		return err
	}
	defer rc.Close()

	dst := io.Writer(os.Stdout)
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		dst = f
	}

	_, err = io.Copy(dst, rc)
	return err
}
