package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields [partial]",
	Short: "Suggest searchable field names",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFields,
}

var valuesCmd = &cobra.Command{
	Use:   "values <field> [partial]",
	Short: "Suggest values for a field",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runValues,
}

func init() {
	fieldsCmd.AddCommand(valuesCmd)
	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	partial := ""
	if len(args) > 0 {
		partial = args[0]
	}
	names, err := c.Fields(context.Background(), partial)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(names)
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runValues(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	partial := ""
	if len(args) > 1 {
		partial = args[1]
	}
	values, err := c.Values(context.Background(), args[0], partial)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(values)
	}
	for _, v := range values {
		fmt.Println(v)
	}
	return nil
}
