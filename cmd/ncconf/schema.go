package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/ncconf/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configuration schema as JSON Schema",
	Long: `Print the canonical configuration schema as a JSON Schema (draft 2020-12)
document, for editors that offer completion and inline validation of YAML
files. Field descriptions match the comments written by "migrate".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		output, _ := cmd.Flags().GetString("output")
		s, err := schema.CanonicalJSONSchema()
		if err != nil {
			return err
		}
		if output == "" {
			return writeJSON(cmd.OutOrStdout(), s)
		}
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		return writeJSON(f, s)
	},
}

func init() {
	schemaCmd.Flags().StringP("output", "o", "", "write the schema to this file")
}
