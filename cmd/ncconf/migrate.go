package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/ncconf/schema"
	"github.com/reoring/ncconf/source"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate FILE",
	Short: "Rewrite a legacy configuration into the canonical layout",
	Long: `Rewrite FILE into the canonical layout and print it, or write it to the
file given with -o. The output format follows -o's extension or --format
(yaml by default). YAML output carries a comment per known field unless
--comments=false is set.

Applied rewrites and advisories go to standard error. The document is written
even when it fails validation; the exit status reports the failure.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		comments, _ := cmd.Flags().GetBool("comments")

		o, err := importOpt()
		if err != nil {
			return err
		}
		r, err := importFile(cmd, args[0], o)
		if err != nil {
			return err
		}
		if !r.Parsed() {
			writeSuggestions(cmd.ErrOrStderr(), r.Suggestions, out)
			return errFailed
		}

		drv, ok := source.GetDriver(format)
		if format == "" {
			drv, ok = source.ForFile(output), true
		}
		if !ok || drv.Encode == nil {
			return fmt.Errorf("unknown format %q (known: %v)", format, source.DriverNames())
		}
		var opts []source.EncodeOption
		if comments {
			opts = append(opts, source.WithComments(schema.CommentFor))
		}
		data, err := drv.Encode(r.Document, opts...)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", drv.Name, err)
		}

		errw := cmd.ErrOrStderr()
		writeMappings(errw, r.Mappings, out)
		writeSuggestions(errw, r.Suggestions, out)
		logger.Printf("migrated %s: %d rewrites", args[0], len(r.Mappings))

		if output == "" {
			_, err = cmd.OutOrStdout().Write(data)
		} else {
			err = os.WriteFile(output, data, 0o644)
		}
		if err != nil {
			return err
		}
		if !r.Success {
			return errFailed
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringP("output", "o", "", "write the migrated document to this file")
	migrateCmd.Flags().String("format", "", "output format (json, yaml)")
	migrateCmd.Flags().Bool("comments", true, "annotate YAML output with field descriptions")
}
