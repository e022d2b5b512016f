package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/ncconf/diff"
	"github.com/reoring/ncconf/document"
	"github.com/reoring/ncconf/legacy"
	"github.com/reoring/ncconf/source"
)

var diffCmd = &cobra.Command{
	Use:   "diff BEFORE AFTER",
	Short: "Show structural changes between two configurations",
	Long: `Compare two configurations field by field. Both sides are migrated to
the canonical layout first unless --raw is set, so a legacy file and its
migrated form compare equal.

  + path: value           added
  - path: value           removed
  ~ path: old -> new      changed

With --exit-code the command exits non-zero when the files differ.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		exitCode, _ := cmd.Flags().GetBool("exit-code")
		asJSON, _ := cmd.Flags().GetBool("json")

		var docs [2]document.Value
		for i, name := range args {
			v, err := source.ReadFile(name)
			if err != nil {
				return err
			}
			if !raw {
				v = legacy.Transform(v).Document
			}
			docs[i] = v
		}

		changes := diff.Diff(docs[0], docs[1])
		w := cmd.OutOrStdout()
		if asJSON {
			if err := writeJSON(w, toJSONChanges(changes)); err != nil {
				return err
			}
		} else {
			writeChanges(w, changes, out)
			if len(changes) == 0 {
				fmt.Fprintln(w, out.dim.Render("No differences."))
			}
		}
		if exitCode && len(changes) > 0 {
			return errFailed
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().Bool("raw", false, "compare the files as written, without legacy migration")
	diffCmd.Flags().Bool("exit-code", false, "exit non-zero when the files differ")
	diffCmd.Flags().Bool("json", false, "print the changes as JSON")
}
