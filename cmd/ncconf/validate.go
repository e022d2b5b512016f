package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/ncconf/importer"
	"github.com/reoring/ncconf/source"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Migrate and validate configuration files",
	Long: `Run each file through the import pipeline: legacy layouts are rewritten,
the result is validated, and pins are checked for conflicts and against the
board. Use "-" to read standard input (parsed as YAML).

The command exits non-zero when any file fails validation. With --strict,
pin issues and cross-field advisories also count as failures.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")
		asJSON, _ := cmd.Flags().GetBool("json")
		baseline, _ := cmd.Flags().GetString("baseline")

		o, err := importOpt()
		if err != nil {
			return err
		}
		if baseline != "" {
			if o.Baseline, err = source.ReadFile(baseline); err != nil {
				return err
			}
		}

		w := cmd.OutOrStdout()
		failed := false
		var reports []jsonReport
		for _, name := range args {
			r, err := importFile(cmd, name, o)
			if err != nil {
				return err
			}
			if asJSON {
				jr, err := toJSONReport(name, r)
				if err != nil {
					return err
				}
				reports = append(reports, jr)
				if !r.Success || (strict && (len(r.PinIssues) > 0 || len(r.Advisories) > 0)) {
					failed = true
				}
				continue
			}
			if !writeReport(w, name, r, strict, out) {
				failed = true
			}
		}
		if asJSON {
			if err := writeJSON(w, reports); err != nil {
				return err
			}
		}
		if failed {
			return errFailed
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().Bool("strict", false, "treat pin issues and advisories as failures")
	validateCmd.Flags().Bool("json", false, "print machine-readable reports")
	validateCmd.Flags().String("baseline", "", "diff each file against this configuration")
}

// importFile reads name ("-" for stdin) and imports it with the parser its
// extension selects.
func importFile(cmd *cobra.Command, name string, o importer.Opt) (importer.Report, error) {
	var (
		raw []byte
		err error
	)
	if name == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(name)
		o.Parser = source.ForFile(name).Parse
	}
	if err != nil {
		return importer.Report{}, fmt.Errorf("reading %s: %w", name, err)
	}
	logger.Printf("importing %s (%d bytes)", name, len(raw))
	return importer.Import(cmd.Context(), raw, o), nil
}
