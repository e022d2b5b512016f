package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reoring/ncconf/preset"
	"github.com/reoring/ncconf/schema"
	"github.com/reoring/ncconf/source"
)

var presetsCmd = &cobra.Command{
	Use:   "presets [ID]",
	Short: "List built-in machine presets or export one",
	Long: `Without arguments, list the built-in presets (optionally filtered by
--category). With a preset id, print its configuration as commented YAML, or
write it to the file given with -o.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		output, _ := cmd.Flags().GetString("output")
		w := cmd.OutOrStdout()

		if len(args) == 0 {
			list := preset.All()
			if category != "" {
				list = preset.ByCategory(preset.Category(strings.ToLower(category)))
			}
			t := newTable("ID", "NAME", "CATEGORY", "TAGS")
			for _, p := range list {
				t.Row(p.ID, p.Name, string(p.Category), strings.Join(p.Tags, ", "))
			}
			fmt.Fprintln(w, t.Render())
			return nil
		}

		p, ok := preset.Get(args[0])
		if !ok {
			ids := make([]string, 0)
			for _, p := range preset.All() {
				ids = append(ids, p.ID)
			}
			return fmt.Errorf("unknown preset %q (known: %s)", args[0], strings.Join(ids, ", "))
		}
		data, err := source.ForFile(output).Encode(p.Config, source.WithComments(schema.CommentFor))
		if err != nil {
			return err
		}
		if output == "" {
			fmt.Fprintf(w, "# %s: %s\n", p.Name, p.Description)
			_, err = w.Write(data)
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return err
		}
		logger.Printf("wrote preset %s to %s", p.ID, output)
		return nil
	},
}

func init() {
	presetsCmd.Flags().String("category", "", "only list presets of this category (router, laser, plasma, mill, other)")
	presetsCmd.Flags().StringP("output", "o", "", "write the preset configuration to this file")
}
