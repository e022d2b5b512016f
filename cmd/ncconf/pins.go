package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/reoring/ncconf/board"
	"github.com/reoring/ncconf/pins"
)

var pinsCmd = &cobra.Command{
	Use:   "pins FILE",
	Short: "Show pin assignments, conflicts and free board pins",
	Long: `List every pin claimed by FILE (after legacy migration) with the fields
claiming it and its status on the board.

  --free               also list the board pins no field claims
  --check FIELD=PIN    test a prospective assignment, e.g.
                       --check io.flood_pin=gpio.25 (repeatable)

Exits non-zero when any pin problem is found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		free, _ := cmd.Flags().GetBool("free")
		checks, _ := cmd.Flags().GetStringArray("check")

		o, err := importOpt()
		if err != nil {
			return err
		}
		r, err := importFile(cmd, args[0], o)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if !r.Parsed() {
			writeSuggestions(w, r.Suggestions, out)
			return errFailed
		}
		if r.Board != nil {
			fmt.Fprintf(w, "Board: %s (%s)\n", r.Board.Name, r.Board.ID)
		} else {
			fmt.Fprintln(w, out.dim.Render("No board selected; only formats and conflicts are checked."))
		}

		t := newTable("PIN", "FIELD", "ROLE", "STATUS")
		for pin, fields := range r.Pins.All() {
			st := pins.GetPinStatus(pin, r.Document, r.Board)
			status := "ok"
			if !st.IsValid {
				status = strings.Join(st.Errors, "; ")
			}
			for _, f := range fields {
				t.Row(pin, f, pins.FieldRole(f).String(), status)
			}
		}
		fmt.Fprintln(w, t.Render())

		if free && r.Board != nil {
			fmt.Fprintln(w, "Unassigned pins:")
			fmt.Fprintln(w, boardPinTable(pins.UnassignedPins(r.Document, r.Board)).Render())
		}

		bad := len(r.PinIssues) > 0
		for _, c := range checks {
			field, pin, ok := strings.Cut(c, "=")
			if !ok {
				return fmt.Errorf("--check %q: want FIELD=PIN", c)
			}
			valid, errs := pins.IsValidPinAssignment(pin, field, r.Document, r.Board)
			st := pins.GetPinStatus(pin, r.Document, r.Board)
			verdict := out.ok.Render("ok")
			if !valid {
				verdict = out.fail.Render("rejected")
				bad = true
			}
			fmt.Fprintf(w, "%s = %s: %s  %s\n", field, pin, verdict, out.dim.Render(pins.Describe(st, field)))
			for _, e := range errs {
				fmt.Fprintf(w, "    %s\n", e)
			}
		}

		for _, it := range r.PinIssues {
			fmt.Fprintf(w, "%s %s: %s\n", out.warn.Render(it.Code), it.Path, it.Message)
		}
		if bad {
			return errFailed
		}
		return nil
	},
}

func init() {
	pinsCmd.Flags().Bool("free", false, "list board pins that no field claims")
	pinsCmd.Flags().StringArray("check", nil, "check a prospective FIELD=PIN assignment")
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return out.dim.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func boardPinTable(ps []board.Pin) *table.Table {
	t := newTable("PIN", "NAME", "CAPABILITIES", "NOTES")
	for _, p := range ps {
		c := p.Capabilities
		labels := c.Labels()
		switch {
		case c.Input && !c.Output:
			labels = append(labels, "input-only")
		case c.Output && !c.Input:
			labels = append(labels, "output-only")
		}
		t.Row(p.ID(), p.Name, strings.Join(labels, ", "), c.Notes)
	}
	return t
}
