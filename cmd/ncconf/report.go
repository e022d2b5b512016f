package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/diff"
	"github.com/reoring/ncconf/importer"
	"github.com/reoring/ncconf/legacy"
)

type styles struct {
	info    lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	ok      lipgloss.Style
	dim     lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
	changed lipgloss.Style
}

func newStyles(color bool) styles {
	plain := lipgloss.NewStyle()
	if !color {
		return styles{plain, plain, plain, plain, plain, plain, plain, plain}
	}
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	return styles{
		info:    fg("12"),
		warn:    fg("11"),
		fail:    fg("9").Bold(true),
		ok:      fg("10").Bold(true),
		dim:     fg("8"),
		added:   fg("10"),
		removed: fg("9"),
		changed: fg("11"),
	}
}

func (s styles) kind(k ncconf.SuggestionKind) lipgloss.Style {
	switch k {
	case ncconf.SuggestWarning:
		return s.warn
	case ncconf.SuggestError:
		return s.fail
	}
	return s.info
}

func (s styles) change(k diff.Kind) lipgloss.Style {
	switch k {
	case diff.Added:
		return s.added
	case diff.Removed:
		return s.removed
	}
	return s.changed
}

func writeSuggestions(w io.Writer, ss []ncconf.Suggestion, st styles) {
	for _, s := range ss {
		label := st.kind(s.Kind).Render(fmt.Sprintf("%-7s", strings.ToUpper(s.Kind.String())))
		fmt.Fprintf(w, "%s %s\n", label, s.Message)
		if s.Remedy != "" {
			fmt.Fprintf(w, "        %s\n", st.dim.Render(s.Remedy))
		}
	}
}

func writeMappings(w io.Writer, ms []legacy.Mapping, st styles) {
	for _, m := range ms {
		fmt.Fprintf(w, "%s %s (%s)\n", st.info.Render("MIGRATE"), m, m.Description)
	}
}

func writeChanges(w io.Writer, cs []diff.Change, st styles) {
	for _, c := range cs {
		fmt.Fprintln(w, st.change(c.Kind).Render(diff.Format(c)))
	}
}

// writeReport prints one import report as text and returns whether it
// passed. With strict set, pin issues and advisories also fail the check.
func writeReport(w io.Writer, name string, r importer.Report, strict bool, st styles) bool {
	writeMappings(w, r.Mappings, st)
	writeSuggestions(w, r.Suggestions, st)
	for _, it := range r.PinIssues {
		fmt.Fprintf(w, "%s %s: %s\n", st.warn.Render("PIN    "), it.Path, it.Message)
	}
	writeChanges(w, r.Changes, st)

	ok := r.Success
	if strict {
		ok = ok && len(r.PinIssues) == 0 && len(r.Advisories) == 0
	}
	switch {
	case !r.Parsed():
		fmt.Fprintf(w, "%s: %s\n", name, st.fail.Render("unreadable"))
	case ok:
		fmt.Fprintf(w, "%s: %s\n", name, st.ok.Render("OK"))
	default:
		fmt.Fprintf(w, "%s: %s (%d issues, %d pin issues, %d advisories)\n", name,
			st.fail.Render("FAILED"), len(r.Issues), len(r.PinIssues), len(r.Advisories))
	}
	return ok && r.Parsed()
}

type jsonIssue struct {
	Path    string         `json:"path"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

func toJSONIssues(iss ncconf.Issues) []jsonIssue {
	out := make([]jsonIssue, len(iss))
	for i, it := range iss {
		out[i] = jsonIssue{Path: it.Path.String(), Code: it.Code, Message: it.Message, Hint: it.Hint, Params: it.Params}
	}
	return out
}

type jsonChange struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type jsonReport struct {
	File         string              `json:"file"`
	Success      bool                `json:"success"`
	Board        string              `json:"board,omitempty"`
	Mappings     []legacy.Mapping    `json:"mappings"`
	Suggestions  []ncconf.Suggestion `json:"suggestions"`
	Issues       []jsonIssue         `json:"issues"`
	Advisories   []jsonIssue         `json:"advisories"`
	Pins         json.RawMessage     `json:"pins,omitempty"`
	PinConflicts json.RawMessage     `json:"pin_conflicts,omitempty"`
	PinIssues    []jsonIssue         `json:"pin_issues"`
	Changes      []jsonChange        `json:"changes,omitempty"`
}

func toJSONReport(name string, r importer.Report) (jsonReport, error) {
	jr := jsonReport{
		File:        name,
		Success:     r.Success,
		Mappings:    r.Mappings,
		Suggestions: r.Suggestions,
		Issues:      toJSONIssues(r.Issues),
		Advisories:  toJSONIssues(r.Advisories),
		PinIssues:   toJSONIssues(r.PinIssues),
	}
	if r.Board != nil {
		jr.Board = r.Board.ID
	}
	if r.Pins != nil {
		b, err := r.Pins.MarshalJSON()
		if err != nil {
			return jr, err
		}
		jr.Pins = b
		if b, err = r.PinConflicts.MarshalJSON(); err != nil {
			return jr, err
		}
		jr.PinConflicts = b
	}
	jr.Changes = toJSONChanges(r.Changes)
	return jr, nil
}

// toJSONChanges renders values as text so non-finite numbers survive.
func toJSONChanges(cs []diff.Change) []jsonChange {
	var out []jsonChange
	for _, c := range cs {
		out = append(out, jsonChange{Path: diff.FormatPath(c.Path), Kind: c.Kind.String(), Text: diff.Format(c)})
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}
