// Package importer runs the full intake pipeline for a configuration: parse,
// legacy transform, schema validation, cross-field checks, pin checks and an
// optional diff against a baseline.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/board"
	"github.com/reoring/ncconf/diff"
	"github.com/reoring/ncconf/document"
	"github.com/reoring/ncconf/legacy"
	"github.com/reoring/ncconf/pins"
	"github.com/reoring/ncconf/schema"
	"github.com/reoring/ncconf/source"
)

// Opt bundles import options. The zero value parses YAML (a superset of
// JSON), applies the default legacy rules and resolves the board from the
// document against the built-in table.
type Opt struct {
	Parser   source.Parser     // raw text decoder; nil means source.YAML
	Rules    []legacy.Rule     // nil means legacy.DefaultRules
	Boards   *board.Table      // nil means board.Default()
	Board    *board.Descriptor // overrides the document's board field
	Baseline document.Value    // Absent disables the diff
	MaxBytes int64             // 0 means unlimited
	FailFast bool              // stop validation at the first issue
}

// Report is the outcome of one import.
type Report struct {
	// Success is true when the input parsed and the transformed document
	// passed validation. Advisories and pin issues do not affect it.
	Success     bool
	Document    document.Value
	Mappings    []legacy.Mapping
	Suggestions []ncconf.Suggestion
	// Issues are the validation failures with Hint filled in.
	Issues ncconf.Issues
	// Advisories are cross-field domain_range findings.
	Advisories ncconf.Issues
	// Board is the descriptor pins were checked against, if any.
	Board        *board.Descriptor
	Pins         *pins.Assignments
	PinConflicts *pins.Assignments
	// PinIssues lists pin format, board and conflict problems. They are
	// reported apart from Issues so callers decide whether to block on them.
	PinIssues ncconf.Issues
	Changes   []diff.Change
}

// Parsed reports whether the raw input produced a document.
func (r Report) Parsed() bool { return !r.Document.IsAbsent() }

// Err summarizes a failed import: the parse failure message, or the
// validation issues. It is nil on success.
func (r Report) Err() error {
	switch {
	case !r.Parsed():
		for _, s := range r.Suggestions {
			if s.Kind == ncconf.SuggestError {
				return errors.New(s.Message)
			}
		}
		return errors.New("import: no document")
	case len(r.Issues) > 0:
		return r.Issues
	}
	return nil
}

func normalize(opts []Opt) Opt {
	var o Opt
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	if o.Parser == nil {
		o.Parser = source.YAML
	}
	if o.Rules == nil {
		o.Rules = legacy.DefaultRules
	}
	if o.Boards == nil {
		o.Boards = board.Default()
	}
	return o
}

// Import parses raw and runs the pipeline. A parse failure yields a report
// with a single error suggestion and no document; nothing else runs.
func Import(ctx context.Context, raw []byte, opts ...Opt) Report {
	o := normalize(opts)
	if o.MaxBytes > 0 && int64(len(raw)) > o.MaxBytes {
		return fromTransform(legacy.ParseFailure(fmt.Errorf("input is %d bytes, limit is %d", len(raw), o.MaxBytes)))
	}
	doc, err := o.Parser(raw)
	if err != nil {
		return fromTransform(legacy.ParseFailure(err))
	}
	return run(ctx, doc, o)
}

// ImportDocument runs the pipeline on an already-parsed document.
func ImportDocument(ctx context.Context, doc document.Value, opts ...Opt) Report {
	return run(ctx, doc, normalize(opts))
}

func fromTransform(res legacy.Result) Report {
	return Report{Document: res.Document, Mappings: res.Mappings, Suggestions: res.Suggestions}
}

func run(ctx context.Context, doc document.Value, o Opt) Report {
	if o.FailFast {
		ctx = ncconf.WithFailFast(ctx, true)
	}
	r := fromTransform(legacy.TransformWith(doc, o.Rules))
	out := r.Document

	if _, err := schema.Validate(ctx, out); err != nil {
		iss, ok := ncconf.AsIssues(err)
		if !ok {
			iss = ncconf.Issues{{Code: ncconf.CodeParseError, Message: err.Error(), Cause: err}}
		}
		r.Issues = legacy.Annotate(iss)
		r.Suggestions = append(r.Suggestions, legacy.Humanize(iss)...)
	}
	r.Success = len(r.Issues) == 0

	r.Advisories = schema.CheckAxes(out)
	for _, it := range r.Advisories {
		r.Suggestions = append(r.Suggestions, ncconf.Warning(it.Message, "", it.Path))
	}

	r.Board = o.Board
	if r.Board == nil {
		r.Board, r.Suggestions = resolveBoard(out, o.Boards, r.Suggestions)
	}
	r.Pins = pins.ExtractAllPinAssignments(out)
	r.PinConflicts = pins.GetPinConflicts(out)
	r.PinIssues = pins.Check(out, r.Board)

	if !o.Baseline.IsAbsent() {
		r.Changes = diff.Diff(o.Baseline, out)
	}
	return r
}

func resolveBoard(doc document.Value, t *board.Table, ss []ncconf.Suggestion) (*board.Descriptor, []ncconf.Suggestion) {
	ref, ok := doc.Get("board").AsString()
	if !ok || strings.TrimSpace(ref) == "" {
		return nil, ss
	}
	if d, ok := t.Resolve(ref); ok {
		return d, ss
	}
	return nil, append(ss, ncconf.Warning(
		fmt.Sprintf("Unknown board %q; pins were not checked against a board", ref),
		"Known boards: "+strings.Join(t.IDs(), ", "),
		ncconf.Path{"board"}))
}
