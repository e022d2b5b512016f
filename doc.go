package ncconf

// Package ncconf provides the shared vocabulary for the configuration engine:
//
// - A stable error model via Issues (Path, code, message, hint)
// - Path values (ordered keys/indices) rendered as dotted strings or JSON Pointers
// - Suggestion values (info/warning/error advisories) produced during import
//
// Design policy:
// - Keep only shared types in the root package; components live in subpackages.
// - document/ holds the tagged-union Document, schema/ the canonical validator,
//   legacy/ the layout migrator, pins/ the pin registry, diff/ the structural diff,
//   board/ the read-only board table and importer/ the end-to-end pipeline.
// - Every operation is pure: inputs are never mutated, results are new values.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	raw, _ := os.ReadFile("config.yaml")
//	rep := importer.Import(ctx, raw, importer.Opt{Board: b, Baseline: baseline})
//	if !rep.Success { ... rep.Issues, rep.Suggestions ... }
//	for pin, fields := range rep.PinConflicts.All() { ... }
//
//	changes := diff.Diff(baseline, rep.Document)
//
// The ncconf command under cmd/ncconf wraps the same pipeline.
