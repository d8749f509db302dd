// Package core runs cleaning jobs on behalf of the CLI and the HTTP server.
//
// It composes the pieces that live in other packages: tables are loaded with
// tableio, cleaned by a clean.Pipeline built from a [Plan], optionally
// persisted with store, and every run is recorded in the run log when a
// database is configured. Nothing here depends on HTTP.
//
// # Plans
//
// A [Plan] is the shared option vocabulary of the CLI flags and the HTTP form:
//
//	plan := core.Plan{TrimSpaces: true, ChangeCase: "lower", HandleMissing: "fill"}
//	res, err := svc.Clean(ctx, core.Job{Source: "people.csv", Table: t, Plan: plan})
//
// Plans are validated with struct tags before a pipeline is built; problems
// surface as *table.PolicyError.
//
// # Concurrency
//
// A single run is synchronous. Independent runs may execute in parallel up to
// the [RunLimiter] bound; each run holds its own table and shares no state.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Each
// category has a code for support reference:
//
//   - COL001, POL001, TYP001: table errors from the stages
//   - FILE001-FILE007: loading and upload problems
//   - DB001-DB004: database errors
//   - RUN001-RUN003: cancelled, timed out, busy
//   - RATE001, ERR000: throttling and the fallback
package core
