// Package harness runs scripted conversations against an engine through a
// real bridge and checks the replies.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: uci_handshake
//	description: "Engine answers the UCI handshake"
//	engine: uci
//	settings:
//	  hash_mb: 32
//	commands:
//	  - uci
//	  - isready
//	  - quit
//	timeout: 2s
//	assertions:
//	  - type: reply_contains
//	    text: uciok
//	  - type: reply_order
//	    lines: [uciok, readyok]
//
// Every command is submitted up front; replies are fetched until the
// engine terminates (its loop returns after "quit") or the timeout elapses.
// A scenario that never quits therefore fails with a timeout.
//
// # Assertion Types
//
//   - reply_contains: some reply contains text as a substring
//   - reply_equals: the replies are exactly lines
//   - reply_order: lines appear as replies in this order, gaps allowed
//   - reply_count: exactly count replies equal text
//
// # Deterministic Traces
//
// Commands are stamped 1..N by a testutil.StepClock before any
// reply is fetched, and replies continue the sequence in fetch order, so a
// trace is identical across runs and can be compared to a golden file with
// RunWithGolden.
package harness
