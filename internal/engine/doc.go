// Package engine defines the boundary between the bridge and a wrapped
// line-protocol engine.
//
// An engine is anything that reads command lines and writes reply lines.
// Its algorithms are opaque to the bridge; only two capabilities matter:
//
//   - Init: a one-time, black-box initialisation (table sizing, option
//     registration, rule-set selection).
//   - Execute: interpret one command line, writing zero or more reply lines.
//
// Loop turns an Interpreter into the classic blocking protocol loop that
// reads from an input stream until a quit command, which is how the bridge
// runs engines on a dedicated goroutine. The synchronous host path calls
// Execute directly instead.
//
// Engines register a Factory under a name so that configuration can select
// one at runtime:
//
//	interp, err := engine.New("uci", engine.Settings{HashMB: 16})
package engine
