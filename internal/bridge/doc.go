// Package bridge adapts a blocking, line-oriented protocol engine to callers
// that push commands in and pull replies out asynchronously.
//
// The engine runs its own read-execute loop on a dedicated goroutine. Two
// line queues cross the goroutine boundary:
//
//   - commands: filled by Submit (any goroutine), drained by the input shim
//     that stands in for the engine's standard input
//   - replies: filled by the output shim that stands in for the engine's
//     standard output, drained by FetchReply (any goroutine; each line is
//     delivered to exactly one fetcher)
//
// The input shim hands the engine one command line at a time and blocks on
// the command queue when it runs dry. The output shim regroups whatever the
// engine writes into lines, pushing each one when it sees '\n'.
//
// # Lifecycle
//
//	b := bridge.New(interp)
//	b.Init()                // install shims + engine init, exactly once
//	b.Start(ctx)            // engine loop on its own goroutine
//	b.Submit("uci")
//	line, _ := b.FetchReply() // "id name ...\n"
//	b.Submit("quit")
//	b.Wait()
//
// Nothing in the bridge times out. A FetchReply with no reply coming blocks
// forever; callers bound the wait with FetchReplyContext.
//
// Hosts that cannot run a blocking goroutine use Sync instead, which calls
// the interpreter directly one command at a time.
package bridge
