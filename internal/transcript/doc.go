// Package transcript records the traffic crossing a bridge into SQLite.
//
// A session is one engine run. Every submitted command ("in") and every
// fetched reply ("out") becomes a line stamped with a logical sequence
// number from a monotonic Clock. Ordering never uses wall-clock time, so a
// transcript reads back in exactly the order the host observed it.
//
// # Database Configuration
//
//   - WAL mode: readers (the transcript command) do not block the recorder
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: lines must reference an existing session
//
// The bridge itself holds no durable state; recording is a host concern
// wired in through bridge.WithObserver.
package transcript
