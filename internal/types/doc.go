// doc.go — Package documentation for the lap-timing value model.

// Package types provides the foundational, cheaply-copyable value types shared
// across the timing engine:
//   - Position, Velocity, Timestamp, Date — scalar domain values
//   - GpsFix — one GPS sample (position + time + date + velocity)
//   - LapData, TrackData — composite values with slice fields
//   - SessionMeta, SessionData — the persisted session shape
//   - RingBuffer[T] — a small generic newest-first buffer (the lap
//     timer's last-four-fixes window)
//
// Design Principle: Zero Dependencies
// This package imports only the Go standard library. It is safe to import from
// any other package without creating circular dependencies.
//
// Architecture Layer: Foundation
// types is the foundation layer:
//
//	Layer 1: types (zero deps) ← YOU ARE HERE
//	Layer 2: geo, track, laptimer, eventloop, async, ostimer
//	Layer 3: storage, restclient
//	Layer 4: activesession, workflow
//	Layer 5: cmd/rapid-engine
//
// This layering ensures dependency flows only downward, preventing circular imports.
package types
