/*
Package domain contains the core models of the intake bot.

It defines the entities the conversation state machine works on. This package is kept
pure and free of external dependencies like I/O or persistence.

# Key Entities

  - State: The step of the intake dialog a sender is currently on.
  - Session: The in-progress, per-sender answers collected so far.
  - Fields: The answers a single transition adds to a Session.
  - Record: The flat row emitted once a Session completes.
  - Catalog: The outgoing SMS text for each MessageKey.
*/
package domain
