/*
Package domain contains the core domain models shared by the router, the
compiler and the adapters.

It defines the update envelope received from the bot platform, the
conversation state identifiers and keys, the dispatch lifecycle events and
the sentinel errors. This package is kept pure and free of I/O, following
Hexagonal Architecture principles.

# Key Entities

  - Update: one incoming platform event, tagged by UpdateKind.
  - StateID: an opaque conversational state marker.
  - StateKey: the chat (or user) and optional topic thread a state belongs to.
  - DispatchEvent: what the router reports to Hooks for every update.
*/
package domain
