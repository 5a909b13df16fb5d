// Package todo holds the task model and the task store.
//
// A task collection is persisted as one JSON array:
//
//	[
//	  {
//	    "id": "5f0c8a52-3d4e-4a57-9a0e-0f4c1f8e2b11",
//	    "text": "Write report",
//	    "priority": "medium",
//	    "category": "work",
//	    "completed": true
//	  }
//	]
//
// Records without "id" (collections written before ids existed) are
// accepted; the store assigns ids the first time it loads them and writes
// the upgraded collection back.
//
// # Priorities
//
//   - "low"
//   - "medium"
//   - "high"
//
// # Categories
//
// Categories are an open set. "work" and "personal" are the defaults; the
// configured list is only used by the user-facing selectors.
//
// # Store semantics
//
// Every Store operation loads the whole collection from its Repository,
// mutates it, and saves it back while holding the store mutex. Nothing is
// cached between calls.
package todo
