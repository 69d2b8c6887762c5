// Package state provides the normalized, thread-safe state container shared by
// hydration, user actions and the realtime reconciler.
//
// # Overview
//
// Each domain (community, invitation, user-library) owns a store made of
// id-keyed tables plus a Status carrying the loading flag and the last error.
// The container has no business logic and performs no I/O; it is the single
// writable surface for every other component.
//
// # Architecture
//
//	Fetch-and-Hydrate ──SetAll──────────┐
//	Action runner ──────Patch/RemoveOne─┼──> Table[T] / Status ──> Snapshot() ──> UI
//	Realtime reconciler ─InsertIfAbsent─┘
//	                     RemoveIf / Merge
//
// Writers never read a table and then write it in two steps. Conditional
// updates the reconciler needs ("insert unless present", "remove unless
// accepted") are setters of their own and run inside one critical section.
//
// # Core Types
//
// Table[T]:
//   - Entities keyed by their stable natural id (Keyed.Key)
//   - Insertion order is kept for stable rendering
//   - Upserting the same entity twice is a no-op the second time
//
// Status:
//   - Loading flag and error message ("" means no error)
//
// CommunityStore, InvitationStore, LibraryStore:
//   - One per domain, each with Snapshot() and Reset()
//
// # Concurrency Model
//
// Every table and status has its own sync.RWMutex. Realtime handlers run on the
// socket read goroutine while actions run on caller goroutines; the locks keep
// each setter atomic. No ordering is imposed across sources: a SetAll from a
// slow fetch that lands after a realtime patch replaces it.
//
// # Defensive Copying
//
// All() and Snapshot() return copies, so callers may keep or mutate them
// without affecting stored state. Stored entities are plain values.
//
// # Testing Considerations
//
// The zero value of every type is ready to use:
//
//	var s state.InvitationStore
//	s.Communities.UpsertOne(inv)
package state
