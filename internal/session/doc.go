// Package session keeps a signed-in user's membership, invitation and
// followed-user state in sync with the backend.
//
// A Session owns three domain slices, each with its own loading flag and
// error message:
//
//   - Communities: the communities the viewer joined, plus the community on
//     screen with its members and events.
//   - Invitations: pending community and event invitations.
//   - Library: the users the viewer follows.
//
// State enters a slice three ways.
//
// Fetches read an edge table (community_user, event_user, user_library) and
// then the tables holding display fields (community, event, public_profile)
// for exactly the ids the edge rows reference. The backend has no joins, so
// the join happens here through an id map; edge rows without a display record
// are skipped. An empty edge result stores an empty collection and issues no
// second query. A failed fetch leaves "Failed to fetch <entity>: <cause>" in
// the slice's error.
//
// Actions validate their ids, make one backend call and, only when it
// succeeds, patch local state. A failure stores the error message and leaves
// every collection as it was. Loading is cleared on every exit. Actions block
// until they settle; the terminal UI runs them as commands.
//
// Realtime events are merged by id. Invitation inserts create placeholders
// whose name and slug are the raw id until the next fetch refines them, and an
// accepted invitation survives the status change that follows its accept.
// Library and member inserts carry no username, so each costs one profile
// lookup; if it fails the event is dropped.
//
// Fetches and realtime events are applied in call order. A fetch that
// completes after a newer event overwrites it.
//
// SignOut runs the lifecycle registry, which tears down subscriptions and
// returns every slice to its empty state.
package session
