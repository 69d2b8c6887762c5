// Package api provides the HTTP client for the backend REST API.
//
// # Overview
//
// The client covers two surfaces:
//
//   - Actions: POST <api_url>/<path> with a JSON body (join, leave, add, kick,
//     save, event join/remove, user-library add/remove, song and playlist
//     removal used by cascades)
//   - Row queries: GET <rest_url>/<table> with PostgREST filters, implementing
//     rows.Querier for hydration
//
// # Error Handling
//
// Failures map onto the apperr categories:
//
//   - Request construction or delivery failure: apperr.ErrTransport
//   - Non-2xx response: *apperr.RejectedError carrying the body's "message"
//     field, or the status line when the body has none
//   - 2xx with a body that is not the expected JSON: apperr.ErrShape
//
// Example error messages:
//   - "transport failure: execute request: dial tcp: connection refused"
//   - "not a member of this community"
//   - "502 Bad Gateway"
//
// # Design Rationale
//
// The client is intentionally thin:
//   - No retries (the user retries by repeating the action)
//   - No caching (hydration re-reads on every mount)
//   - No input validation beyond what JSON encoding requires; the session
//     validates ids before any call is made
package api
