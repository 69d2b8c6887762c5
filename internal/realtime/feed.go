package realtime

import "context"

// Handler receives decoded events for one subscription. Handlers run on the
// feed's delivery goroutine and must not block for long.
type Handler func(Event)

// Feed delivers change events for a table, narrowed by a filter.
type Feed interface {
	// Subscribe returns once the subscription is active. The returned function
	// tears it down and is safe to call more than once.
	Subscribe(ctx context.Context, table, filter string, h Handler) (func(), error)
}

// Eq builds an equality filter, e.g. Eq("user_id", id) -> "user_id=eq.<id>".
func Eq(col, value string) string {
	return col + "=eq." + value
}
