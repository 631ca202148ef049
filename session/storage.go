package session

// Storage is the per-user, per-browser-session key-value capability the
// connector persists its state into. Implementations are scoped to a single
// browser session; ClearAll drops every key of that session at once.
//
// Concurrent requests from the same browser session are not coordinated
// here; last write wins.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
	ClearAll()
}
