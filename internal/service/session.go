package service

// SessionTransport carries the access token between requests. The HTTP layer
// backs it with cookies; tests use an in-memory fake.
type SessionTransport interface {
	// Attach stores the access token and its CSRF value.
	Attach(token, csrf string)
	// Read returns the access token presented by the client, if any.
	Read() (string, bool)
	// Clear removes any stored session. It never fails.
	Clear()
}
