package model

// Counter names used with the fetch-and-increment allocator.
const (
	CounterUserID    = "user_id"
	CounterHistoryID = "history_id"
)
