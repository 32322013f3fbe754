package ws

import "time"

// ConnInfo carries per-connection identity and trace metadata, kept alongside
// the connection for lifecycle events.
type ConnInfo struct {
	ConnID      string
	UserID      int
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
