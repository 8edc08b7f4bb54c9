package domain

import "time"

// AuditLog is one recorded account event. TargetID is empty for events about the actor
// itself (sign in, sign out); ActorID is empty when the caller was not identified.
type AuditLog struct {
	ID        string
	ActorID   string
	TargetID  string
	Action    string
	IP        string
	Metadata  string
	TraceID   string
	CreatedAt time.Time
}
