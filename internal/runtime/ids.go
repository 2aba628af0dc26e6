package runtime

import (
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// NewRequestID mints a correlation id for one inbound HTTP request, surfaced
// in logs and error responses so a client can reference a specific call.
func NewRequestID() string {
	return uuid.NewString()
}

// NewEventID mints a k-sortable ksuid, the same form of id internal/bus
// generates for each outbound message (the bus mints its own rather than
// calling this). K-sortability lets downstream consumers dedup and
// roughly order messages without a separate sequence source.
func NewEventID() string {
	return ksuid.New().String()
}
