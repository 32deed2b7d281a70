package engine

import "time"

// State is a message's position in its lifecycle.
type State int

const (
	// StatePending is a message waiting out its initial delay; not yet
	// eligible for delivery.
	StatePending State = iota
	// StateVisible is a message eligible for delivery on the next receive.
	StateVisible
	// StateInFlight is a message currently held by a consumer under a
	// visibility timeout.
	StateInFlight
	// StateDeleted is a message removed by its consumer; retained briefly
	// as a tombstone so a retried delete is recognized as already-done.
	StateDeleted
)

// MessageAttributeValue is a single typed message attribute, following the
// AWS wire convention of a DataType string ("String", "Number", "Binary",
// or a custom label suffix like "String.foo") paired with exactly one of
// StringValue/BinaryValue.
type MessageAttributeValue struct {
	DataType    string
	StringValue string
	BinaryValue []byte
}

// Message is one message body plus everything the broker tracks about its
// delivery lifecycle. A Message is never shared across queues: DLQ
// promotion and message-move tasks mint a new Message in the destination
// queue rather than relocating this one.
type Message struct {
	ID            string
	Body          string
	MD5OfBody     string
	Attributes    map[string]MessageAttributeValue
	MD5OfAttrs    string
	SystemAttrs   map[string]string // e.g. DeadLetterQueueSourceArn
	GroupID       string            // FIFO only
	DedupID       string            // FIFO only: the explicit id, or the body's SHA-256 hex if content-based
	SequenceNum   uint64            // FIFO only, 0 for standard queues
	State         State
	EnqueuedAt    time.Time
	VisibleAt     time.Time
	FirstReceived time.Time
	ReceiveCount  int
	ReceiptHandle string
	DeletedAt     time.Time // valid only once State == StateDeleted
}

// Snapshot is a read-only copy of a Message safe to hand to callers outside
// the queue's lock (the HTTP layer, the admin introspection endpoint).
type Snapshot struct {
	ID            string
	Body          string
	MD5OfBody     string
	Attributes    map[string]MessageAttributeValue
	SystemAttrs   map[string]string
	GroupID       string
	DedupID       string
	SequenceNum   uint64
	EnqueuedAt    time.Time
	VisibleAt     time.Time
	FirstReceived time.Time
	ReceiveCount  int
	ReceiptHandle string
}

func (m *Message) snapshot() Snapshot {
	attrs := make(map[string]MessageAttributeValue, len(m.Attributes))
	for k, v := range m.Attributes {
		attrs[k] = v
	}

	sysAttrs := make(map[string]string, len(m.SystemAttrs))
	for k, v := range m.SystemAttrs {
		sysAttrs[k] = v
	}

	return Snapshot{
		ID:            m.ID,
		Body:          m.Body,
		MD5OfBody:     m.MD5OfBody,
		Attributes:    attrs,
		SystemAttrs:   sysAttrs,
		GroupID:       m.GroupID,
		DedupID:       m.DedupID,
		SequenceNum:   m.SequenceNum,
		EnqueuedAt:    m.EnqueuedAt,
		VisibleAt:     m.VisibleAt,
		FirstReceived: m.FirstReceived,
		ReceiveCount:  m.ReceiveCount,
		ReceiptHandle: m.ReceiptHandle,
	}
}
