package engine

import "time"

// QueueSnapshot is the read-only view of a queue the admin introspection
// endpoint exposes.
type QueueSnapshot struct {
	Name                  string
	ARN                   string
	FIFO                  bool
	CreatedAt             time.Time
	LastModified          time.Time
	ApproximateMessages   int
	ApproximateInFlight   int
	ApproximateDelayed    int
	RedriveTargetArn      string
	RedriveMaxReceive     int
}

// SnapshotQueues returns a point-in-time view of every queue in the
// directory, sorted by name. It is the engine's one collaborator contract
// with internal/admin: a read-only surface with no side effects.
func (b *Broker) SnapshotQueues() []QueueSnapshot {
	queues := b.ListQueues("")
	out := make([]QueueSnapshot, 0, len(queues))

	for _, q := range queues {
		attrs := q.Attrs()
		counts := q.Counts()

		snap := QueueSnapshot{
			Name:                q.Name(),
			ARN:                 q.ARN(),
			FIFO:                q.IsFIFO(),
			CreatedAt:           q.CreatedAt(),
			LastModified:        q.ModifiedAt(),
			ApproximateMessages: counts.Visible,
			ApproximateInFlight: counts.InFlight,
			ApproximateDelayed:  counts.Delayed,
		}

		if attrs.Redrive != nil {
			snap.RedriveTargetArn = attrs.Redrive.TargetArn
			snap.RedriveMaxReceive = attrs.Redrive.MaxReceiveCount
		}

		out = append(out, snap)
	}

	return out
}
