package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MoveTaskStatus is the lifecycle state of a message-move task.
type MoveTaskStatus string

const (
	MoveTaskRunning   MoveTaskStatus = "RUNNING"
	MoveTaskCompleted MoveTaskStatus = "COMPLETED"
	MoveTaskCancelled MoveTaskStatus = "CANCELLED"
	MoveTaskFailed    MoveTaskStatus = "FAILED"
)

const (
	defaultMoveRate      = 10.0 // messages/sec when the caller doesn't specify one
	maxConsecutiveErrors = 5
	moveReceiveWait      = 1 * time.Second
)

// MoveTask redrives messages from a dead-letter queue back to its original
// source (or an explicit destination), at a bounded rate, until the source
// is empty or the task is cancelled. It mints its own receipt handles via
// ordinary Receive/Delete/Send calls against the two queues — there is no
// privileged bulk-transfer path, matching how a real redrive would be
// implemented by a client script.
type MoveTask struct {
	mu sync.Mutex

	id     string
	source *Queue
	dest   *Queue

	rate   float64
	status MoveTaskStatus

	moved       int64
	failed      int64
	approxTotal int64

	startedAt time.Time
	cancel    context.CancelFunc

	logger Logger
}

// StartMessageMoveTask begins redriving messages from source to dest (or,
// if dest is nil, back to whatever queue originally sent them — the task
// resolves that per message from its DeadLetterQueueSourceArn system
// attribute).
func (b *Broker) StartMessageMoveTask(sourceArn string, dest *Queue, rate float64) (*MoveTask, error) {
	source, err := b.GetQueue(sourceArn)
	if err != nil {
		return nil, err
	}

	if rate <= 0 {
		rate = defaultMoveRate
	}

	ctx, cancel := context.WithCancel(context.Background())

	counts := source.Counts()

	task := &MoveTask{
		id:          uuid.New().String(),
		source:      source,
		dest:        dest,
		rate:        rate,
		status:      MoveTaskRunning,
		approxTotal: int64(counts.Visible + counts.Delayed),
		startedAt:   b.clock.Now(),
		cancel:      cancel,
		logger:      b.logger,
	}

	b.mu.Lock()
	b.moveTasks[task.id] = task
	b.mu.Unlock()

	go task.run(ctx, b)

	return task, nil
}

func (t *MoveTask) run(ctx context.Context, b *Broker) {
	interval := time.Duration(float64(time.Second) / t.rate)
	ticker := time.NewTicker(interval)

	defer ticker.Stop()

	consecutiveErrors := 0

	for {
		select {
		case <-ctx.Done():
			t.finish(MoveTaskCancelled)

			return
		case <-ticker.C:
		}

		deliveries, err := b.Receive(ctx, t.source.Name(), ReceiveInput{MaxMessages: 1}, 0)
		if err != nil || len(deliveries) == 0 {
			if err == nil {
				t.finish(MoveTaskCompleted)

				return
			}

			consecutiveErrors++
			t.logFailure(err)

			if consecutiveErrors >= maxConsecutiveErrors {
				t.finish(MoveTaskFailed)

				return
			}

			continue
		}

		d := deliveries[0]

		dest := t.dest
		if dest == nil {
			dest = t.resolveDestination(b, d)
		}

		if dest == nil {
			consecutiveErrors++
			t.logFailure(fmt.Errorf("no destination resolvable for message %s", d.Message.ID))

			continue
		}

		if _, err := dest.Send(SendInput{
			Body:       d.Message.Body,
			Attributes: d.Message.Attributes,
			GroupID:    d.Message.GroupID,
		}); err != nil {
			consecutiveErrors++
			t.logFailure(err)

			if consecutiveErrors >= maxConsecutiveErrors {
				t.finish(MoveTaskFailed)

				return
			}

			continue
		}

		if err := t.source.Delete(d.ReceiptHandle); err != nil {
			consecutiveErrors++
			t.logFailure(err)

			continue
		}

		consecutiveErrors = 0

		t.mu.Lock()
		t.moved++
		t.mu.Unlock()
	}
}

// resolveDestination sends a message back to the queue named in its
// DeadLetterQueueSourceArn system attribute, falling back to nil (and thus
// a logged failure) if that queue no longer exists.
func (t *MoveTask) resolveDestination(b *Broker, d Delivery) *Queue {
	arn, ok := d.Message.SystemAttrs["DeadLetterQueueSourceArn"]
	if !ok {
		return nil
	}

	q, err := b.GetQueue(arn)
	if err != nil {
		return nil
	}

	return q
}

func (t *MoveTask) logFailure(err error) {
	t.mu.Lock()
	t.failed++
	t.mu.Unlock()

	if t.logger != nil {
		t.logger.Warn("move task redrive attempt failed", "task_id", t.id, "error", err)
	}
}

func (t *MoveTask) finish(status MoveTaskStatus) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()

	if t.logger != nil {
		t.logger.Info("move task finished", "task_id", t.id, "status", status)
	}
}

// Cancel stops the task; in-flight redrives are allowed to finish.
func (t *MoveTask) Cancel() {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// MoveTaskSnapshot is a read-only view of a MoveTask's progress.
type MoveTaskSnapshot struct {
	ID              string
	SourceArn       string
	Status          MoveTaskStatus
	ApproxMoved     int64
	ApproxFailed    int64
	ApproxTotal     int64
	StartedAt       time.Time
}

// Snapshot returns the task's current progress.
func (t *MoveTask) Snapshot() MoveTaskSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return MoveTaskSnapshot{
		ID:           t.id,
		SourceArn:    t.source.ARN(),
		Status:       t.status,
		ApproxMoved:  t.moved,
		ApproxFailed: t.failed,
		ApproxTotal:  t.approxTotal,
		StartedAt:    t.startedAt,
	}
}

// GetMoveTask looks up a move task by its ID.
func (b *Broker) GetMoveTask(taskID string) (*MoveTask, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	task, ok := b.moveTasks[taskID]

	return task, ok
}

// CancelMessageMoveTask cancels a running move task by ID.
func (b *Broker) CancelMessageMoveTask(taskID string) error {
	b.mu.RLock()
	task, ok := b.moveTasks[taskID]
	b.mu.RUnlock()

	if !ok {
		return ErrInvalidParameter("no move task with id %s", taskID)
	}

	task.Cancel()

	return nil
}

// ListMessageMoveTasks returns move tasks for the given source ARN, most
// recently started first.
func (b *Broker) ListMessageMoveTasks(sourceArn string) []MoveTaskSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []MoveTaskSnapshot

	for _, t := range b.moveTasks {
		snap := t.Snapshot()
		if snap.SourceArn == sourceArn {
			out = append(out, snap)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })

	return out
}
