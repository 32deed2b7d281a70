package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	deletionGrace    = 60 * time.Second
	maxRedriveChain  = 10
)

// Broker owns the directory of queues and every operation that spans more
// than one queue: creation, deletion, ARN resolution, DLQ promotion during
// receive, and message-move tasks. Broker.mu guards the directory only;
// once a *Queue is resolved, operations proceed under that queue's own
// lock. Lock ordering is: broker lock first, then queue locks — and when
// two queue locks are needed at once (DLQ promotion), they are taken in
// ascending name order so two goroutines promoting in opposite directions
// can never deadlock.
type Broker struct {
	mu sync.RWMutex

	region    string
	accountID string
	baseURL   string
	clock     Clock

	queues    map[string]*Queue
	deletedAt map[string]time.Time

	moveTasks map[string]*MoveTask

	logger Logger
}

// Logger is the minimal structured-logging surface the engine's background
// workers (sweeper, move tasks) accept. *slog.Logger satisfies it; nil is
// valid and silences logging entirely.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// BrokerOption configures a Broker at construction time.
type BrokerOption func(*Broker)

// WithClock overrides the broker's time source (tests use ManualClock).
func WithClock(c Clock) BrokerOption {
	return func(b *Broker) { b.clock = c }
}

// WithLogger attaches a logger for background-worker activity.
func WithLogger(l Logger) BrokerOption {
	return func(b *Broker) { b.logger = l }
}

// WithRegion overrides the region used in constructed ARNs.
func WithRegion(region string) BrokerOption {
	return func(b *Broker) { b.region = region }
}

// WithAccountID overrides the synthetic account ID used in ARNs.
func WithAccountID(id string) BrokerOption {
	return func(b *Broker) { b.accountID = id }
}

// NewBroker constructs a broker that will mint queue URLs under baseURL
// (e.g. "http://localhost:4566").
func NewBroker(baseURL string, opts ...BrokerOption) *Broker {
	b := &Broker{
		region:    "us-east-1",
		accountID: "000000000000",
		baseURL:   strings.TrimRight(baseURL, "/"),
		clock:     RealClock{},
		queues:    make(map[string]*Queue),
		deletedAt: make(map[string]time.Time),
		moveTasks: make(map[string]*MoveTask),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

func (b *Broker) arnFor(name string) string {
	return fmt.Sprintf("arn:aws:sqs:%s:%s:%s", b.region, b.accountID, name)
}

// QueueURL returns the URL a queue named name would have.
func (b *Broker) QueueURL(name string) string {
	return fmt.Sprintf("%s/%s", b.baseURL, name)
}

func nameFromURLOrARN(nameOrURL string) string {
	if strings.HasPrefix(nameOrURL, "arn:") {
		parts := strings.Split(nameOrURL, ":")

		return parts[len(parts)-1]
	}

	if idx := strings.LastIndex(nameOrURL, "/"); idx >= 0 {
		return nameOrURL[idx+1:]
	}

	return nameOrURL
}

// CreateInput carries the parameters of a CreateQueue call.
type CreateInput struct {
	Name       string
	Attributes map[string]string
}

// CreateQueue creates a new queue, or — if a queue with this name already
// exists with identical attributes — returns it idempotently. A name reused
// within 60 seconds of that queue's deletion is rejected.
func (b *Broker) CreateQueue(in CreateInput) (*Queue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fifo := strings.HasSuffix(in.Name, ".fifo")

	if existing, ok := b.queues[in.Name]; ok {
		if attrsEqual(existing, in.Attributes) {
			return existing, nil
		}

		return nil, ErrQueueAlreadyExists(in.Name)
	}

	if deletedAt, ok := b.deletedAt[in.Name]; ok {
		if b.clock.Now().Sub(deletedAt) < deletionGrace {
			return nil, ErrQueueDeletedRecently(in.Name)
		}
	}

	attrs := DefaultAttributes()

	redrive, redriveSet, err := parseAttributes(in.Attributes, &attrs)
	if err != nil {
		return nil, err
	}

	if redriveSet {
		if err := b.validateRedriveLocked(in.Name, redrive); err != nil {
			return nil, err
		}

		attrs.Redrive = redrive
	}

	q := NewQueue(in.Name, b.arnFor(in.Name), fifo, attrs, b.clock)
	b.queues[in.Name] = q
	delete(b.deletedAt, in.Name)

	return q, nil
}

func attrsEqual(q *Queue, raw map[string]string) bool {
	// CreateQueue against an existing queue is idempotent only when the
	// caller's attributes (if any) match what's already configured; an
	// empty attribute map always matches.
	if len(raw) == 0 {
		return true
	}

	var candidate Attributes

	redrive, redriveSet, err := parseAttributes(raw, &candidate)
	if err != nil {
		return false
	}

	current := q.Attrs()

	if _, ok := raw["VisibilityTimeout"]; ok && candidate.VisibilityTimeout != current.VisibilityTimeout {
		return false
	}

	if _, ok := raw["MessageRetentionPeriod"]; ok && candidate.MessageRetentionPeriod != current.MessageRetentionPeriod {
		return false
	}

	if _, ok := raw["MaximumMessageSize"]; ok && candidate.MaxMessageSize != current.MaxMessageSize {
		return false
	}

	if _, ok := raw["DelaySeconds"]; ok && candidate.DelaySeconds != current.DelaySeconds {
		return false
	}

	if _, ok := raw["ReceiveMessageWaitTimeSeconds"]; ok && candidate.ReceiveMessageWaitTime != current.ReceiveMessageWaitTime {
		return false
	}

	if _, ok := raw["ContentBasedDeduplication"]; ok && candidate.ContentBasedDeduplication != current.ContentBasedDeduplication {
		return false
	}

	if redriveSet && ((redrive == nil) != (current.Redrive == nil) || (redrive != nil && *redrive != *current.Redrive)) {
		return false
	}

	return true
}

// GetQueue resolves a queue by name, URL, or ARN.
func (b *Broker) GetQueue(nameOrURL string) (*Queue, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	name := nameFromURLOrARN(nameOrURL)

	q, ok := b.queues[name]
	if !ok {
		return nil, ErrQueueDoesNotExist(nameOrURL)
	}

	return q, nil
}

// DeleteQueue removes a queue from the directory. Any operation already in
// flight against it is allowed to finish; new lookups fail immediately with
// QueueDoesNotExist, and the name cannot be reused for 60 seconds.
func (b *Broker) DeleteQueue(nameOrURL string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	name := nameFromURLOrARN(nameOrURL)

	if _, ok := b.queues[name]; !ok {
		return ErrQueueDoesNotExist(nameOrURL)
	}

	delete(b.queues, name)
	b.deletedAt[name] = b.clock.Now()

	return nil
}

// ListQueues returns every queue whose name has the given prefix (empty
// prefix matches all), sorted by name for deterministic pagination-free
// output.
func (b *Broker) ListQueues(prefix string) []*Queue {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*Queue

	for name, q := range b.queues {
		if strings.HasPrefix(name, prefix) {
			out = append(out, q)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })

	return out
}

// validateRedriveLocked rejects a redrive policy that would create a cycle
// or a chain deeper than maxRedriveChain. Caller holds b.mu.
func (b *Broker) validateRedriveLocked(sourceName string, redrive *RedriveConfig) error {
	targetName := nameFromURLOrARN(redrive.TargetArn)

	seen := map[string]bool{sourceName: true}
	current := targetName

	for depth := 0; ; depth++ {
		if depth >= maxRedriveChain {
			return ErrInvalidParameter("redrive chain from %s exceeds the maximum depth of %d", sourceName, maxRedriveChain)
		}

		if seen[current] {
			return ErrInvalidParameter("redrive policy for %s would create a cycle through %s", sourceName, current)
		}

		seen[current] = true

		target, ok := b.queues[current]
		if !ok {
			return nil
		}

		next := target.Attrs().Redrive
		if next == nil {
			return nil
		}

		current = nameFromURLOrARN(next.TargetArn)
	}
}

// SetQueueAttributes applies attribute updates, validating any new redrive
// policy against the rest of the directory before committing it.
func (b *Broker) SetQueueAttributes(nameOrURL string, raw map[string]string) error {
	q, err := b.GetQueue(nameOrURL)
	if err != nil {
		return err
	}

	var updates Attributes

	redrive, redriveSet, err := parseAttributes(raw, &updates)
	if err != nil {
		return err
	}

	if redriveSet && redrive != nil {
		b.mu.Lock()
		err := b.validateRedriveLocked(q.Name(), redrive)
		b.mu.Unlock()

		if err != nil {
			return err
		}
	}

	q.SetAttrs(raw, updates, redrive, redriveSet)

	return nil
}

// GetQueueAttributes returns the requested attributes (or all of them, for
// the sentinel "All") as AWS-style string values.
func (b *Broker) GetQueueAttributes(nameOrURL string, names []string) (map[string]string, error) {
	q, err := b.GetQueue(nameOrURL)
	if err != nil {
		return nil, err
	}

	attrs := q.Attrs()
	counts := q.Counts()

	all := map[string]string{
		"QueueArn":                             q.ARN(),
		"VisibilityTimeout":                    itoa(int(attrs.VisibilityTimeout.Seconds())),
		"MessageRetentionPeriod":               itoa(int(attrs.MessageRetentionPeriod.Seconds())),
		"MaximumMessageSize":                   itoa(attrs.MaxMessageSize),
		"DelaySeconds":                         itoa(int(attrs.DelaySeconds.Seconds())),
		"ReceiveMessageWaitTimeSeconds":        itoa(int(attrs.ReceiveMessageWaitTime.Seconds())),
		"CreatedTimestamp":                     itoa(int(q.CreatedAt().Unix())),
		"LastModifiedTimestamp":                itoa(int(q.ModifiedAt().Unix())),
		"ApproximateNumberOfMessages":          itoa(counts.Visible),
		"ApproximateNumberOfMessagesNotVisible": itoa(counts.InFlight),
		"ApproximateNumberOfMessagesDelayed":   itoa(counts.Delayed),
	}

	if q.IsFIFO() {
		all["FifoQueue"] = "true"
		all["ContentBasedDeduplication"] = boolStr(attrs.ContentBasedDeduplication)
	}

	if attrs.Redrive != nil {
		policy, _ := json.Marshal(map[string]any{
			"deadLetterTargetArn": attrs.Redrive.TargetArn,
			"maxReceiveCount":     attrs.Redrive.MaxReceiveCount,
		})
		all["RedrivePolicy"] = string(policy)
	}

	if len(names) == 0 {
		return map[string]string{}, nil
	}

	if containsAll(names) {
		return all, nil
	}

	out := make(map[string]string, len(names))

	for _, n := range names {
		if v, ok := all[n]; ok {
			out[n] = v
		}
	}

	return out, nil
}

func containsAll(names []string) bool {
	for _, n := range names {
		if n == "All" {
			return true
		}
	}

	return false
}

// ListDeadLetterSourceQueues returns every queue whose redrive policy
// targets the given queue.
func (b *Broker) ListDeadLetterSourceQueues(nameOrURL string) ([]*Queue, error) {
	target, err := b.GetQueue(nameOrURL)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*Queue

	for _, q := range b.queues {
		redrive := q.Attrs().Redrive
		if redrive != nil && nameFromURLOrARN(redrive.TargetArn) == target.Name() {
			out = append(out, q)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })

	return out, nil
}

// Send resolves the queue and enqueues a message on it.
func (b *Broker) Send(nameOrURL string, in SendInput) (SendResult, error) {
	q, err := b.GetQueue(nameOrURL)
	if err != nil {
		return SendResult{}, err
	}

	return q.Send(in)
}

// Delete resolves the queue and deletes the given receipt handle.
func (b *Broker) Delete(nameOrURL, handle string) error {
	q, err := b.GetQueue(nameOrURL)
	if err != nil {
		return err
	}

	return q.Delete(handle)
}

// ChangeVisibility resolves the queue and updates the given handle's
// visibility deadline.
func (b *Broker) ChangeVisibility(nameOrURL, handle string, timeout time.Duration) error {
	q, err := b.GetQueue(nameOrURL)
	if err != nil {
		return err
	}

	return q.ChangeVisibility(handle, timeout)
}

// Purge resolves the queue and discards its messages.
func (b *Broker) Purge(nameOrURL string) error {
	q, err := b.GetQueue(nameOrURL)
	if err != nil {
		return err
	}

	return q.Purge()
}

// Receive resolves the queue (and, if configured, its DLQ redrive target)
// and serves a single ReceiveMessage call, long-polling up to
// wait if nothing is immediately deliverable.
func (b *Broker) Receive(ctx context.Context, nameOrURL string, in ReceiveInput, wait time.Duration) ([]Delivery, error) {
	src, err := b.GetQueue(nameOrURL)
	if err != nil {
		return nil, err
	}

	deadline := b.clock.Now().Add(wait)

	for {
		delivered, err := b.receiveOnce(src, in)
		if err != nil {
			return nil, err
		}

		if len(delivered) > 0 || wait <= 0 {
			return delivered, nil
		}

		remaining := deadline.Sub(b.clock.Now())
		if remaining <= 0 {
			return nil, nil
		}

		ch := src.waitChan()

		timer := time.NewTimer(remaining)

		select {
		case <-ch:
			timer.Stop()
		case <-timer.C:
			return nil, nil
		case <-ctx.Done():
			timer.Stop()

			return nil, nil
		}
	}
}

func (b *Broker) receiveOnce(src *Queue, in ReceiveInput) ([]Delivery, error) {
	redrive := src.Attrs().Redrive

	var target *Queue

	if redrive != nil {
		b.mu.RLock()
		target = b.queues[nameFromURLOrARN(redrive.TargetArn)]
		b.mu.RUnlock()
	}

	first, second := lockOrder(src, target)

	first.mu.Lock()

	if second != nil {
		second.mu.Lock()
	}

	now := b.clock.Now()
	delivered := src.selectLocked(now, in, target, src.ARN(), redrive)

	if second != nil {
		second.mu.Unlock()
	}

	first.mu.Unlock()

	return delivered, nil
}

// lockOrder returns the two queues in the fixed order their locks should
// be acquired (nil-safe, dedups src==target). Sorting by name keeps two
// concurrent promotions between the same pair of queues from deadlocking.
func lockOrder(src, target *Queue) (*Queue, *Queue) {
	if target == nil || target == src {
		return src, nil
	}

	if src.Name() < target.Name() {
		return src, target
	}

	return target, src
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}

func boolStr(b bool) string {
	if b {
		return "true"
	}

	return "false"
}
