package engine

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultVisibilityTimeout = 30 * time.Second
	defaultRetentionPeriod   = 4 * 24 * time.Hour
	maxRetentionPeriod       = 14 * 24 * time.Hour
	defaultMaxMessageSize    = 256 * 1024
	defaultReceiveWait       = 0 * time.Second
	dedupWindow              = 5 * time.Minute
	tombstoneWindow          = 60 * time.Second
	maxInFlightStandard      = 120_000
	maxInFlightFIFO          = 20_000
	maxBatchSize             = 10
)

// RedriveConfig is a queue's dead-letter configuration, decoded from the
// RedrivePolicy queue attribute.
type RedriveConfig struct {
	TargetArn       string
	MaxReceiveCount int
}

// Attributes is the set of user-configurable queue attributes, the
// engine's analog of SQS's flat string-keyed Attributes map.
type Attributes struct {
	VisibilityTimeout        time.Duration
	MessageRetentionPeriod   time.Duration
	MaxMessageSize           int
	DelaySeconds             time.Duration
	ReceiveMessageWaitTime   time.Duration
	Redrive                  *RedriveConfig
	ContentBasedDeduplication bool
}

// DefaultAttributes returns the attribute set a newly created queue starts
// with, absent any overrides in the CreateQueue call.
func DefaultAttributes() Attributes {
	return Attributes{
		VisibilityTimeout:      defaultVisibilityTimeout,
		MessageRetentionPeriod: defaultRetentionPeriod,
		MaxMessageSize:         defaultMaxMessageSize,
		DelaySeconds:           0,
		ReceiveMessageWaitTime: defaultReceiveWait,
	}
}

type dedupEntry struct {
	messageID   string
	sequenceNum uint64
	expiresAt   time.Time
}

// Queue is a single named queue: its configuration, its messages, and the
// bookkeeping (dedup cache, FIFO group order, in-flight index) needed to
// serve Send/Receive/Delete/ChangeVisibility correctly under concurrent
// access. Every exported method that touches queue state takes q.mu.
//
// Standard queues hold their not-yet-delivered messages in `pending`, in
// enqueue order (best-effort FIFO, never guaranteed). FIFO queues instead
// bucket pending messages by group ID in `groups`, round-robining across
// groups on receive and allowing at most one in-flight message per group
// at a time (`inFlightGroup`), so a slow consumer of one group cannot stall
// delivery from the others but also never receives two messages of the
// same group out of order.
type Queue struct {
	mu sync.Mutex

	name  string
	arn   string
	fifo  bool
	clock Clock

	attrs     Attributes
	createdAt time.Time
	modified  time.Time

	pending []*Message // standard queues only

	groups     map[string][]*Message // fifo queues only: groupID -> pending, in arrival order
	groupOrder []string               // fifo round-robin schedule
	nextGroup  int
	inFlight   map[string]*Message // fifo queues only: groupID -> the one in-flight message

	byID     map[string]*Message // all live (non-deleted) messages, any state
	byHandle map[string]*Message // receipt handle -> in-flight message

	dedup map[string]dedupEntry

	tombstones map[string]time.Time // deleted receipt handle -> deletion time

	seq uint64

	lastPurge time.Time

	notify chan struct{} // closed and replaced on every event a waiting receive should retry on
}

// NewQueue constructs a queue. Called only by Broker.CreateQueue.
func NewQueue(name, arn string, fifo bool, attrs Attributes, clock Clock) *Queue {
	now := clock.Now()

	q := &Queue{
		name:       name,
		arn:        arn,
		fifo:       fifo,
		clock:      clock,
		attrs:      attrs,
		createdAt:  now,
		modified:   now,
		byID:       make(map[string]*Message),
		byHandle:   make(map[string]*Message),
		dedup:      make(map[string]dedupEntry),
		tombstones: make(map[string]time.Time),
		notify:     make(chan struct{}),
	}

	if fifo {
		q.groups = make(map[string][]*Message)
		q.inFlight = make(map[string]*Message)
	}

	return q
}

// Name returns the queue's short name.
func (q *Queue) Name() string { return q.name }

// ARN returns the queue's ARN.
func (q *Queue) ARN() string { return q.arn }

// IsFIFO reports whether this is a FIFO queue.
func (q *Queue) IsFIFO() bool { return q.fifo }

func (q *Queue) signalLocked() {
	close(q.notify)
	q.notify = make(chan struct{})
}

func (q *Queue) waitChan() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.notify
}

// SendInput carries the parameters of a single SendMessage call.
type SendInput struct {
	Body                   string
	Attributes             map[string]MessageAttributeValue
	DelaySeconds           *time.Duration // nil means "use queue default"
	GroupID                string         // required for FIFO
	DeduplicationID        string         // optional even for FIFO, if content-based dedup is on
}

// SendResult is what a successful Send reports back to the caller.
type SendResult struct {
	MessageID    string
	MD5OfBody    string
	MD5OfAttrs   string
	SequenceNum  uint64 // FIFO only
}

// Send enqueues a new message, or — for FIFO queues hitting an unexpired
// dedup entry — returns the earlier message's identity without enqueueing
// anything.
func (q *Queue) Send(in SendInput) (SendResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(in.Body) > q.attrs.MaxMessageSize {
		return SendResult{}, ErrInvalidParameter(
			"message body of %d bytes exceeds the queue's maximum of %d bytes", len(in.Body), q.attrs.MaxMessageSize)
	}

	if q.fifo && in.GroupID == "" {
		return SendResult{}, ErrInvalidParameter("MessageGroupId is required for a FIFO queue")
	}

	now := q.clock.Now()

	var dedupKey string

	if q.fifo {
		switch {
		case in.DeduplicationID != "":
			dedupKey = in.DeduplicationID
		case q.attrs.ContentBasedDeduplication:
			sum := sha256.Sum256([]byte(in.Body))
			dedupKey = hex.EncodeToString(sum[:])
		default:
			return SendResult{}, ErrInvalidParameter(
				"MessageDeduplicationId is required unless the queue has ContentBasedDeduplication enabled")
		}

		if entry, ok := q.dedup[dedupKey]; ok && entry.expiresAt.After(now) {
			return SendResult{
				MessageID:   entry.messageID,
				MD5OfBody:   md5Hex(in.Body),
				SequenceNum: entry.sequenceNum,
			}, nil
		}
	}

	if q.inFlightCountLocked() >= q.inFlightCapLocked() {
		return SendResult{}, ErrOverLimit("queue %s is at its in-flight message limit", q.name)
	}

	delay := q.attrs.DelaySeconds
	if in.DelaySeconds != nil {
		delay = *in.DelaySeconds
	}

	msg := &Message{
		ID:          uuid.New().String(),
		Body:        in.Body,
		MD5OfBody:   md5Hex(in.Body),
		Attributes:  in.Attributes,
		GroupID:     in.GroupID,
		DedupID:     dedupKey,
		State:       StatePending,
		EnqueuedAt:  now,
		VisibleAt:   now.Add(delay),
		SystemAttrs: map[string]string{},
	}

	if len(in.Attributes) > 0 {
		msg.MD5OfAttrs = md5OfAttributes(in.Attributes)
	}

	if msg.VisibleAt.After(now) {
		msg.State = StatePending
	} else {
		msg.State = StateVisible
	}

	if q.fifo {
		q.seq++
		msg.SequenceNum = q.seq

		if _, ok := q.groups[in.GroupID]; !ok {
			q.groupOrder = append(q.groupOrder, in.GroupID)
		}

		q.groups[in.GroupID] = append(q.groups[in.GroupID], msg)
	} else {
		q.pending = append(q.pending, msg)
	}

	q.byID[msg.ID] = msg

	if dedupKey != "" {
		q.dedup[dedupKey] = dedupEntry{
			messageID:   msg.ID,
			sequenceNum: msg.SequenceNum,
			expiresAt:   now.Add(dedupWindow),
		}
	}

	q.modified = now
	q.signalLocked()

	return SendResult{
		MessageID:   msg.ID,
		MD5OfBody:   msg.MD5OfBody,
		MD5OfAttrs:  msg.MD5OfAttrs,
		SequenceNum: msg.SequenceNum,
	}, nil
}

func (q *Queue) inFlightCountLocked() int {
	return len(q.byHandle)
}

func (q *Queue) inFlightCapLocked() int {
	if q.fifo {
		return maxInFlightFIFO
	}

	return maxInFlightStandard
}

// ReceiveInput carries the parameters of a single ReceiveMessage call (a
// single attempt; long-poll looping is Broker's job, not Queue's).
type ReceiveInput struct {
	MaxMessages       int
	VisibilityTimeout *time.Duration // nil means "use queue default"
}

// Delivery pairs a delivered message with the receipt handle minted for
// this delivery.
type Delivery struct {
	Message       Snapshot
	ReceiptHandle string
}

// selectLocked picks up to in.MaxMessages deliverable messages, marking
// each in-flight and minting a receipt handle. Candidates whose receive
// count has hit the redrive policy's MaxReceiveCount are instead moved to
// target (already locked by the caller) and never counted as delivered.
// Both queues' invariants (at most one in-flight message per FIFO group,
// dedup bookkeeping untouched) are maintained without needing target's
// lock released at any point — the caller holds both for the duration.
func (q *Queue) selectLocked(now time.Time, in ReceiveInput, target *Queue, sourceArn string, redrive *RedriveConfig) []Delivery {
	q.reclaimExpiredLocked(now)

	maxN := in.MaxMessages
	if maxN <= 0 {
		maxN = 1
	}

	if maxN > maxBatchSize {
		maxN = maxBatchSize
	}

	visTimeout := q.attrs.VisibilityTimeout
	if in.VisibilityTimeout != nil {
		visTimeout = *in.VisibilityTimeout
	}

	var delivered []Delivery

	if q.fifo {
		delivered = q.selectFIFOLocked(now, maxN, visTimeout, target, sourceArn, redrive)
	} else {
		delivered = q.selectStandardLocked(now, maxN, visTimeout, target, sourceArn, redrive)
	}

	if len(delivered) > 0 {
		q.modified = now
	}

	return delivered
}

func (q *Queue) selectStandardLocked(now time.Time, maxN int, visTimeout time.Duration, target *Queue, sourceArn string, redrive *RedriveConfig) []Delivery {
	var delivered []Delivery

	remaining := q.pending[:0]

	for _, msg := range q.pending {
		if len(delivered) >= maxN {
			remaining = append(remaining, msg)

			continue
		}

		if msg.VisibleAt.After(now) {
			remaining = append(remaining, msg)

			continue
		}

		if redrive != nil && target != nil && msg.ReceiveCount >= redrive.MaxReceiveCount {
			q.promoteLocked(msg, target, sourceArn, now)
			delete(q.byID, msg.ID)

			continue
		}

		delivered = append(delivered, q.deliverLocked(msg, now, visTimeout))
	}

	q.pending = remaining

	return delivered
}

func (q *Queue) selectFIFOLocked(now time.Time, maxN int, visTimeout time.Duration, target *Queue, sourceArn string, redrive *RedriveConfig) []Delivery {
	var delivered []Delivery

	order := append([]string(nil), q.groupOrder...)

	for i := 0; i < len(order) && len(delivered) < maxN; i++ {
		idx := (q.nextGroup + i) % len(order)
		gid := order[idx]

		if _, busy := q.inFlight[gid]; busy {
			continue
		}

		queue := q.groups[gid]
		if len(queue) == 0 {
			continue
		}

		head := queue[0]
		if head.VisibleAt.After(now) {
			continue
		}

		if redrive != nil && target != nil && head.ReceiveCount >= redrive.MaxReceiveCount {
			q.groups[gid] = queue[1:]
			q.promoteLocked(head, target, sourceArn, now)
			delete(q.byID, head.ID)
			i--

			continue
		}

		q.groups[gid] = queue[1:]
		d := q.deliverLocked(head, now, visTimeout)
		q.inFlight[gid] = head
		delivered = append(delivered, d)
		q.nextGroup = (idx + 1) % len(order)
	}

	q.pruneEmptyGroupsLocked()

	return delivered
}

func (q *Queue) pruneEmptyGroupsLocked() {
	kept := q.groupOrder[:0]

	for _, gid := range q.groupOrder {
		if len(q.groups[gid]) == 0 {
			if _, busy := q.inFlight[gid]; !busy {
				delete(q.groups, gid)

				continue
			}
		}

		kept = append(kept, gid)
	}

	q.groupOrder = kept
}

func (q *Queue) deliverLocked(msg *Message, now time.Time, visTimeout time.Duration) Delivery {
	msg.State = StateInFlight
	msg.ReceiveCount++
	msg.VisibleAt = now.Add(visTimeout)
	msg.ReceiptHandle = uuid.New().String()

	if msg.FirstReceived.IsZero() {
		msg.FirstReceived = now
	}

	q.byHandle[msg.ReceiptHandle] = msg

	return Delivery{Message: msg.snapshot(), ReceiptHandle: msg.ReceiptHandle}
}

// promoteLocked moves msg from this queue to target as a brand-new
// message: new ID, new sequence number if target is FIFO, receive count
// reset, with a DeadLetterQueueSourceArn system attribute recording where
// it came from. Caller must hold target.mu already.
func (q *Queue) promoteLocked(msg *Message, target *Queue, sourceArn string, now time.Time) {
	promoted := &Message{
		ID:         uuid.New().String(),
		Body:       msg.Body,
		MD5OfBody:  msg.MD5OfBody,
		Attributes: msg.Attributes,
		MD5OfAttrs: msg.MD5OfAttrs,
		GroupID:    msg.GroupID,
		State:      StateVisible,
		EnqueuedAt: now,
		VisibleAt:  now,
		SystemAttrs: map[string]string{
			"DeadLetterQueueSourceArn": sourceArn,
		},
	}

	if target.fifo {
		target.seq++
		promoted.SequenceNum = target.seq

		if promoted.GroupID == "" {
			promoted.GroupID = "default"
		}

		if _, ok := target.groups[promoted.GroupID]; !ok {
			target.groupOrder = append(target.groupOrder, promoted.GroupID)
		}

		target.groups[promoted.GroupID] = append(target.groups[promoted.GroupID], promoted)
	} else {
		target.pending = append(target.pending, promoted)
	}

	target.byID[promoted.ID] = promoted
	target.modified = now
	target.signalLocked()
}

// Delete removes the message identified by handle. Deleting a handle whose
// message was already deleted is a no-op success (idempotent retry);
// deleting an unknown handle is ErrReceiptHandleInvalid.
func (q *Queue) Delete(handle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, tombstoned := q.tombstones[handle]; tombstoned {
		return nil
	}

	msg, ok := q.byHandle[handle]
	if !ok {
		return ErrReceiptHandleInvalid(handle)
	}

	now := q.clock.Now()

	delete(q.byHandle, handle)
	delete(q.byID, msg.ID)

	if q.fifo {
		delete(q.inFlight, msg.GroupID)
	}

	msg.State = StateDeleted
	msg.DeletedAt = now
	q.tombstones[handle] = now
	q.modified = now
	q.signalLocked()

	return nil
}

// ChangeVisibility updates the visibility deadline of an in-flight
// message. A timeout of 0 makes the message immediately receivable again.
func (q *Queue) ChangeVisibility(handle string, timeout time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	msg, ok := q.byHandle[handle]
	if !ok {
		return ErrReceiptHandleInvalid(handle)
	}

	now := q.clock.Now()
	msg.VisibleAt = now.Add(timeout)
	q.modified = now
	q.signalLocked()

	return nil
}

// Purge discards every message currently in the queue. Rejects a second
// purge within 60 seconds of the last one, matching real SQS throttling.
func (q *Queue) Purge() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.clock.Now()
	if !q.lastPurge.IsZero() && now.Sub(q.lastPurge) < tombstoneWindow {
		return ErrPurgeInProgress(q.name)
	}

	q.pending = nil
	q.groups = make(map[string][]*Message)
	q.groupOrder = nil
	q.inFlight = make(map[string]*Message)
	q.byID = make(map[string]*Message)
	q.byHandle = make(map[string]*Message)
	q.lastPurge = now
	q.modified = now
	q.signalLocked()

	return nil
}

// ApproximateCounts reports the approximate-message-count family of queue
// attributes.
type ApproximateCounts struct {
	Visible   int
	InFlight  int
	Delayed   int
}

// Counts returns the queue's approximate message counts as of now.
func (q *Queue) Counts() ApproximateCounts {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.countsLocked(q.clock.Now())
}

func (q *Queue) countsLocked(now time.Time) ApproximateCounts {
	var c ApproximateCounts

	c.InFlight = len(q.byHandle)

	walk := func(msg *Message) {
		if msg.VisibleAt.After(now) {
			c.Delayed++
		} else {
			c.Visible++
		}
	}

	if q.fifo {
		for _, msgs := range q.groups {
			for _, msg := range msgs {
				walk(msg)
			}
		}
	} else {
		for _, msg := range q.pending {
			walk(msg)
		}
	}

	return c
}

// Attrs returns a copy of the queue's current attributes.
func (q *Queue) Attrs() Attributes {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.attrs
}

// SetAttrs merges into the queue's attributes only the fields whose keys
// were present in the original request (raw), leaving every other
// attribute untouched — SetQueueAttributes is a patch, not a replace, and
// legitimate zero/false values (VisibilityTimeout=0, DelaySeconds=0,
// ContentBasedDeduplication=false) must not be confused with "omitted".
// Called by the broker, which is responsible for any cross-queue
// validation (e.g. redrive cycle detection) before invoking this.
func (q *Queue) SetAttrs(raw map[string]string, updates Attributes, redrive *RedriveConfig, redriveSet bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := raw["VisibilityTimeout"]; ok {
		q.attrs.VisibilityTimeout = updates.VisibilityTimeout
	}

	if _, ok := raw["MessageRetentionPeriod"]; ok {
		q.attrs.MessageRetentionPeriod = updates.MessageRetentionPeriod
	}

	if _, ok := raw["MaximumMessageSize"]; ok {
		q.attrs.MaxMessageSize = updates.MaxMessageSize
	}

	if _, ok := raw["DelaySeconds"]; ok {
		q.attrs.DelaySeconds = updates.DelaySeconds
	}

	if _, ok := raw["ReceiveMessageWaitTimeSeconds"]; ok {
		q.attrs.ReceiveMessageWaitTime = updates.ReceiveMessageWaitTime
	}

	if _, ok := raw["ContentBasedDeduplication"]; ok {
		q.attrs.ContentBasedDeduplication = updates.ContentBasedDeduplication
	}

	if redriveSet {
		q.attrs.Redrive = redrive
	}

	q.modified = q.clock.Now()
}

// CreatedAt returns the queue's creation time.
func (q *Queue) CreatedAt() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.createdAt
}

// ModifiedAt returns the time attributes were last changed.
func (q *Queue) ModifiedAt() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.modified
}

// reclaimExpiredLocked returns every in-flight message whose visibility
// timeout has elapsed back to its deliverable pool (InFlight -> Visible),
// releasing the FIFO in-flight slot its group was holding. It is called
// both defensively at the start of every receive attempt and periodically
// by the Sweeper, so a message becomes re-deliverable as soon as either
// happens, whichever comes first.
func (q *Queue) reclaimExpiredLocked(now time.Time) {
	for handle, msg := range q.byHandle {
		if msg.VisibleAt.After(now) {
			continue
		}

		delete(q.byHandle, handle)

		msg.State = StateVisible
		msg.ReceiptHandle = ""

		if q.fifo {
			if q.inFlight[msg.GroupID] == msg {
				delete(q.inFlight, msg.GroupID)
			}

			q.groups[msg.GroupID] = append([]*Message{msg}, q.groups[msg.GroupID]...)
		} else {
			q.pending = append(q.pending, msg)
		}
	}
}

// sweep takes q.mu, reclaims expired in-flight messages, evicts dedup
// entries and tombstones older than their retention windows, and drops
// messages that outlived the queue's message retention period. Called by
// the Sweeper on every tick.
func (q *Queue) sweep(now time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.reclaimExpiredLocked(now)

	for k, e := range q.dedup {
		if !e.expiresAt.After(now) {
			delete(q.dedup, k)
		}
	}

	for h, at := range q.tombstones {
		if now.Sub(at) > tombstoneWindow {
			delete(q.tombstones, h)
		}
	}

	retention := q.attrs.MessageRetentionPeriod
	if retention <= 0 || retention > maxRetentionPeriod {
		retention = defaultRetentionPeriod
	}

	expired := func(msg *Message) bool {
		return now.Sub(msg.EnqueuedAt) > retention
	}

	if q.fifo {
		for gid, msgs := range q.groups {
			kept := msgs[:0]

			for _, msg := range msgs {
				if expired(msg) {
					delete(q.byID, msg.ID)

					continue
				}

				kept = append(kept, msg)
			}

			q.groups[gid] = kept
		}

		q.pruneEmptyGroupsLocked()
	} else {
		kept := q.pending[:0]

		for _, msg := range q.pending {
			if expired(msg) {
				delete(q.byID, msg.ID)

				continue
			}

			kept = append(kept, msg)
		}

		q.pending = kept
	}
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func md5OfAttributes(attrs map[string]MessageAttributeValue) string {
	// Deterministic ordering so the digest doesn't depend on map iteration.
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}

	sort.Strings(names)

	h := md5.New()

	for _, name := range names {
		v := attrs[name]
		fmt.Fprintf(h, "%s:%s:%s:%x;", name, v.DataType, v.StringValue, v.BinaryValue)
	}

	return hex.EncodeToString(h.Sum(nil))
}
