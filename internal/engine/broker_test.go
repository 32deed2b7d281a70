package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroker(t *testing.T) (*Broker, *ManualClock) {
	t.Helper()

	clock := NewManualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	b := NewBroker("http://localhost:4566", WithClock(clock))

	return b, clock
}

func TestBroker_CreateQueueIdempotent(t *testing.T) {
	b, _ := newTestBroker(t)

	q1, err := b.CreateQueue(CreateInput{Name: "orders"})
	require.NoError(t, err)

	q2, err := b.CreateQueue(CreateInput{Name: "orders"})
	require.NoError(t, err)
	assert.Same(t, q1, q2)

	_, err = b.CreateQueue(CreateInput{Name: "orders", Attributes: map[string]string{"VisibilityTimeout": "99"}})
	require.Error(t, err)

	var engErr *Error
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, CodeQueueAlreadyExists, engErr.Code)
}

func TestBroker_CreateQueueRejectsReuseDuringGracePeriod(t *testing.T) {
	b, clock := newTestBroker(t)

	_, err := b.CreateQueue(CreateInput{Name: "orders"})
	require.NoError(t, err)
	require.NoError(t, b.DeleteQueue("orders"))

	_, err = b.CreateQueue(CreateInput{Name: "orders"})
	require.Error(t, err)

	var engErr *Error
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, CodeQueueDeletedRecently, engErr.Code)

	clock.Advance(61 * time.Second)

	_, err = b.CreateQueue(CreateInput{Name: "orders"})
	require.NoError(t, err)
}

func TestBroker_SendReceiveDelete(t *testing.T) {
	b, _ := newTestBroker(t)

	_, err := b.CreateQueue(CreateInput{Name: "orders"})
	require.NoError(t, err)

	res, err := b.Send("orders", SendInput{Body: "payload"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.MessageID)

	deliveries, err := b.Receive(context.Background(), "orders", ReceiveInput{MaxMessages: 1}, 0)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, "payload", deliveries[0].Message.Body)

	require.NoError(t, b.Delete("orders", deliveries[0].ReceiptHandle))

	// A retried delete of the same handle is idempotent.
	require.NoError(t, b.Delete("orders", deliveries[0].ReceiptHandle))

	// An unknown handle is rejected.
	err = b.Delete("orders", "never-issued")
	require.Error(t, err)

	var engErr *Error
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, CodeReceiptHandleInvalid, engErr.Code)
}

func TestBroker_VisibilityTimeoutReturnsMessage(t *testing.T) {
	b, clock := newTestBroker(t)

	_, err := b.CreateQueue(CreateInput{Name: "orders"})
	require.NoError(t, err)

	_, err = b.Send("orders", SendInput{Body: "payload"})
	require.NoError(t, err)

	timeout := 30 * time.Second

	deliveries, err := b.Receive(context.Background(), "orders", ReceiveInput{MaxMessages: 1, VisibilityTimeout: &timeout}, 0)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)

	// Immediately after delivery the message is not receivable again.
	again, err := b.Receive(context.Background(), "orders", ReceiveInput{MaxMessages: 1}, 0)
	require.NoError(t, err)
	assert.Empty(t, again)

	clock.Advance(31 * time.Second)

	again, err = b.Receive(context.Background(), "orders", ReceiveInput{MaxMessages: 1}, 0)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, 2, again[0].Message.ReceiveCount)
}

func TestBroker_FIFORequiresGroupAndDedup(t *testing.T) {
	b, _ := newTestBroker(t)

	_, err := b.CreateQueue(CreateInput{Name: "orders.fifo", Attributes: map[string]string{"FifoQueue": "true"}})
	require.NoError(t, err)

	_, err = b.Send("orders.fifo", SendInput{Body: "payload"})
	require.Error(t, err)

	_, err = b.Send("orders.fifo", SendInput{Body: "payload", GroupID: "g1"})
	require.Error(t, err, "FIFO queues without content-based dedup require an explicit dedup id")

	res, err := b.Send("orders.fifo", SendInput{Body: "payload", GroupID: "g1", DeduplicationID: "d1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.SequenceNum)

	// Retrying with the same dedup id within the window returns the
	// original message identity without enqueueing a second message.
	retry, err := b.Send("orders.fifo", SendInput{Body: "payload-changed", GroupID: "g1", DeduplicationID: "d1"})
	require.NoError(t, err)
	assert.Equal(t, res.MessageID, retry.MessageID)

	deliveries, err := b.Receive(context.Background(), "orders.fifo", ReceiveInput{MaxMessages: 10}, 0)
	require.NoError(t, err)
	assert.Len(t, deliveries, 1)
}

func TestBroker_FIFOGroupFairness(t *testing.T) {
	b, _ := newTestBroker(t)

	_, err := b.CreateQueue(CreateInput{Name: "orders.fifo", Attributes: map[string]string{
		"FifoQueue":                 "true",
		"ContentBasedDeduplication": "true",
	}})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := b.Send("orders.fifo", SendInput{Body: "a-payload", GroupID: "group-a"})
		require.NoError(t, err)

		_, err = b.Send("orders.fifo", SendInput{Body: "b-payload", GroupID: "group-b"})
		require.NoError(t, err)
	}

	// Receiving one message from group-a leaves it busy; the next receive
	// must come from group-b rather than group-a's second message.
	first, err := b.Receive(context.Background(), "orders.fifo", ReceiveInput{MaxMessages: 1}, 0)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "group-a", first[0].Message.GroupID)

	second, err := b.Receive(context.Background(), "orders.fifo", ReceiveInput{MaxMessages: 1}, 0)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "group-b", second[0].Message.GroupID, "a busy group must not be revisited before its in-flight message resolves")
}

func TestBroker_VisibilityTimeoutReclaimViaSweep(t *testing.T) {
	b, clock := newTestBroker(t)

	_, err := b.CreateQueue(CreateInput{Name: "orders"})
	require.NoError(t, err)

	_, err = b.Send("orders", SendInput{Body: "payload"})
	require.NoError(t, err)

	timeout := 30 * time.Second

	deliveries, err := b.Receive(context.Background(), "orders", ReceiveInput{MaxMessages: 1, VisibilityTimeout: &timeout}, 0)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)

	clock.Advance(31 * time.Second)

	q, err := b.GetQueue("orders")
	require.NoError(t, err)

	// The sweeper, not a receive call, is what observes the expiry here.
	q.sweep(clock.Now())

	counts := q.Counts()
	assert.Equal(t, 0, counts.InFlight)
	assert.Equal(t, 1, counts.Visible)

	again, err := b.Receive(context.Background(), "orders", ReceiveInput{MaxMessages: 1}, 0)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, 2, again[0].Message.ReceiveCount)
}

func TestBroker_SetQueueAttributesPartialUpdatePreservesOthers(t *testing.T) {
	b, _ := newTestBroker(t)

	_, err := b.CreateQueue(CreateInput{Name: "orders.fifo", Attributes: map[string]string{
		"FifoQueue":                 "true",
		"ContentBasedDeduplication": "true",
		"DelaySeconds":              "5",
	}})
	require.NoError(t, err)

	require.NoError(t, b.SetQueueAttributes("orders.fifo", map[string]string{"VisibilityTimeout": "90"}))

	q, err := b.GetQueue("orders.fifo")
	require.NoError(t, err)

	attrs := q.Attrs()
	assert.Equal(t, 90*time.Second, attrs.VisibilityTimeout)
	assert.Equal(t, 5*time.Second, attrs.DelaySeconds, "a partial SetQueueAttributes must not reset unrelated attributes")
	assert.True(t, attrs.ContentBasedDeduplication, "a partial SetQueueAttributes must not disable content-based dedup on a FIFO queue")
}

func TestBroker_RedrivePromotesAfterMaxReceiveCount(t *testing.T) {
	b, _ := newTestBroker(t)

	_, err := b.CreateQueue(CreateInput{Name: "dlq"})
	require.NoError(t, err)

	redrivePolicy := `{"deadLetterTargetArn":"` + b.arnFor("dlq") + `","maxReceiveCount":2}`

	_, err = b.CreateQueue(CreateInput{Name: "src", Attributes: map[string]string{"RedrivePolicy": redrivePolicy}})
	require.NoError(t, err)

	_, err = b.Send("src", SendInput{Body: "undeliverable"})
	require.NoError(t, err)

	zero := time.Duration(0)

	for i := 0; i < 3; i++ {
		_, err := b.Receive(context.Background(), "src", ReceiveInput{MaxMessages: 1, VisibilityTimeout: &zero}, 0)
		require.NoError(t, err)
	}

	fromSrc, err := b.Receive(context.Background(), "src", ReceiveInput{MaxMessages: 1}, 0)
	require.NoError(t, err)
	assert.Empty(t, fromSrc, "the message should have moved to the DLQ, not stayed in src")

	fromDLQ, err := b.Receive(context.Background(), "dlq", ReceiveInput{MaxMessages: 1}, 0)
	require.NoError(t, err)
	require.Len(t, fromDLQ, 1)
	assert.Equal(t, "undeliverable", fromDLQ[0].Message.Body)
	assert.Equal(t, b.arnFor("src"), fromDLQ[0].Message.SystemAttrs["DeadLetterQueueSourceArn"])
}

func TestBroker_RedriveCycleRejected(t *testing.T) {
	b, _ := newTestBroker(t)

	_, err := b.CreateQueue(CreateInput{Name: "a"})
	require.NoError(t, err)
	_, err = b.CreateQueue(CreateInput{Name: "b"})
	require.NoError(t, err)

	policyToB := `{"deadLetterTargetArn":"` + b.arnFor("b") + `","maxReceiveCount":2}`
	require.NoError(t, b.SetQueueAttributes("a", map[string]string{"RedrivePolicy": policyToB}))

	policyToA := `{"deadLetterTargetArn":"` + b.arnFor("a") + `","maxReceiveCount":2}`
	err = b.SetQueueAttributes("b", map[string]string{"RedrivePolicy": policyToA})
	require.Error(t, err)

	var engErr *Error
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, CodeInvalidParameter, engErr.Code)
}

func TestBroker_PurgeThrottled(t *testing.T) {
	b, clock := newTestBroker(t)

	_, err := b.CreateQueue(CreateInput{Name: "orders"})
	require.NoError(t, err)

	_, err = b.Send("orders", SendInput{Body: "payload"})
	require.NoError(t, err)

	require.NoError(t, b.Purge("orders"))

	err = b.Purge("orders")
	require.Error(t, err)

	var engErr *Error
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, CodePurgeInProgress, engErr.Code)

	clock.Advance(61 * time.Second)
	require.NoError(t, b.Purge("orders"))
}

func TestBroker_ReceiveLongPollWakesOnSend(t *testing.T) {
	b, _ := newTestBroker(t)

	_, err := b.CreateQueue(CreateInput{Name: "orders"})
	require.NoError(t, err)

	done := make(chan []Delivery, 1)

	go func() {
		deliveries, err := b.Receive(context.Background(), "orders", ReceiveInput{MaxMessages: 1}, 2*time.Second)
		require.NoError(t, err)
		done <- deliveries
	}()

	time.Sleep(50 * time.Millisecond)

	_, err = b.Send("orders", SendInput{Body: "payload"})
	require.NoError(t, err)

	select {
	case deliveries := <-done:
		require.Len(t, deliveries, 1)
		assert.Equal(t, "payload", deliveries[0].Message.Body)
	case <-time.After(2 * time.Second):
		t.Fatal("long-poll receive did not wake on send")
	}
}
