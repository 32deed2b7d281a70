package sqs_test

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonyellard/Ess-Queue-Ess/internal/server"
	_ "github.com/tonyellard/Ess-Queue-Ess/internal/service/sqs"
)

func newClient(t *testing.T) *awssqs.Client {
	t.Helper()

	cfg := server.DefaultConfig()
	srv := server.New(cfg)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	awsCfg, err := config.LoadDefaultConfig(t.Context(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	require.NoError(t, err)

	return awssqs.NewFromConfig(awsCfg, func(o *awssqs.Options) {
		o.BaseEndpoint = aws.String(ts.URL)
	})
}

func TestSQSSDK_SendAndReceive(t *testing.T) {
	client := newClient(t)
	ctx := t.Context()

	create, err := client.CreateQueue(ctx, &awssqs.CreateQueueInput{QueueName: aws.String("sdk-send-receive")})
	require.NoError(t, err)

	send, err := client.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    create.QueueUrl,
		MessageBody: aws.String("hello"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, *send.MessageId)

	recv, err := client.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
		QueueUrl:            create.QueueUrl,
		MaxNumberOfMessages: 1,
	})
	require.NoError(t, err)
	require.Len(t, recv.Messages, 1)
	assert.Equal(t, "hello", *recv.Messages[0].Body)

	_, err = client.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      create.QueueUrl,
		ReceiptHandle: recv.Messages[0].ReceiptHandle,
	})
	require.NoError(t, err)

	// Retrying the delete against the same (now tombstoned) handle must still
	// succeed rather than erroring.
	_, err = client.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      create.QueueUrl,
		ReceiptHandle: recv.Messages[0].ReceiptHandle,
	})
	require.NoError(t, err)
}

func TestSQSSDK_SendMessageBatch(t *testing.T) {
	client := newClient(t)
	ctx := t.Context()

	create, err := client.CreateQueue(ctx, &awssqs.CreateQueueInput{QueueName: aws.String("sdk-batch")})
	require.NoError(t, err)

	entries := make([]types.SendMessageBatchRequestEntry, 0, 5)
	for i := 0; i < 5; i++ {
		entries = append(entries, types.SendMessageBatchRequestEntry{
			Id:          aws.String(fmt.Sprintf("entry-%d", i)),
			MessageBody: aws.String(fmt.Sprintf("body-%d", i)),
		})
	}

	batch, err := client.SendMessageBatch(ctx, &awssqs.SendMessageBatchInput{
		QueueUrl: create.QueueUrl,
		Entries:  entries,
	})
	require.NoError(t, err)
	assert.Len(t, batch.Successful, 5)
	assert.Empty(t, batch.Failed)

	recv, err := client.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
		QueueUrl:            create.QueueUrl,
		MaxNumberOfMessages: 10,
	})
	require.NoError(t, err)
	assert.Len(t, recv.Messages, 5)
}

func TestSQSSDK_FIFODeduplication(t *testing.T) {
	client := newClient(t)
	ctx := t.Context()

	create, err := client.CreateQueue(ctx, &awssqs.CreateQueueInput{
		QueueName: aws.String("sdk-fifo.fifo"),
		Attributes: map[string]string{
			"FifoQueue":                 "true",
			"ContentBasedDeduplication": "true",
		},
	})
	require.NoError(t, err)

	first, err := client.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:       create.QueueUrl,
		MessageBody:    aws.String("same body"),
		MessageGroupId: aws.String("group-a"),
	})
	require.NoError(t, err)

	second, err := client.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:       create.QueueUrl,
		MessageBody:    aws.String("same body"),
		MessageGroupId: aws.String("group-a"),
	})
	require.NoError(t, err)

	assert.Equal(t, *first.MessageId, *second.MessageId, "content-based dedup should collapse the retry to the original message")

	recv, err := client.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
		QueueUrl:            create.QueueUrl,
		MaxNumberOfMessages: 10,
	})
	require.NoError(t, err)
	assert.Len(t, recv.Messages, 1)
}

func TestSQSSDK_FIFOGroupOrdering(t *testing.T) {
	client := newClient(t)
	ctx := t.Context()

	create, err := client.CreateQueue(ctx, &awssqs.CreateQueueInput{
		QueueName: aws.String("sdk-fifo-order.fifo"),
		Attributes: map[string]string{
			"FifoQueue":                 "true",
			"ContentBasedDeduplication": "true",
		},
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := client.SendMessage(ctx, &awssqs.SendMessageInput{
			QueueUrl:       create.QueueUrl,
			MessageBody:    aws.String(fmt.Sprintf("group-a-msg-%d", i)),
			MessageGroupId: aws.String("group-a"),
		})
		require.NoError(t, err)
	}

	// With the first message of group-a still in flight, a second receive
	// must not be able to jump the group's internal order.
	first, err := client.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
		QueueUrl:            create.QueueUrl,
		MaxNumberOfMessages: 1,
	})
	require.NoError(t, err)
	require.Len(t, first.Messages, 1)
	assert.Equal(t, "group-a-msg-0", *first.Messages[0].Body)

	second, err := client.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
		QueueUrl:            create.QueueUrl,
		MaxNumberOfMessages: 1,
	})
	require.NoError(t, err)
	assert.Empty(t, second.Messages, "a busy group must not deliver its next message until the in-flight one is resolved")
}

func TestSQSSDK_DeadLetterRedrive(t *testing.T) {
	client := newClient(t)
	ctx := t.Context()

	dlq, err := client.CreateQueue(ctx, &awssqs.CreateQueueInput{QueueName: aws.String("sdk-dlq")})
	require.NoError(t, err)

	dlqAttrs, err := client.GetQueueAttributes(ctx, &awssqs.GetQueueAttributesInput{
		QueueUrl:       dlq.QueueUrl,
		AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameQueueArn},
	})
	require.NoError(t, err)
	dlqArn := dlqAttrs.Attributes["QueueArn"]

	redrivePolicy := fmt.Sprintf(`{"deadLetterTargetArn":"%s","maxReceiveCount":2}`, dlqArn)

	// A queue-level VisibilityTimeout of 0 makes each receive below
	// redeliver at once; a per-call VisibilityTimeout of 0 is not sent by the
	// SDK and the handler treats it as "use the queue default" anyway.
	src, err := client.CreateQueue(ctx, &awssqs.CreateQueueInput{
		QueueName: aws.String("sdk-src"),
		Attributes: map[string]string{
			"RedrivePolicy":     redrivePolicy,
			"VisibilityTimeout": "0",
		},
	})
	require.NoError(t, err)

	_, err = client.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    src.QueueUrl,
		MessageBody: aws.String("undeliverable"),
	})
	require.NoError(t, err)

	// Receive the same message three times without deleting it, making it
	// exceed maxReceiveCount and promoting it into the dead-letter queue.
	for i := 0; i < 3; i++ {
		_, err := client.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
			QueueUrl:            src.QueueUrl,
			MaxNumberOfMessages: 1,
			VisibilityTimeout:   0,
		})
		require.NoError(t, err)
	}

	recv, err := client.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
		QueueUrl:            dlq.QueueUrl,
		MaxNumberOfMessages: 1,
	})
	require.NoError(t, err)
	require.Len(t, recv.Messages, 1, "the message should have been promoted to the dead-letter queue")
	assert.Equal(t, "undeliverable", *recv.Messages[0].Body)
}

func TestSQSSDK_QueueAttributesRoundTrip(t *testing.T) {
	client := newClient(t)
	ctx := t.Context()

	create, err := client.CreateQueue(ctx, &awssqs.CreateQueueInput{QueueName: aws.String("sdk-attrs")})
	require.NoError(t, err)

	_, err = client.SetQueueAttributes(ctx, &awssqs.SetQueueAttributesInput{
		QueueUrl: create.QueueUrl,
		Attributes: map[string]string{
			"VisibilityTimeout": "90",
		},
	})
	require.NoError(t, err)

	got, err := client.GetQueueAttributes(ctx, &awssqs.GetQueueAttributesInput{
		QueueUrl:       create.QueueUrl,
		AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameAll},
	})
	require.NoError(t, err)
	assert.Equal(t, "90", got.Attributes["VisibilityTimeout"])
	assert.Contains(t, got.Attributes, "QueueArn")
}

func TestSQSSDK_NonExistentQueueError(t *testing.T) {
	client := newClient(t)
	ctx := t.Context()

	_, err := client.GetQueueUrl(ctx, &awssqs.GetQueueUrlInput{QueueName: aws.String("does-not-exist-" + time.Now().String())})
	require.Error(t, err)

	var notFound *types.QueueDoesNotExist
	assert.ErrorAs(t, err, &notFound)
}
