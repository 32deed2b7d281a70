// Package sqs emulates the Amazon SQS JSON and Query protocol surface over
// an in-process internal/engine.Broker.
package sqs

// MessageAttributeValue mirrors the AWS wire shape for a single message
// attribute: exactly one of StringValue/BinaryValue is populated, selected
// by DataType ("String", "Number", "Binary", or a custom "String.foo"
// label).
type MessageAttributeValue struct {
	DataType         string   `json:"DataType"`
	StringValue      string   `json:"StringValue,omitempty"`
	BinaryValue      []byte   `json:"BinaryValue,omitempty"`
	StringListValues []string `json:"StringListValues,omitempty"`
	BinaryListValues [][]byte `json:"BinaryListValues,omitempty"`
}

// Message is the wire representation of a delivered message.
type Message struct {
	MessageId              string                            `json:"MessageId"`
	ReceiptHandle          string                            `json:"ReceiptHandle"`
	MD5OfBody              string                            `json:"MD5OfBody"`
	Body                   string                            `json:"Body"`
	Attributes             map[string]string                 `json:"Attributes,omitempty"`
	MD5OfMessageAttributes string                             `json:"MD5OfMessageAttributes,omitempty"`
	MessageAttributes      map[string]MessageAttributeValue `json:"MessageAttributes,omitempty"`
}

// CreateQueueRequest is the AmazonSQS.CreateQueue request body.
type CreateQueueRequest struct {
	QueueName  string            `json:"QueueName"`
	Attributes map[string]string `json:"Attributes,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
}

// CreateQueueResponse is the AmazonSQS.CreateQueue response body.
type CreateQueueResponse struct {
	QueueUrl string `json:"QueueUrl"`
}

// DeleteQueueRequest is the AmazonSQS.DeleteQueue request body.
type DeleteQueueRequest struct {
	QueueUrl string `json:"QueueUrl"`
}

// ListQueuesRequest is the AmazonSQS.ListQueues request body.
type ListQueuesRequest struct {
	QueueNamePrefix string `json:"QueueNamePrefix,omitempty"`
	MaxResults      int32  `json:"MaxResults,omitempty"`
	NextToken       string `json:"NextToken,omitempty"`
}

// ListQueuesResponse is the AmazonSQS.ListQueues response body.
type ListQueuesResponse struct {
	QueueUrls []string `json:"QueueUrls,omitempty"`
	NextToken string   `json:"NextToken,omitempty"`
}

// GetQueueUrlRequest is the AmazonSQS.GetQueueUrl request body.
type GetQueueUrlRequest struct {
	QueueName              string `json:"QueueName"`
	QueueOwnerAWSAccountId string `json:"QueueOwnerAWSAccountId,omitempty"`
}

// GetQueueUrlResponse is the AmazonSQS.GetQueueUrl response body.
type GetQueueUrlResponse struct {
	QueueUrl string `json:"QueueUrl"`
}

// SendMessageRequest is the AmazonSQS.SendMessage request body.
type SendMessageRequest struct {
	QueueUrl               string                            `json:"QueueUrl"`
	MessageBody            string                            `json:"MessageBody"`
	DelaySeconds           int32                             `json:"DelaySeconds,omitempty"`
	MessageAttributes      map[string]MessageAttributeValue `json:"MessageAttributes,omitempty"`
	MessageGroupId         string                            `json:"MessageGroupId,omitempty"`
	MessageDeduplicationId string                            `json:"MessageDeduplicationId,omitempty"`
}

// SendMessageResponse is the AmazonSQS.SendMessage response body.
type SendMessageResponse struct {
	MessageId              string `json:"MessageId"`
	MD5OfMessageBody       string `json:"MD5OfMessageBody"`
	MD5OfMessageAttributes string `json:"MD5OfMessageAttributes,omitempty"`
	SequenceNumber         string `json:"SequenceNumber,omitempty"`
}

// SendMessageBatchRequestEntry is one entry of a SendMessageBatch request.
type SendMessageBatchRequestEntry struct {
	Id                     string                            `json:"Id"`
	MessageBody            string                            `json:"MessageBody"`
	DelaySeconds           int32                             `json:"DelaySeconds,omitempty"`
	MessageAttributes      map[string]MessageAttributeValue `json:"MessageAttributes,omitempty"`
	MessageGroupId         string                            `json:"MessageGroupId,omitempty"`
	MessageDeduplicationId string                            `json:"MessageDeduplicationId,omitempty"`
}

// SendMessageBatchRequest is the AmazonSQS.SendMessageBatch request body.
type SendMessageBatchRequest struct {
	QueueUrl string                         `json:"QueueUrl"`
	Entries  []SendMessageBatchRequestEntry `json:"Entries"`
}

// SendMessageBatchResultEntry is one successful entry of a
// SendMessageBatch response.
type SendMessageBatchResultEntry struct {
	Id                     string `json:"Id"`
	MessageId              string `json:"MessageId"`
	MD5OfMessageBody       string `json:"MD5OfMessageBody"`
	MD5OfMessageAttributes string `json:"MD5OfMessageAttributes,omitempty"`
	SequenceNumber         string `json:"SequenceNumber,omitempty"`
}

// BatchResultErrorEntry is one failed entry of a batch response.
type BatchResultErrorEntry struct {
	Id          string `json:"Id"`
	SenderFault bool   `json:"SenderFault"`
	Code        string `json:"Code"`
	Message     string `json:"Message,omitempty"`
}

// SendMessageBatchResponse is the AmazonSQS.SendMessageBatch response body.
type SendMessageBatchResponse struct {
	Successful []SendMessageBatchResultEntry `json:"Successful,omitempty"`
	Failed     []BatchResultErrorEntry       `json:"Failed,omitempty"`
}

// ReceiveMessageRequest is the AmazonSQS.ReceiveMessage request body.
type ReceiveMessageRequest struct {
	QueueUrl              string   `json:"QueueUrl"`
	MaxNumberOfMessages   int32    `json:"MaxNumberOfMessages,omitempty"`
	VisibilityTimeout     int32    `json:"VisibilityTimeout,omitempty"`
	WaitTimeSeconds       int32    `json:"WaitTimeSeconds,omitempty"`
	AttributeNames        []string `json:"AttributeNames,omitempty"`
	MessageAttributeNames []string `json:"MessageAttributeNames,omitempty"`
}

// ReceiveMessageResponse is the AmazonSQS.ReceiveMessage response body.
type ReceiveMessageResponse struct {
	Messages []Message `json:"Messages,omitempty"`
}

// DeleteMessageRequest is the AmazonSQS.DeleteMessage request body.
type DeleteMessageRequest struct {
	QueueUrl      string `json:"QueueUrl"`
	ReceiptHandle string `json:"ReceiptHandle"`
}

// DeleteMessageBatchRequestEntry is one entry of a DeleteMessageBatch
// request.
type DeleteMessageBatchRequestEntry struct {
	Id            string `json:"Id"`
	ReceiptHandle string `json:"ReceiptHandle"`
}

// DeleteMessageBatchRequest is the AmazonSQS.DeleteMessageBatch request
// body.
type DeleteMessageBatchRequest struct {
	QueueUrl string                           `json:"QueueUrl"`
	Entries  []DeleteMessageBatchRequestEntry `json:"Entries"`
}

// DeleteMessageBatchResultEntry is one successful entry of a
// DeleteMessageBatch response.
type DeleteMessageBatchResultEntry struct {
	Id string `json:"Id"`
}

// DeleteMessageBatchResponse is the AmazonSQS.DeleteMessageBatch response
// body.
type DeleteMessageBatchResponse struct {
	Successful []DeleteMessageBatchResultEntry `json:"Successful,omitempty"`
	Failed     []BatchResultErrorEntry         `json:"Failed,omitempty"`
}

// ChangeMessageVisibilityRequest is the AmazonSQS.ChangeMessageVisibility
// request body.
type ChangeMessageVisibilityRequest struct {
	QueueUrl          string `json:"QueueUrl"`
	ReceiptHandle     string `json:"ReceiptHandle"`
	VisibilityTimeout int32  `json:"VisibilityTimeout"`
}

// ChangeMessageVisibilityBatchRequestEntry is one entry of a
// ChangeMessageVisibilityBatch request.
type ChangeMessageVisibilityBatchRequestEntry struct {
	Id                string `json:"Id"`
	ReceiptHandle     string `json:"ReceiptHandle"`
	VisibilityTimeout int32  `json:"VisibilityTimeout,omitempty"`
}

// ChangeMessageVisibilityBatchRequest is the
// AmazonSQS.ChangeMessageVisibilityBatch request body.
type ChangeMessageVisibilityBatchRequest struct {
	QueueUrl string                                      `json:"QueueUrl"`
	Entries  []ChangeMessageVisibilityBatchRequestEntry `json:"Entries"`
}

// ChangeMessageVisibilityBatchResultEntry is one successful entry of a
// ChangeMessageVisibilityBatch response.
type ChangeMessageVisibilityBatchResultEntry struct {
	Id string `json:"Id"`
}

// ChangeMessageVisibilityBatchResponse is the
// AmazonSQS.ChangeMessageVisibilityBatch response body.
type ChangeMessageVisibilityBatchResponse struct {
	Successful []ChangeMessageVisibilityBatchResultEntry `json:"Successful,omitempty"`
	Failed     []BatchResultErrorEntry                   `json:"Failed,omitempty"`
}

// PurgeQueueRequest is the AmazonSQS.PurgeQueue request body.
type PurgeQueueRequest struct {
	QueueUrl string `json:"QueueUrl"`
}

// GetQueueAttributesRequest is the AmazonSQS.GetQueueAttributes request
// body.
type GetQueueAttributesRequest struct {
	QueueUrl       string   `json:"QueueUrl"`
	AttributeNames []string `json:"AttributeNames,omitempty"`
}

// GetQueueAttributesResponse is the AmazonSQS.GetQueueAttributes response
// body.
type GetQueueAttributesResponse struct {
	Attributes map[string]string `json:"Attributes,omitempty"`
}

// SetQueueAttributesRequest is the AmazonSQS.SetQueueAttributes request
// body.
type SetQueueAttributesRequest struct {
	QueueUrl   string            `json:"QueueUrl"`
	Attributes map[string]string `json:"Attributes"`
}

// ListDeadLetterSourceQueuesRequest is the
// AmazonSQS.ListDeadLetterSourceQueues request body.
type ListDeadLetterSourceQueuesRequest struct {
	QueueUrl   string `json:"QueueUrl"`
	MaxResults int32  `json:"MaxResults,omitempty"`
	NextToken  string `json:"NextToken,omitempty"`
}

// ListDeadLetterSourceQueuesResponse is the
// AmazonSQS.ListDeadLetterSourceQueues response body.
type ListDeadLetterSourceQueuesResponse struct {
	QueueUrls []string `json:"queueUrls,omitempty"`
	NextToken string   `json:"NextToken,omitempty"`
}

// StartMessageMoveTaskRequest is the AmazonSQS.StartMessageMoveTask
// request body.
type StartMessageMoveTaskRequest struct {
	SourceArn                    string `json:"SourceArn"`
	DestinationArn               string `json:"DestinationArn,omitempty"`
	MaxNumberOfMessagesPerSecond int32  `json:"MaxNumberOfMessagesPerSecond,omitempty"`
}

// StartMessageMoveTaskResponse is the AmazonSQS.StartMessageMoveTask
// response body.
type StartMessageMoveTaskResponse struct {
	TaskHandle string `json:"TaskHandle"`
}

// CancelMessageMoveTaskRequest is the AmazonSQS.CancelMessageMoveTask
// request body.
type CancelMessageMoveTaskRequest struct {
	TaskHandle string `json:"TaskHandle"`
}

// CancelMessageMoveTaskResponse is the AmazonSQS.CancelMessageMoveTask
// response body.
type CancelMessageMoveTaskResponse struct {
	ApproximateNumberOfMessagesMoved int64 `json:"ApproximateNumberOfMessagesMoved"`
}

// ListMessageMoveTasksRequest is the AmazonSQS.ListMessageMoveTasks
// request body.
type ListMessageMoveTasksRequest struct {
	SourceArn  string `json:"SourceArn"`
	MaxResults int32  `json:"MaxResults,omitempty"`
}

// ListMessageMoveTasksResultEntry is one entry of a ListMessageMoveTasks
// response.
type ListMessageMoveTasksResultEntry struct {
	TaskHandle                        string  `json:"TaskHandle,omitempty"`
	Status                             string  `json:"Status,omitempty"`
	SourceArn                          string  `json:"SourceArn,omitempty"`
	DestinationArn                     string  `json:"DestinationArn,omitempty"`
	MaxNumberOfMessagesPerSecond       int32   `json:"MaxNumberOfMessagesPerSecond,omitempty"`
	ApproximateNumberOfMessagesMoved   int64   `json:"ApproximateNumberOfMessagesMoved,omitempty"`
	ApproximateNumberOfMessagesToMove  int64   `json:"ApproximateNumberOfMessagesToMove,omitempty"`
	StartedTimestamp                   float64 `json:"StartedTimestamp,omitempty"`
	FailureReason                      string  `json:"FailureReason,omitempty"`
}

// ListMessageMoveTasksResponse is the AmazonSQS.ListMessageMoveTasks
// response body.
type ListMessageMoveTasksResponse struct {
	Results []ListMessageMoveTasksResultEntry `json:"Results,omitempty"`
}
