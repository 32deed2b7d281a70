package sqs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tonyellard/Ess-Queue-Ess/internal/engine"
)

// CreateQueue handles the CreateQueue action.
func (s *Service) CreateQueue(w http.ResponseWriter, r *http.Request) {
	var req CreateQueueRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.QueueName == "" {
		writeSQSError(w, "MissingParameter", "QueueName is required", http.StatusBadRequest)

		return
	}

	q, err := s.broker.CreateQueue(engine.CreateInput{Name: req.QueueName, Attributes: req.Attributes})
	if err != nil {
		writeEngineError(w, err)

		return
	}

	writeJSONResponse(w, CreateQueueResponse{QueueUrl: s.broker.QueueURL(q.Name())})
}

// DeleteQueue handles the DeleteQueue action.
func (s *Service) DeleteQueue(w http.ResponseWriter, r *http.Request) {
	var req DeleteQueueRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.QueueUrl == "" {
		writeSQSError(w, "MissingParameter", "QueueUrl is required", http.StatusBadRequest)

		return
	}

	if err := s.broker.DeleteQueue(req.QueueUrl); err != nil {
		writeEngineError(w, err)

		return
	}

	writeJSONResponse(w, struct{}{})
}

// ListQueues handles the ListQueues action.
func (s *Service) ListQueues(w http.ResponseWriter, r *http.Request) {
	var req ListQueuesRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	queues := s.broker.ListQueues(req.QueueNamePrefix)
	urls := make([]string, 0, len(queues))

	for _, q := range queues {
		urls = append(urls, s.broker.QueueURL(q.Name()))
	}

	writeJSONResponse(w, ListQueuesResponse{QueueUrls: urls})
}

// GetQueueUrl handles the GetQueueUrl action.
func (s *Service) GetQueueUrl(w http.ResponseWriter, r *http.Request) {
	var req GetQueueUrlRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.QueueName == "" {
		writeSQSError(w, "MissingParameter", "QueueName is required", http.StatusBadRequest)

		return
	}

	q, err := s.broker.GetQueue(req.QueueName)
	if err != nil {
		writeEngineError(w, err)

		return
	}

	writeJSONResponse(w, GetQueueUrlResponse{QueueUrl: s.broker.QueueURL(q.Name())})
}

// SendMessage handles the SendMessage action.
func (s *Service) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.QueueUrl == "" {
		writeSQSError(w, "MissingParameter", "QueueUrl is required", http.StatusBadRequest)

		return
	}

	if req.MessageBody == "" {
		writeSQSError(w, "MissingParameter", "MessageBody is required", http.StatusBadRequest)

		return
	}

	res, err := s.broker.Send(req.QueueUrl, toSendInput(req.MessageBody, req.DelaySeconds, req.MessageAttributes, req.MessageGroupId, req.MessageDeduplicationId))
	if err != nil {
		writeEngineError(w, err)

		return
	}

	writeJSONResponse(w, SendMessageResponse{
		MessageId:              res.MessageID,
		MD5OfMessageBody:       res.MD5OfBody,
		MD5OfMessageAttributes: res.MD5OfAttrs,
		SequenceNumber:         sequenceString(res.SequenceNum),
	})
}

// SendMessageBatch handles the SendMessageBatch action.
func (s *Service) SendMessageBatch(w http.ResponseWriter, r *http.Request) {
	var req SendMessageBatchRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.QueueUrl == "" {
		writeSQSError(w, "MissingParameter", "QueueUrl is required", http.StatusBadRequest)

		return
	}

	if len(req.Entries) == 0 {
		writeSQSError(w, "EmptyBatchRequest", "The batch request doesn't contain any entries", http.StatusBadRequest)

		return
	}

	resp := SendMessageBatchResponse{}

	for _, entry := range req.Entries {
		res, err := s.broker.Send(req.QueueUrl, toSendInput(entry.MessageBody, entry.DelaySeconds, entry.MessageAttributes, entry.MessageGroupId, entry.MessageDeduplicationId))
		if err != nil {
			resp.Failed = append(resp.Failed, toBatchError(entry.Id, err))

			continue
		}

		resp.Successful = append(resp.Successful, SendMessageBatchResultEntry{
			Id:                     entry.Id,
			MessageId:              res.MessageID,
			MD5OfMessageBody:       res.MD5OfBody,
			MD5OfMessageAttributes: res.MD5OfAttrs,
			SequenceNumber:         sequenceString(res.SequenceNum),
		})
	}

	writeJSONResponse(w, resp)
}

// ReceiveMessage handles the ReceiveMessage action.
func (s *Service) ReceiveMessage(w http.ResponseWriter, r *http.Request) {
	var req ReceiveMessageRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.QueueUrl == "" {
		writeSQSError(w, "MissingParameter", "QueueUrl is required", http.StatusBadRequest)

		return
	}

	in := engine.ReceiveInput{MaxMessages: int(req.MaxNumberOfMessages)}

	if req.VisibilityTimeout > 0 {
		vt := time.Duration(req.VisibilityTimeout) * time.Second
		in.VisibilityTimeout = &vt
	}

	wait := time.Duration(req.WaitTimeSeconds) * time.Second

	deliveries, err := s.broker.Receive(r.Context(), req.QueueUrl, in, wait)
	if err != nil {
		writeEngineError(w, err)

		return
	}

	messages := make([]Message, 0, len(deliveries))

	for _, d := range deliveries {
		messages = append(messages, toWireMessage(d, req.AttributeNames, req.MessageAttributeNames))
	}

	writeJSONResponse(w, ReceiveMessageResponse{Messages: messages})
}

// DeleteMessage handles the DeleteMessage action.
func (s *Service) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	var req DeleteMessageRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.QueueUrl == "" {
		writeSQSError(w, "MissingParameter", "QueueUrl is required", http.StatusBadRequest)

		return
	}

	if req.ReceiptHandle == "" {
		writeSQSError(w, "MissingParameter", "ReceiptHandle is required", http.StatusBadRequest)

		return
	}

	if err := s.broker.Delete(req.QueueUrl, req.ReceiptHandle); err != nil {
		writeEngineError(w, err)

		return
	}

	writeJSONResponse(w, struct{}{})
}

// DeleteMessageBatch handles the DeleteMessageBatch action.
func (s *Service) DeleteMessageBatch(w http.ResponseWriter, r *http.Request) {
	var req DeleteMessageBatchRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.QueueUrl == "" {
		writeSQSError(w, "MissingParameter", "QueueUrl is required", http.StatusBadRequest)

		return
	}

	if len(req.Entries) == 0 {
		writeSQSError(w, "EmptyBatchRequest", "The batch request doesn't contain any entries", http.StatusBadRequest)

		return
	}

	resp := DeleteMessageBatchResponse{}

	for _, entry := range req.Entries {
		if err := s.broker.Delete(req.QueueUrl, entry.ReceiptHandle); err != nil {
			resp.Failed = append(resp.Failed, toBatchError(entry.Id, err))

			continue
		}

		resp.Successful = append(resp.Successful, DeleteMessageBatchResultEntry{Id: entry.Id})
	}

	writeJSONResponse(w, resp)
}

// ChangeMessageVisibility handles the ChangeMessageVisibility action.
func (s *Service) ChangeMessageVisibility(w http.ResponseWriter, r *http.Request) {
	var req ChangeMessageVisibilityRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.QueueUrl == "" {
		writeSQSError(w, "MissingParameter", "QueueUrl is required", http.StatusBadRequest)

		return
	}

	if req.ReceiptHandle == "" {
		writeSQSError(w, "MissingParameter", "ReceiptHandle is required", http.StatusBadRequest)

		return
	}

	timeout := time.Duration(req.VisibilityTimeout) * time.Second

	if err := s.broker.ChangeVisibility(req.QueueUrl, req.ReceiptHandle, timeout); err != nil {
		writeEngineError(w, err)

		return
	}

	writeJSONResponse(w, struct{}{})
}

// ChangeMessageVisibilityBatch handles the ChangeMessageVisibilityBatch
// action.
func (s *Service) ChangeMessageVisibilityBatch(w http.ResponseWriter, r *http.Request) {
	var req ChangeMessageVisibilityBatchRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.QueueUrl == "" {
		writeSQSError(w, "MissingParameter", "QueueUrl is required", http.StatusBadRequest)

		return
	}

	if len(req.Entries) == 0 {
		writeSQSError(w, "EmptyBatchRequest", "The batch request doesn't contain any entries", http.StatusBadRequest)

		return
	}

	resp := ChangeMessageVisibilityBatchResponse{}

	for _, entry := range req.Entries {
		timeout := time.Duration(entry.VisibilityTimeout) * time.Second

		if err := s.broker.ChangeVisibility(req.QueueUrl, entry.ReceiptHandle, timeout); err != nil {
			resp.Failed = append(resp.Failed, toBatchError(entry.Id, err))

			continue
		}

		resp.Successful = append(resp.Successful, ChangeMessageVisibilityBatchResultEntry{Id: entry.Id})
	}

	writeJSONResponse(w, resp)
}

// PurgeQueue handles the PurgeQueue action.
func (s *Service) PurgeQueue(w http.ResponseWriter, r *http.Request) {
	var req PurgeQueueRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.QueueUrl == "" {
		writeSQSError(w, "MissingParameter", "QueueUrl is required", http.StatusBadRequest)

		return
	}

	if err := s.broker.Purge(req.QueueUrl); err != nil {
		writeEngineError(w, err)

		return
	}

	writeJSONResponse(w, struct{}{})
}

// GetQueueAttributes handles the GetQueueAttributes action.
func (s *Service) GetQueueAttributes(w http.ResponseWriter, r *http.Request) {
	var req GetQueueAttributesRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.QueueUrl == "" {
		writeSQSError(w, "MissingParameter", "QueueUrl is required", http.StatusBadRequest)

		return
	}

	attrs, err := s.broker.GetQueueAttributes(req.QueueUrl, req.AttributeNames)
	if err != nil {
		writeEngineError(w, err)

		return
	}

	writeJSONResponse(w, GetQueueAttributesResponse{Attributes: attrs})
}

// SetQueueAttributes handles the SetQueueAttributes action.
func (s *Service) SetQueueAttributes(w http.ResponseWriter, r *http.Request) {
	var req SetQueueAttributesRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.QueueUrl == "" {
		writeSQSError(w, "MissingParameter", "QueueUrl is required", http.StatusBadRequest)

		return
	}

	if err := s.broker.SetQueueAttributes(req.QueueUrl, req.Attributes); err != nil {
		writeEngineError(w, err)

		return
	}

	writeJSONResponse(w, struct{}{})
}

// ListDeadLetterSourceQueues handles the ListDeadLetterSourceQueues action.
func (s *Service) ListDeadLetterSourceQueues(w http.ResponseWriter, r *http.Request) {
	var req ListDeadLetterSourceQueuesRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.QueueUrl == "" {
		writeSQSError(w, "MissingParameter", "QueueUrl is required", http.StatusBadRequest)

		return
	}

	queues, err := s.broker.ListDeadLetterSourceQueues(req.QueueUrl)
	if err != nil {
		writeEngineError(w, err)

		return
	}

	urls := make([]string, 0, len(queues))
	for _, q := range queues {
		urls = append(urls, s.broker.QueueURL(q.Name()))
	}

	writeJSONResponse(w, ListDeadLetterSourceQueuesResponse{QueueUrls: urls})
}

// StartMessageMoveTask handles the StartMessageMoveTask action.
func (s *Service) StartMessageMoveTask(w http.ResponseWriter, r *http.Request) {
	var req StartMessageMoveTaskRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.SourceArn == "" {
		writeSQSError(w, "MissingParameter", "SourceArn is required", http.StatusBadRequest)

		return
	}

	var dest *engine.Queue

	if req.DestinationArn != "" {
		q, err := s.broker.GetQueue(req.DestinationArn)
		if err != nil {
			writeEngineError(w, err)

			return
		}

		dest = q
	}

	task, err := s.broker.StartMessageMoveTask(req.SourceArn, dest, float64(req.MaxNumberOfMessagesPerSecond))
	if err != nil {
		writeEngineError(w, err)

		return
	}

	writeJSONResponse(w, StartMessageMoveTaskResponse{TaskHandle: task.Snapshot().ID})
}

// CancelMessageMoveTask handles the CancelMessageMoveTask action.
func (s *Service) CancelMessageMoveTask(w http.ResponseWriter, r *http.Request) {
	var req CancelMessageMoveTaskRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.TaskHandle == "" {
		writeSQSError(w, "MissingParameter", "TaskHandle is required", http.StatusBadRequest)

		return
	}

	var moved int64

	if task, ok := s.broker.GetMoveTask(req.TaskHandle); ok {
		moved = task.Snapshot().ApproxMoved
	}

	if err := s.broker.CancelMessageMoveTask(req.TaskHandle); err != nil {
		writeEngineError(w, err)

		return
	}

	writeJSONResponse(w, CancelMessageMoveTaskResponse{ApproximateNumberOfMessagesMoved: moved})
}

// ListMessageMoveTasks handles the ListMessageMoveTasks action.
func (s *Service) ListMessageMoveTasks(w http.ResponseWriter, r *http.Request) {
	var req ListMessageMoveTasksRequest
	if err := readJSONRequest(r, &req); err != nil {
		writeSQSError(w, "InvalidParameterValue", "Failed to parse request body", http.StatusBadRequest)

		return
	}

	if req.SourceArn == "" {
		writeSQSError(w, "MissingParameter", "SourceArn is required", http.StatusBadRequest)

		return
	}

	snaps := s.broker.ListMessageMoveTasks(req.SourceArn)
	entries := make([]ListMessageMoveTasksResultEntry, 0, len(snaps))

	for _, snap := range snaps {
		entries = append(entries, ListMessageMoveTasksResultEntry{
			TaskHandle:                       snap.ID,
			Status:                           string(snap.Status),
			SourceArn:                        snap.SourceArn,
			ApproximateNumberOfMessagesMoved: snap.ApproxMoved,
			ApproximateNumberOfMessagesToMove: snap.ApproxTotal,
			StartedTimestamp:                 float64(snap.StartedAt.UnixMilli()) / 1000,
		})
	}

	writeJSONResponse(w, ListMessageMoveTasksResponse{Results: entries})
}

// toSendInput builds an engine.SendInput from wire-level request fields
// shared by SendMessage and each SendMessageBatch entry.
func toSendInput(body string, delaySeconds int32, attrs map[string]MessageAttributeValue, groupID, dedupID string) engine.SendInput {
	in := engine.SendInput{
		Body:            body,
		Attributes:      toEngineAttrs(attrs),
		GroupID:         groupID,
		DeduplicationID: dedupID,
	}

	if delaySeconds > 0 {
		d := time.Duration(delaySeconds) * time.Second
		in.DelaySeconds = &d
	}

	return in
}

func toEngineAttrs(attrs map[string]MessageAttributeValue) map[string]engine.MessageAttributeValue {
	if len(attrs) == 0 {
		return nil
	}

	out := make(map[string]engine.MessageAttributeValue, len(attrs))

	for name, v := range attrs {
		out[name] = engine.MessageAttributeValue{
			DataType:    v.DataType,
			StringValue: v.StringValue,
			BinaryValue: v.BinaryValue,
		}
	}

	return out
}

func fromEngineAttrs(attrs map[string]engine.MessageAttributeValue) map[string]MessageAttributeValue {
	if len(attrs) == 0 {
		return nil
	}

	out := make(map[string]MessageAttributeValue, len(attrs))

	for name, v := range attrs {
		out[name] = MessageAttributeValue{
			DataType:    v.DataType,
			StringValue: v.StringValue,
			BinaryValue: v.BinaryValue,
		}
	}

	return out
}

// toWireMessage renders a delivered message, filtering its system Attributes
// and MessageAttributes down to what the caller asked for (AttributeNames /
// MessageAttributeNames, either an explicit list or the "All" sentinel).
func toWireMessage(d engine.Delivery, attrNames, msgAttrNames []string) Message {
	snap := d.Message

	wire := Message{
		MessageId:     snap.ID,
		ReceiptHandle: d.ReceiptHandle,
		MD5OfBody:     snap.MD5OfBody,
		Body:          snap.Body,
	}

	full := map[string]string{
		"SenderId":                         "AIDACKCEVSQ6C2EXAMPLE",
		"SentTimestamp":                    itoa64(snap.EnqueuedAt.UnixMilli()),
		"ApproximateReceiveCount":          itoa(snap.ReceiveCount),
		"ApproximateFirstReceiveTimestamp": itoa64(snap.FirstReceived.UnixMilli()),
	}

	if snap.GroupID != "" {
		full["MessageGroupId"] = snap.GroupID
	}

	if snap.DedupID != "" {
		full["MessageDeduplicationId"] = snap.DedupID
	}

	if snap.SequenceNum > 0 {
		full["SequenceNumber"] = fmt.Sprintf("%d", snap.SequenceNum)
	}

	for k, v := range snap.SystemAttrs {
		full[k] = v
	}

	wire.Attributes = filterAttributes(full, attrNames)

	if wantsAny(msgAttrNames) {
		wire.MessageAttributes = fromEngineAttrs(snap.Attributes)

		if len(wire.MessageAttributes) > 0 {
			wire.MD5OfMessageAttributes = snap.MD5OfAttrs
		}
	}

	return wire
}

func filterAttributes(full map[string]string, requested []string) map[string]string {
	if len(requested) == 0 {
		return nil
	}

	if containsAll(requested) {
		return full
	}

	out := make(map[string]string)

	for _, name := range requested {
		if v, ok := full[name]; ok {
			out[name] = v
		}
	}

	return out
}

func containsAll(names []string) bool {
	for _, n := range names {
		if n == "All" {
			return true
		}
	}

	return false
}

func wantsAny(names []string) bool {
	return len(names) > 0
}

func sequenceString(n uint64) string {
	if n == 0 {
		return ""
	}

	return fmt.Sprintf("%d", n)
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}

func itoa64(n int64) string {
	return fmt.Sprintf("%d", n)
}

// toBatchError renders an engine error as a single batch-entry failure.
func toBatchError(id string, err error) BatchResultErrorEntry {
	var engErr *engine.Error
	if errors.As(err, &engErr) {
		return BatchResultErrorEntry{Id: id, SenderFault: true, Code: engErr.Code, Message: engErr.Message}
	}

	return BatchResultErrorEntry{Id: id, SenderFault: false, Code: "InternalError", Message: err.Error()}
}

// readJSONRequest reads and decodes JSON request body.
func readJSONRequest(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return nil
}

// writeJSONResponse writes a JSON response with HTTP 200 OK.
func writeJSONResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/x-amz-json-1.0")
	w.Header().Set("x-amzn-RequestId", uuid.New().String())
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

// writeSQSError writes an SQS error response in JSON format.
func writeSQSError(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/x-amz-json-1.0")
	w.Header().Set("x-amzn-RequestId", uuid.New().String())
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"__type":  code,
		"message": message,
	})
}

// engineErrorWire maps an internal engine error code onto the wire-level
// AWS error type/__type and HTTP status real SQS clients expect.
var engineErrorWire = map[string]struct {
	code   string
	status int
}{
	engine.CodeQueueDoesNotExist:    {"AWS.SimpleQueueService.NonExistentQueue", http.StatusBadRequest},
	engine.CodeQueueAlreadyExists:   {"QueueAlreadyExists", http.StatusBadRequest},
	engine.CodeQueueDeletedRecently: {"AWS.SimpleQueueService.QueueDeletedRecently", http.StatusBadRequest},
	engine.CodeInvalidParameter:     {"InvalidParameterValue", http.StatusBadRequest},
	engine.CodeReceiptHandleInvalid: {"ReceiptHandleIsInvalid", http.StatusBadRequest},
	engine.CodePurgeInProgress:      {"AWS.SimpleQueueService.PurgeQueueInProgress", http.StatusForbidden},
	engine.CodeOverLimit:            {"OverLimit", http.StatusForbidden},
	engine.CodeInternal:             {"InternalError", http.StatusInternalServerError},
}

// writeEngineError unwraps an *engine.Error (or falls back to InternalError
// for anything else) and writes it onto the wire.
func writeEngineError(w http.ResponseWriter, err error) {
	var engErr *engine.Error
	if errors.As(err, &engErr) {
		if wire, ok := engineErrorWire[engErr.Code]; ok {
			writeSQSError(w, wire.code, engErr.Message, wire.status)

			return
		}

		writeSQSError(w, engErr.Code, engErr.Message, http.StatusBadRequest)

		return
	}

	writeSQSError(w, "InternalError", "Internal server error", http.StatusInternalServerError)
}

// DispatchAction routes the request to the appropriate handler based on the
// X-Amz-Target header (set directly by JSON-protocol clients, or by the
// Query-protocol dispatcher before handing the request off).
func (s *Service) DispatchAction(w http.ResponseWriter, r *http.Request) {
	target := r.Header.Get("X-Amz-Target")
	action := strings.TrimPrefix(target, "AmazonSQS.")

	switch action {
	case "CreateQueue":
		s.CreateQueue(w, r)
	case "DeleteQueue":
		s.DeleteQueue(w, r)
	case "ListQueues":
		s.ListQueues(w, r)
	case "GetQueueUrl":
		s.GetQueueUrl(w, r)
	case "SendMessage":
		s.SendMessage(w, r)
	case "SendMessageBatch":
		s.SendMessageBatch(w, r)
	case "ReceiveMessage":
		s.ReceiveMessage(w, r)
	case "DeleteMessage":
		s.DeleteMessage(w, r)
	case "DeleteMessageBatch":
		s.DeleteMessageBatch(w, r)
	case "ChangeMessageVisibility":
		s.ChangeMessageVisibility(w, r)
	case "ChangeMessageVisibilityBatch":
		s.ChangeMessageVisibilityBatch(w, r)
	case "PurgeQueue":
		s.PurgeQueue(w, r)
	case "GetQueueAttributes":
		s.GetQueueAttributes(w, r)
	case "SetQueueAttributes":
		s.SetQueueAttributes(w, r)
	case "ListDeadLetterSourceQueues":
		s.ListDeadLetterSourceQueues(w, r)
	case "StartMessageMoveTask":
		s.StartMessageMoveTask(w, r)
	case "CancelMessageMoveTask":
		s.CancelMessageMoveTask(w, r)
	case "ListMessageMoveTasks":
		s.ListMessageMoveTasks(w, r)
	default:
		writeSQSError(w, "InvalidAction", "The action "+action+" is not valid", http.StatusBadRequest)
	}
}
