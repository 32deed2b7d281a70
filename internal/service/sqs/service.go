package sqs

import (
	"github.com/tonyellard/Ess-Queue-Ess/internal/engine"
	"github.com/tonyellard/Ess-Queue-Ess/internal/service"
)

const defaultBaseURL = "http://localhost:4566"

// defaultService is the instance self-registered at package init, shared
// with cmd/ess-queue-ess so the admin introspection service can be wired
// onto the exact same broker rather than standing up a second one.
var defaultService = New(engine.NewBroker(defaultBaseURL))

func init() {
	defaultService.sweeper.Start()
	service.Register(defaultService)
}

// DefaultBroker returns the broker backing the package-level service
// registered at init time.
func DefaultBroker() *engine.Broker {
	return defaultService.broker
}

// actionNames lists every Query-protocol action this service answers, so
// the server's Query dispatcher can route Action= form values directly
// instead of guessing a handler from a single-entry map.
var actionNames = []string{
	"CreateQueue",
	"DeleteQueue",
	"ListQueues",
	"GetQueueUrl",
	"SendMessage",
	"SendMessageBatch",
	"ReceiveMessage",
	"DeleteMessage",
	"DeleteMessageBatch",
	"ChangeMessageVisibility",
	"ChangeMessageVisibilityBatch",
	"PurgeQueue",
	"GetQueueAttributes",
	"SetQueueAttributes",
	"ListDeadLetterSourceQueues",
	"StartMessageMoveTask",
	"CancelMessageMoveTask",
	"ListMessageMoveTasks",
}

// Service implements the SQS service over internal/engine.
type Service struct {
	broker  *engine.Broker
	sweeper *engine.Sweeper
}

// New creates a new SQS service over the given broker, with its own
// background sweeper.
func New(broker *engine.Broker) *Service {
	return &Service{
		broker:  broker,
		sweeper: engine.NewSweeper(broker, 0, nil),
	}
}

// Name returns the service name.
func (s *Service) Name() string {
	return "sqs"
}

// Prefix returns the URL prefix for this service.
func (s *Service) Prefix() string {
	return ""
}

// RegisterRoutes registers the SQS routes.
// SQS uses AWS JSON 1.0 (and, via the Query dispatcher, AWS Query) protocol
// selected by X-Amz-Target/Action rather than path routing, so no direct
// routes are registered here.
func (s *Service) RegisterRoutes(_ service.Router) {}

// TargetPrefix returns the X-Amz-Target header prefix for SQS.
func (s *Service) TargetPrefix() string {
	return "AmazonSQS"
}

// Actions returns every Query-protocol action name SQS answers.
func (s *Service) Actions() []string {
	return actionNames
}
