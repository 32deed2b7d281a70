// Package admin exposes a read-only JSON introspection endpoint over the
// broker's queue directory, grounded on the original Ess-Queue-Ess
// project's "/admin/api/queues" surface (minus its HTML page — rendering a
// browser UI is not the concern this project exists to demonstrate).
package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tonyellard/Ess-Queue-Ess/internal/engine"
	"github.com/tonyellard/Ess-Queue-Ess/internal/service"
)

// Service implements service.Service, registering a single read-only route.
type Service struct {
	broker *engine.Broker
}

// New creates the admin service over the given broker.
func New(broker *engine.Broker) *Service {
	return &Service{broker: broker}
}

// Name returns the service name.
func (s *Service) Name() string { return "admin" }

// Prefix returns the path prefix this service owns.
func (s *Service) Prefix() string { return "/admin" }

// RegisterRoutes registers the queues introspection endpoint.
func (s *Service) RegisterRoutes(r service.Router) {
	r.HandleFunc(http.MethodGet, "/admin/api/queues", s.listQueues)
}

type queueView struct {
	Name                    string `json:"name"`
	Arn                     string `json:"arn"`
	Fifo                    bool   `json:"fifo"`
	CreatedAt               string `json:"created_at"`
	LastModified            string `json:"last_modified"`
	ApproximateMessages     int    `json:"approximate_messages"`
	ApproximateInFlight     int    `json:"approximate_in_flight"`
	ApproximateDelayed      int    `json:"approximate_delayed"`
	DeadLetterTargetArn     string `json:"dead_letter_target_arn,omitempty"`
	RedriveMaxReceiveCount  int    `json:"redrive_max_receive_count,omitempty"`
}

type listQueuesResponse struct {
	Queues []queueView `json:"queues"`
}

func (s *Service) listQueues(w http.ResponseWriter, r *http.Request) {
	snapshots := s.broker.SnapshotQueues()
	resp := listQueuesResponse{Queues: make([]queueView, 0, len(snapshots))}

	for _, snap := range snapshots {
		resp.Queues = append(resp.Queues, queueView{
			Name:                   snap.Name,
			Arn:                    snap.ARN,
			Fifo:                   snap.FIFO,
			CreatedAt:              snap.CreatedAt.Format(time.RFC3339),
			LastModified:           snap.LastModified.Format(time.RFC3339),
			ApproximateMessages:    snap.ApproximateMessages,
			ApproximateInFlight:    snap.ApproximateInFlight,
			ApproximateDelayed:     snap.ApproximateDelayed,
			DeadLetterTargetArn:    snap.RedriveTargetArn,
			RedriveMaxReceiveCount: snap.RedriveMaxReceive,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
