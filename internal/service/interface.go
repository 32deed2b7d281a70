// Package service provides interfaces and utilities for AWS service implementations.
package service

import (
	"net/http"
)

// Service is the common interface for all AWS service implementations.
type Service interface {
	// Name returns the service name (e.g., "s3", "sqs", "dynamodb").
	Name() string

	// Prefix returns the URL prefix for path-based routing (e.g., "/s3").
	// Returns empty string for host-based routing.
	Prefix() string

	// RegisterRoutes registers the service's routes with the router.
	RegisterRoutes(r Router)
}

// Router is the interface for registering HTTP routes.
type Router interface {
	// Handle registers a handler for the given method and pattern.
	Handle(method, pattern string, handler http.HandlerFunc)

	// HandleFunc is an alias for Handle for compatibility.
	HandleFunc(method, pattern string, handler http.HandlerFunc)
}

// Handler is the interface for operation handlers.
type Handler interface {
	// ServeHTTP handles the HTTP request.
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// JSONProtocolService is implemented by services that speak AWS JSON 1.0
// (operation selected via the X-Amz-Target header).
type JSONProtocolService interface {
	// TargetPrefix returns the prefix before the dot in X-Amz-Target,
	// e.g. "AmazonSQS" for "AmazonSQS.CreateQueue".
	TargetPrefix() string

	// DispatchAction handles a single JSON-protocol operation, selecting it
	// from the X-Amz-Target header already set on the request.
	DispatchAction(w http.ResponseWriter, r *http.Request)
}

// QueryProtocolService is implemented by services that also speak the AWS
// Query protocol (operation selected via the form-encoded Action parameter).
type QueryProtocolService interface {
	JSONProtocolService

	// Actions returns every Query-protocol action name this service handles,
	// so the dispatcher can route Action= directly instead of guessing.
	Actions() []string
}
