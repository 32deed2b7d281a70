//go:build integration

// Package integration drives the running broker over HTTP with the real AWS
// SDK, exercising the same wire protocol a production SQS client would use.
package integration

// brokerEndpoint is the address the emulator listens on by default
// (server.DefaultConfig()). Override by editing this constant if the
// broker under test is started on a different port.
const brokerEndpoint = "http://localhost:4566"
