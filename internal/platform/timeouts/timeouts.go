// Package timeouts defines shared timeout constants used across the
// process. Centralizing these values keeps the durations discoverable and
// prevents drift between surfaces.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// OutboundRequest caps a single call to an external collaborator such as
// the identity or asset host APIs.
const OutboundRequest = 10 * time.Second
