// Package messaging publishes domain events to a message broker.
//
// Only publishing is needed here: events are fire-and-forget audit records
// for downstream consumers. NATS is the supported broker; the noop driver
// logs events for local runs.
package messaging
