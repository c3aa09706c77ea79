// Package kvstore is a small key-value abstraction for short-lived state
// such as one-time codes and attempt counters.
//
// Two drivers are provided: Redis for deployments and an in-process memory
// store for local development and tests. Both honor per-key TTLs and apply
// a Batch atomically.
package kvstore
