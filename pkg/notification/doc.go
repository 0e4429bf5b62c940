// Package notification defines the core domain model of the dispatch
// engine: the per-channel notification record, its monotonic lifecycle
// (pending -> sent -> delivered -> read, or failed), the uniform
// DeliveryResult returned by channel senders, and the Storage contract
// with in-memory and Postgres implementations.
package notification
