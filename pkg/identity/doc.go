// Package identity declares the user-lookup contract consumed by the
// dispatch engine. The surrounding application provides the real
// implementation; MemoryDirectory covers tests and local development.
package identity
