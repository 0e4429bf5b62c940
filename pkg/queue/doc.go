// Package queue models bulk notification fan-out: a Batch targets many
// recipients on one channel with shared context and per-recipient
// overrides, and carries aggregate success/failure tallies.
package queue
