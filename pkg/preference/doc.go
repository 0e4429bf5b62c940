// Package preference resolves which delivery channels are permitted for a
// user/event combination: per-channel enable flags, per-event override
// maps and a quiet-hours window that may span midnight. Preference records
// are created lazily with an atomic insert-if-absent on first resolution.
package preference
