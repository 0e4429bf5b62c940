// Package sms is a thin HTTP client for a create-message SMS gateway
// (Twilio-compatible response shape: sid on success).
package sms
