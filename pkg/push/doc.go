// Package push is a thin HTTP client for an FCM-style device push API.
package push
