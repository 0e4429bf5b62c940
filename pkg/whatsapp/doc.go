// Package whatsapp is a thin HTTP client for the WhatsApp Business
// graph API (text messages only).
package whatsapp
