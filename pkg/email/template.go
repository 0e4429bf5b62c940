package email

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// RenderParams carries everything needed to render one notification email.
type RenderParams struct {
	Title         string
	Message       string
	Priority      string // low, normal, high, urgent
	Language      string // "ar" (default) or "en"
	EntitySummary string // optional related-entity summary, plain text
	SentAt        time.Time
}

// priorityLabels maps a priority to its localized badge text.
var priorityLabels = map[string]map[string]string{
	"ar": {"low": "منخفض", "normal": "عادي", "high": "عالي", "urgent": "عاجل"},
	"en": {"low": "Low", "normal": "Normal", "high": "High", "urgent": "Urgent"},
}

var notificationTmpl = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html{{if .RTL}} dir="rtl" lang="ar"{{else}} lang="en"{{end}}>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
</head>
<body style="margin:0;padding:20px;background-color:#f5f5f5;font-family:'Segoe UI',Tahoma,sans-serif;">
<div style="max-width:600px;margin:0 auto;background-color:#ffffff;border-radius:10px;overflow:hidden;">
  <div style="background:linear-gradient(135deg,#007bff,#0056b3);color:#ffffff;padding:30px;text-align:center;">
    <h1 style="margin:0;font-size:24px;">{{.Title}}</h1>
    <span style="display:inline-block;padding:5px 15px;border-radius:20px;font-size:12px;font-weight:bold;background-color:{{.PriorityColor}};color:#ffffff;">{{.PriorityLabel}}</span>
  </div>
  <div style="padding:30px;">
    <div style="font-size:16px;line-height:1.6;color:#333333;">{{.Message}}</div>
    {{if .EntitySummary}}<div style="background-color:#f8f9fa;padding:20px;border-radius:5px;margin-top:20px;white-space:pre-line;">{{.EntitySummary}}</div>{{end}}
  </div>
  <div style="background-color:#f8f9fa;padding:20px;text-align:center;font-size:14px;color:#6c757d;">
    <p style="margin:0;">{{.Footer}}</p>
    <p style="margin:0;">{{.SentAtLine}}</p>
  </div>
</div>
</body>
</html>`))

var priorityColors = map[string]string{
	"low":    "#6c757d",
	"normal": "#28a745",
	"high":   "#ffc107",
	"urgent": "#dc3545",
}

// RenderNotificationHTML renders the standard notification email body.
func RenderNotificationHTML(p RenderParams) (string, error) {
	lang := p.Language
	if lang != "en" {
		lang = "ar"
	}
	priority := p.Priority
	if priority == "" {
		priority = "normal"
	}
	label, ok := priorityLabels[lang][priority]
	if !ok {
		label = priorityLabels[lang]["normal"]
	}
	color, ok := priorityColors[priority]
	if !ok {
		color = priorityColors["normal"]
	}
	sentAt := p.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}

	footer := "نظام إدارة مطالبات التأمين"
	sentAtLine := "تم الإرسال في: " + sentAt.Format("2006-01-02 15:04")
	if lang == "en" {
		footer = "Insurance Claims Management System"
		sentAtLine = "Sent at: " + sentAt.Format("2006-01-02 15:04")
	}

	data := struct {
		Title, Message, EntitySummary string
		PriorityLabel, PriorityColor  string
		Footer, SentAtLine            string
		RTL                           bool
	}{
		Title:         p.Title,
		Message:       p.Message,
		EntitySummary: p.EntitySummary,
		PriorityLabel: label,
		PriorityColor: color,
		Footer:        footer,
		SentAtLine:    sentAtLine,
		RTL:           lang == "ar",
	}

	var sb strings.Builder
	if err := notificationTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render notification email: %w", err)
	}
	return sb.String(), nil
}
