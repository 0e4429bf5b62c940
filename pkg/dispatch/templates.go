package dispatch

import (
	"fmt"
	"strings"
)

// EventTemplate holds the localized title and message body for one
// business event type.
type EventTemplate struct {
	Title   string
	Message string
}

// eventTemplates maps event type -> language -> template. Placeholders
// in {braces} are substituted from the event data map.
var eventTemplates = map[string]map[string]EventTemplate{
	"claim_created": {
		"ar": {
			Title:   "مطالبة جديدة",
			Message: "تم إنشاء مطالبة تأمين جديدة برقم {claim_id} للعميل {client_name} بمبلغ {claim_amount} {currency}.",
		},
		"en": {
			Title:   "New Claim",
			Message: "A new insurance claim {claim_id} has been created for client {client_name} with amount {claim_amount} {currency}.",
		},
	},
	"claim_sent": {
		"ar": {
			Title:   "تم إرسال المطالبة",
			Message: "تم إرسال المطالبة {claim_id} بنجاح إلى شركة التأمين {company_name}.",
		},
		"en": {
			Title:   "Claim Sent",
			Message: "Claim {claim_id} has been successfully sent to insurance company {company_name}.",
		},
	},
	"claim_status_changed": {
		"ar": {
			Title:   "تحديث حالة المطالبة",
			Message: "تم تغيير حالة المطالبة {claim_id} من {old_status} إلى {new_status}.",
		},
		"en": {
			Title:   "Claim Status Update",
			Message: "Claim {claim_id} status has been changed from {old_status} to {new_status}.",
		},
	},
}

// genericTemplates is the fallback for unknown event types.
var genericTemplates = map[string]EventTemplate{
	"ar": {Title: "إشعار", Message: "لقد تلقيت إشعاراً جديداً من نظام إدارة المطالبات."},
	"en": {Title: "Notification", Message: "You have received a new notification from the claims management system."},
}

// TemplateFor returns the template for an event type and language,
// falling back to Arabic and finally to the generic template.
func TemplateFor(eventType, language string) EventTemplate {
	if language != "en" {
		language = "ar"
	}
	if byLang, ok := eventTemplates[eventType]; ok {
		if tpl, ok := byLang[language]; ok {
			return tpl
		}
		if tpl, ok := byLang["ar"]; ok {
			return tpl
		}
	}
	return genericTemplates[language]
}

// FormatTemplate substitutes {key} placeholders from the data map.
// Placeholders without a matching key are left in place.
func FormatTemplate(s string, data map[string]any) string {
	if len(data) == 0 {
		return s
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
