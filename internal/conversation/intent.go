package conversation

import "strings"

// Intent is the coarse category a chat message is routed by.
type Intent string

const (
	IntentScheduling Intent = "appointment_scheduling"
	IntentFAQ        Intent = "faq"
	IntentIntake     Intent = "intake_form"
	IntentAftercare  Intent = "aftercare"
	IntentGeneral    Intent = "general"
)

type intentRule struct {
	intent   Intent
	keywords []string
}

// Checked in order; the first rule with any keyword present wins.
var intentRules = []intentRule{
	{IntentScheduling, []string{"appointment", "schedule", "book", "reschedule", "cancel", "available", "time", "date"}},
	{IntentFAQ, []string{"hours", "location", "insurance", "cost", "price", "services", "doctor", "clinic"}},
	{IntentIntake, []string{"symptoms", "pain", "medical history", "allergies", "medications", "complaint"}},
	{IntentAftercare, []string{"aftercare", "post-treatment", "recovery", "follow-up", "instructions"}},
}

// ClassifyIntent does a substring scan of the lowercased message.
func ClassifyIntent(message string) Intent {
	lower := strings.ToLower(message)
	for _, rule := range intentRules {
		if containsAny(lower, rule.keywords) {
			return rule.intent
		}
	}
	return IntentGeneral
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
