// Package i18n holds the static language table used by the chat assistant:
// supported language codes, a small phrase book, and keyword-based detection.
package i18n

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultLanguage is used whenever a request omits or names an unsupported language.
const DefaultLanguage = "en"

var supportedLanguages = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"ar": "Arabic",
}

// Phrase keys available in the translation table.
const (
	PhraseWelcome              = "welcome"
	PhraseHowCanHelp           = "how_can_help"
	PhraseAppointmentScheduled = "appointment_scheduled"
	PhraseThankYou             = "thank_you"
	PhraseGoodbye              = "goodbye"
	PhraseError                = "error"
	PhraseContactStaff         = "contact_staff"
)

var translations = map[string]map[string]string{
	"en": {
		PhraseWelcome:              "Welcome to our clinic!",
		PhraseHowCanHelp:           "How can I help you today?",
		PhraseAppointmentScheduled: "Your appointment has been scheduled.",
		PhraseThankYou:             "Thank you!",
		PhraseGoodbye:              "Goodbye! Have a great day!",
		PhraseError:                "I apologize, but I encountered an error.",
		PhraseContactStaff:         "Please contact our staff for assistance.",
	},
	"es": {
		PhraseWelcome:              "¡Bienvenido a nuestra clínica!",
		PhraseHowCanHelp:           "¿Cómo puedo ayudarte hoy?",
		PhraseAppointmentScheduled: "Su cita ha sido programada.",
		PhraseThankYou:             "¡Gracias!",
		PhraseGoodbye:              "¡Adiós! ¡Que tengas un gran día!",
		PhraseError:                "Me disculpo, pero encontré un error.",
		PhraseContactStaff:         "Por favor contacte a nuestro personal para asistencia.",
	},
	"fr": {
		PhraseWelcome:              "Bienvenue dans notre clinique!",
		PhraseHowCanHelp:           "Comment puis-je vous aider aujourd'hui?",
		PhraseAppointmentScheduled: "Votre rendez-vous a été programmé.",
		PhraseThankYou:             "Merci!",
		PhraseGoodbye:              "Au revoir! Passez une excellente journée!",
		PhraseError:                "Je m'excuse, mais j'ai rencontré une erreur.",
		PhraseContactStaff:         "Veuillez contacter notre personnel pour assistance.",
	},
}

// Indicator words match whole words of the lowercased text. Spanish is
// checked before French.
var (
	spanishIndicators = []string{"hola", "gracias", "por favor", "sí", "no", "cómo", "qué", "dónde", "cuándo"}
	frenchIndicators  = []string{"bonjour", "merci", "s'il vous plaît", "oui", "non", "comment", "que", "où", "quand"}
)

// DetectLanguage guesses the language of text from a fixed list of indicator words.
func DetectLanguage(text string) string {
	lower := strings.ToLower(text)
	if containsAny(lower, spanishIndicators) {
		return "es"
	}
	if containsAny(lower, frenchIndicators) {
		return "fr"
	}
	return DefaultLanguage
}

// Translate maps a known phrase from one language to another. Text with no
// entry in the phrase book is returned unchanged.
func Translate(text, target, source string) string {
	if source == "" {
		source = DefaultLanguage
	}
	if target == source {
		return text
	}
	src, ok := translations[source]
	if !ok {
		return text
	}
	dst, ok := translations[target]
	if !ok {
		return text
	}
	for key, value := range src {
		if strings.EqualFold(value, text) {
			if out, ok := dst[key]; ok {
				return out
			}
			return text
		}
	}
	return text
}

// Phrase returns the phrase for key in lang, falling back to English.
func Phrase(key, lang string) string {
	if table, ok := translations[lang]; ok {
		if v, ok := table[key]; ok {
			return v
		}
	}
	return translations[DefaultLanguage][key]
}

// LanguageName returns the English name of a language code, or "Unknown".
func LanguageName(code string) string {
	if name, ok := supportedLanguages[code]; ok {
		return name
	}
	return "Unknown"
}

// IsSupported reports whether code is in the supported language table.
func IsSupported(code string) bool {
	_, ok := supportedLanguages[code]
	return ok
}

// Normalize lowercases code and falls back to DefaultLanguage when unsupported.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if IsSupported(code) {
		return code
	}
	return DefaultLanguage
}

// SupportedLanguages returns a copy of the code to name table.
func SupportedLanguages() map[string]string {
	out := make(map[string]string, len(supportedLanguages))
	for k, v := range supportedLanguages {
		out[k] = v
	}
	return out
}

// SupportedCodes returns the supported codes in sorted order.
func SupportedCodes() []string {
	codes := make([]string, 0, len(supportedLanguages))
	for k := range supportedLanguages {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	return codes
}

func containsAny(text string, words []string) bool {
	padded := " " + strings.Join(strings.FieldsFunc(text, isWordBreak), " ") + " "
	for _, w := range words {
		if strings.Contains(padded, " "+w+" ") {
			return true
		}
	}
	return false
}

func isWordBreak(r rune) bool {
	return !unicode.IsLetter(r) && r != '\''
}
