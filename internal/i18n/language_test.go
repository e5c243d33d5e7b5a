package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Hola, necesito una cita", "es"},
		{"Muchas GRACIAS", "es"},
		{"Bonjour, je voudrais un rendez-vous", "fr"},
		{"Merci beaucoup", "fr"},
		{"What are your hours?", "en"},
		{"", "en"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectLanguage(tc.text), tc.text)
	}
}

func TestDetectLanguageMatchesWholeWords(t *testing.T) {
	for _, text := range []string{
		"I have a question about your hours",
		"I don't know",
		"Is this normal?",
		"None of these work",
	} {
		assert.Equal(t, "en", DetectLanguage(text), text)
	}
	assert.Equal(t, "fr", DetectLanguage("non, merci"))
	assert.Equal(t, "es", DetectLanguage("No, ¿cómo?"))
	assert.Equal(t, "fr", DetectLanguage("S'il vous plaît"))
}

func TestTranslate(t *testing.T) {
	assert.Equal(t, "¡Gracias!", Translate("Thank you!", "es", "en"))
	assert.Equal(t, "Merci!", Translate("thank you!", "fr", ""))
	assert.Equal(t, "Thank you!", Translate("¡Gracias!", "en", "es"))
	assert.Equal(t, "Thank you!", Translate("Thank you!", "en", "en"))
	assert.Equal(t, "Something else", Translate("Something else", "es", "en"))
	assert.Equal(t, "Thank you!", Translate("Thank you!", "de", "en"))
}

func TestPhraseFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "Welcome to our clinic!", Phrase(PhraseWelcome, "de"))
	assert.Equal(t, "¡Bienvenido a nuestra clínica!", Phrase(PhraseWelcome, "es"))
	assert.Equal(t, "", Phrase("missing", "en"))
}

func TestLanguageTable(t *testing.T) {
	assert.Equal(t, "Japanese", LanguageName("ja"))
	assert.Equal(t, "Unknown", LanguageName("xx"))
	assert.True(t, IsSupported("ar"))
	assert.False(t, IsSupported("EN"))
	assert.Equal(t, "fr", Normalize(" FR "))
	assert.Equal(t, DefaultLanguage, Normalize("klingon"))
	assert.Len(t, SupportedCodes(), 10)

	table := SupportedLanguages()
	table["en"] = "changed"
	assert.Equal(t, "English", LanguageName("en"))
}
