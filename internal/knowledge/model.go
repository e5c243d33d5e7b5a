// Package knowledge holds the language-partitioned FAQ and aftercare content
// the assistant and the public pages read from.
package knowledge

import (
	"errors"
	"strings"
	"time"
)

const defaultLanguage = "en"

var (
	// ErrFAQNotFound is returned when no FAQ matches the id.
	ErrFAQNotFound = errors.New("faq not found")

	// ErrMissingFields is returned when category, question or answer is blank.
	ErrMissingFields = errors.New("category, question and answer are required")

	// ErrAftercareMissingFields is returned when title, treatment_type or instructions is blank.
	ErrAftercareMissingFields = errors.New("title, treatment_type and instructions are required")
)

// FAQ is a question and answer in one language.
type FAQ struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Language  string    `json:"language"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// FAQFilter narrows a listing. Empty fields match everything.
type FAQFilter struct {
	Language string
	Category string
}

func (f FAQFilter) matches(faq *FAQ) bool {
	if !faq.IsActive {
		return false
	}
	if f.Language != "" && faq.Language != f.Language {
		return false
	}
	return f.Category == "" || faq.Category == f.Category
}

// CreateFAQRequest is the payload for POST /api/faqs and /admin/faqs.
type CreateFAQRequest struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Language string `json:"language"`
}

func (r *CreateFAQRequest) Validate() error {
	if strings.TrimSpace(r.Category) == "" || strings.TrimSpace(r.Question) == "" || strings.TrimSpace(r.Answer) == "" {
		return ErrMissingFields
	}
	return nil
}

func (r *CreateFAQRequest) toFAQ() *FAQ {
	lang := r.Language
	if lang == "" {
		lang = defaultLanguage
	}
	return &FAQ{Category: r.Category, Question: r.Question, Answer: r.Answer, Language: lang, IsActive: true}
}

// UpdateFAQRequest is a partial update; nil fields are left untouched.
type UpdateFAQRequest struct {
	Category *string `json:"category"`
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
	Language *string `json:"language"`
}

func (r *UpdateFAQRequest) Apply(f *FAQ) {
	setString(&f.Category, r.Category)
	setString(&f.Question, r.Question)
	setString(&f.Answer, r.Answer)
	setString(&f.Language, r.Language)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Aftercare is post-treatment guidance for one treatment type.
type Aftercare struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	TreatmentType    string    `json:"treatment_type"`
	Instructions     string    `json:"instructions"`
	Precautions      string    `json:"precautions"`
	FollowUpTimeline string    `json:"follow_up_timeline"`
	EmergencySigns   string    `json:"emergency_signs"`
	Language         string    `json:"language"`
	IsActive         bool      `json:"-"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}

// AftercareFilter narrows a listing. Empty fields match everything.
type AftercareFilter struct {
	Language      string
	TreatmentType string
}

func (f AftercareFilter) matches(a *Aftercare) bool {
	if !a.IsActive {
		return false
	}
	if f.Language != "" && a.Language != f.Language {
		return false
	}
	return f.TreatmentType == "" || a.TreatmentType == f.TreatmentType
}

// CreateAftercareRequest adds an instruction sheet.
type CreateAftercareRequest struct {
	Title            string `json:"title"`
	TreatmentType    string `json:"treatment_type"`
	Instructions     string `json:"instructions"`
	Precautions      string `json:"precautions"`
	FollowUpTimeline string `json:"follow_up_timeline"`
	EmergencySigns   string `json:"emergency_signs"`
	Language         string `json:"language"`
}

func (r *CreateAftercareRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.TreatmentType) == "" || strings.TrimSpace(r.Instructions) == "" {
		return ErrAftercareMissingFields
	}
	return nil
}

func (r *CreateAftercareRequest) toAftercare() *Aftercare {
	lang := r.Language
	if lang == "" {
		lang = defaultLanguage
	}
	return &Aftercare{
		Title:            r.Title,
		TreatmentType:    r.TreatmentType,
		Instructions:     r.Instructions,
		Precautions:      r.Precautions,
		FollowUpTimeline: r.FollowUpTimeline,
		EmergencySigns:   r.EmergencySigns,
		Language:         lang,
		IsActive:         true,
	}
}

// TreatmentTypes lists the treatment type of each row in order, one entry
// per row.
func TreatmentTypes(items []*Aftercare) []string {
	out := make([]string, 0, len(items))
	for _, a := range items {
		out = append(out, a.TreatmentType)
	}
	return out
}
