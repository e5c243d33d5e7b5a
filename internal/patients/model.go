package patients

import (
	"encoding/json"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Patient is a person registered with the clinic.
type Patient struct {
	ID                 int64
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	DateOfBirth        *time.Time
	Gender             string
	Address            string
	EmergencyContact   string
	EmergencyPhone     string
	InsuranceProvider  string
	InsuranceNumber    string
	MedicalHistory     string
	Allergies          string
	CurrentMedications string
	PreferredLanguage  string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// FullName joins first and last name.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// MarshalJSON renders the public view. Clinical free-text fields stay out of API responses.
func (p *Patient) MarshalJSON() ([]byte, error) {
	var dob *string
	if p.DateOfBirth != nil {
		s := p.DateOfBirth.Format(dateLayout)
		dob = &s
	}
	return json.Marshal(struct {
		ID                int64     `json:"id"`
		FirstName         string    `json:"first_name"`
		LastName          string    `json:"last_name"`
		Email             string    `json:"email"`
		Phone             string    `json:"phone"`
		DateOfBirth       *string   `json:"date_of_birth"`
		Gender            string    `json:"gender"`
		Address           string    `json:"address"`
		EmergencyContact  string    `json:"emergency_contact"`
		EmergencyPhone    string    `json:"emergency_phone"`
		InsuranceProvider string    `json:"insurance_provider"`
		InsuranceNumber   string    `json:"insurance_number"`
		PreferredLanguage string    `json:"preferred_language"`
		CreatedAt         time.Time `json:"created_at"`
	}{
		ID:                p.ID,
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		Email:             p.Email,
		Phone:             p.Phone,
		DateOfBirth:       dob,
		Gender:            p.Gender,
		Address:           p.Address,
		EmergencyContact:  p.EmergencyContact,
		EmergencyPhone:    p.EmergencyPhone,
		InsuranceProvider: p.InsuranceProvider,
		InsuranceNumber:   p.InsuranceNumber,
		PreferredLanguage: p.PreferredLanguage,
		CreatedAt:         p.CreatedAt,
	})
}

// CreatePatientRequest is the payload for POST /api/patients.
type CreatePatientRequest struct {
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	DateOfBirth        string `json:"date_of_birth"`
	Gender             string `json:"gender"`
	Address            string `json:"address"`
	EmergencyContact   string `json:"emergency_contact"`
	EmergencyPhone     string `json:"emergency_phone"`
	InsuranceProvider  string `json:"insurance_provider"`
	InsuranceNumber    string `json:"insurance_number"`
	MedicalHistory     string `json:"medical_history"`
	Allergies          string `json:"allergies"`
	CurrentMedications string `json:"current_medications"`
	PreferredLanguage  string `json:"preferred_language"`
}

// Validate checks required fields and the birth date format.
func (r *CreatePatientRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" ||
		strings.TrimSpace(r.Email) == "" || strings.TrimSpace(r.Phone) == "" {
		return ErrMissingFields
	}
	if _, err := parseDate(r.DateOfBirth); err != nil {
		return err
	}
	return nil
}

func (r *CreatePatientRequest) toPatient() (*Patient, error) {
	dob, err := parseDate(r.DateOfBirth)
	if err != nil {
		return nil, err
	}
	lang := r.PreferredLanguage
	if lang == "" {
		lang = "en"
	}
	return &Patient{
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		Email:              strings.TrimSpace(r.Email),
		Phone:              r.Phone,
		DateOfBirth:        dob,
		Gender:             r.Gender,
		Address:            r.Address,
		EmergencyContact:   r.EmergencyContact,
		EmergencyPhone:     r.EmergencyPhone,
		InsuranceProvider:  r.InsuranceProvider,
		InsuranceNumber:    r.InsuranceNumber,
		MedicalHistory:     r.MedicalHistory,
		Allergies:          r.Allergies,
		CurrentMedications: r.CurrentMedications,
		PreferredLanguage:  lang,
	}, nil
}

// UpdatePatientRequest carries a partial update; nil fields are left untouched.
// Email is immutable once registered.
type UpdatePatientRequest struct {
	FirstName          *string `json:"first_name"`
	LastName           *string `json:"last_name"`
	Phone              *string `json:"phone"`
	DateOfBirth        *string `json:"date_of_birth"`
	Gender             *string `json:"gender"`
	Address            *string `json:"address"`
	EmergencyContact   *string `json:"emergency_contact"`
	EmergencyPhone     *string `json:"emergency_phone"`
	InsuranceProvider  *string `json:"insurance_provider"`
	InsuranceNumber    *string `json:"insurance_number"`
	MedicalHistory     *string `json:"medical_history"`
	Allergies          *string `json:"allergies"`
	CurrentMedications *string `json:"current_medications"`
	PreferredLanguage  *string `json:"preferred_language"`
}

// Apply copies the present fields onto p.
func (r *UpdatePatientRequest) Apply(p *Patient) error {
	setString(&p.FirstName, r.FirstName)
	setString(&p.LastName, r.LastName)
	setString(&p.Phone, r.Phone)
	setString(&p.Gender, r.Gender)
	setString(&p.Address, r.Address)
	setString(&p.EmergencyContact, r.EmergencyContact)
	setString(&p.EmergencyPhone, r.EmergencyPhone)
	setString(&p.InsuranceProvider, r.InsuranceProvider)
	setString(&p.InsuranceNumber, r.InsuranceNumber)
	setString(&p.MedicalHistory, r.MedicalHistory)
	setString(&p.Allergies, r.Allergies)
	setString(&p.CurrentMedications, r.CurrentMedications)
	setString(&p.PreferredLanguage, r.PreferredLanguage)
	// An empty date_of_birth is ignored rather than clearing the stored value.
	if r.DateOfBirth != nil && *r.DateOfBirth != "" {
		dob, err := parseDate(*r.DateOfBirth)
		if err != nil {
			return err
		}
		p.DateOfBirth = dob
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}
