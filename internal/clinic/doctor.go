package clinic

import (
	"encoding/json"
	"strings"
	"time"
)

// Doctor is a practitioner patients can book with.
type Doctor struct {
	ID                   int64           `json:"id"`
	FirstName            string          `json:"first_name"`
	LastName             string          `json:"last_name"`
	Title                string          `json:"title"`
	Specialization       string          `json:"specialization"`
	Department           string          `json:"department"`
	Email                string          `json:"email"`
	Phone                string          `json:"phone"`
	LicenseNumber        string          `json:"license_number"`
	Availability         json.RawMessage `json:"availability"`
	InPersonConsultation bool            `json:"in_person_consultation"`
	VideoConsultation    bool            `json:"video_consultation"`
	PhoneConsultation    bool            `json:"phone_consultation"`
	Bio                  string          `json:"bio"`
	ProfileImageURL      string          `json:"profile_image_url"`
	YearsOfExperience    int             `json:"years_of_experience"`
	LanguagesSpoken      string          `json:"languages_spoken"`
	IsActive             bool            `json:"is_active"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// DisplayName is "Title First Last", or without the title when none is set.
func (d *Doctor) DisplayName() string {
	return strings.TrimSpace(strings.Join([]string{d.Title, d.FirstName, d.LastName}, " "))
}

// CreateDoctorRequest is the payload for POST /admin/doctors.
type CreateDoctorRequest struct {
	FirstName            string          `json:"first_name"`
	LastName             string          `json:"last_name"`
	Title                string          `json:"title"`
	Specialization       string          `json:"specialization"`
	Department           string          `json:"department"`
	Email                string          `json:"email"`
	Phone                string          `json:"phone"`
	LicenseNumber        string          `json:"license_number"`
	Availability         json.RawMessage `json:"availability"`
	InPersonConsultation *bool           `json:"in_person_consultation"`
	VideoConsultation    bool            `json:"video_consultation"`
	PhoneConsultation    bool            `json:"phone_consultation"`
	Bio                  string          `json:"bio"`
	ProfileImageURL      string          `json:"profile_image_url"`
	YearsOfExperience    int             `json:"years_of_experience"`
	LanguagesSpoken      string          `json:"languages_spoken"`
}

// Validate requires both names.
func (r *CreateDoctorRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return ErrDoctorNameRequired
	}
	return nil
}

func (r *CreateDoctorRequest) toDoctor() *Doctor {
	inPerson := true
	if r.InPersonConsultation != nil {
		inPerson = *r.InPersonConsultation
	}
	return &Doctor{
		FirstName:            r.FirstName,
		LastName:             r.LastName,
		Title:                r.Title,
		Specialization:       r.Specialization,
		Department:           r.Department,
		Email:                r.Email,
		Phone:                r.Phone,
		LicenseNumber:        r.LicenseNumber,
		Availability:         rawJSON(r.Availability),
		InPersonConsultation: inPerson,
		VideoConsultation:    r.VideoConsultation,
		PhoneConsultation:    r.PhoneConsultation,
		Bio:                  r.Bio,
		ProfileImageURL:      r.ProfileImageURL,
		YearsOfExperience:    r.YearsOfExperience,
		LanguagesSpoken:      r.LanguagesSpoken,
		IsActive:             true,
	}
}

// UpdateDoctorRequest is a partial update; nil fields are left untouched.
type UpdateDoctorRequest struct {
	FirstName            *string          `json:"first_name"`
	LastName             *string          `json:"last_name"`
	Title                *string          `json:"title"`
	Specialization       *string          `json:"specialization"`
	Department           *string          `json:"department"`
	Email                *string          `json:"email"`
	Phone                *string          `json:"phone"`
	LicenseNumber        *string          `json:"license_number"`
	Availability         *json.RawMessage `json:"availability"`
	InPersonConsultation *bool            `json:"in_person_consultation"`
	VideoConsultation    *bool            `json:"video_consultation"`
	PhoneConsultation    *bool            `json:"phone_consultation"`
	Bio                  *string          `json:"bio"`
	ProfileImageURL      *string          `json:"profile_image_url"`
	YearsOfExperience    *int             `json:"years_of_experience"`
	LanguagesSpoken      *string          `json:"languages_spoken"`
}

// Apply copies present fields onto d.
func (r *UpdateDoctorRequest) Apply(d *Doctor) {
	set(&d.FirstName, r.FirstName)
	set(&d.LastName, r.LastName)
	set(&d.Title, r.Title)
	set(&d.Specialization, r.Specialization)
	set(&d.Department, r.Department)
	set(&d.Email, r.Email)
	set(&d.Phone, r.Phone)
	set(&d.LicenseNumber, r.LicenseNumber)
	if r.Availability != nil {
		d.Availability = rawJSON(*r.Availability)
	}
	set(&d.InPersonConsultation, r.InPersonConsultation)
	set(&d.VideoConsultation, r.VideoConsultation)
	set(&d.PhoneConsultation, r.PhoneConsultation)
	set(&d.Bio, r.Bio)
	set(&d.ProfileImageURL, r.ProfileImageURL)
	set(&d.YearsOfExperience, r.YearsOfExperience)
	set(&d.LanguagesSpoken, r.LanguagesSpoken)
}
