package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/wolfman30/clinic-assistant/internal/auth"
)

type seedOptions struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

type sampleFAQ struct {
	category, question, answer, language string
}

type sampleAftercare struct {
	title, treatmentType, instructions, precautions, followUp, emergencySigns string
}

var sampleFAQs = []sampleFAQ{
	{"general", "What are your clinic hours?",
		"Our clinic is open Monday through Friday from 9:00 AM to 5:00 PM, and Saturday from 9:00 AM to 1:00 PM. We are closed on Sundays.", "en"},
	{"appointments", "How do I schedule an appointment?",
		"You can schedule an appointment by using our AI assistant, calling us at (555) 123-4567, or using our patient portal online.", "en"},
	{"insurance", "What insurance do you accept?",
		"We accept most major insurance plans including Blue Cross Blue Shield, Aetna, Cigna, UnitedHealthcare, and Medicare. Please contact us to verify your specific plan.", "en"},
	{"services", "What services do you offer?",
		"We offer comprehensive primary care services including general consultations, physical exams, vaccinations, minor procedures, and preventive care.", "en"},
	{"general", "¿Cuáles son los horarios de la clínica?",
		"Nuestra clínica está abierta de lunes a viernes de 9:00 AM a 5:00 PM, y los sábados de 9:00 AM a 1:00 PM. Estamos cerrados los domingos.", "es"},
}

var sampleAftercareRows = []sampleAftercare{
	{"General Consultation Follow-up", "consultation",
		"Follow all prescribed medications as directed. Monitor your symptoms and contact us if they worsen.",
		"Avoid strenuous activities if advised. Take medications with food if specified.",
		"1-2 weeks",
		"Severe pain, difficulty breathing, high fever (over 101°F), or any concerning symptoms."},
	{"Vaccination Aftercare", "vaccination",
		"Keep the injection site clean and dry. Apply ice if there is swelling or pain.",
		"Avoid rubbing the injection site. Stay hydrated and rest if feeling tired.",
		"24-48 hours for any reactions",
		"Severe allergic reaction, difficulty breathing, widespread rash, or severe swelling."},
}

// seedSampleData fills an empty database in one transaction. It reports false
// and writes nothing when any user already exists.
func seedSampleData(ctx context.Context, db *sql.DB, opts seedOptions) (bool, error) {
	admin, err := auth.NewUser(opts.AdminUsername, opts.AdminEmail, opts.AdminPassword, auth.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("seed: hash admin password: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("seed: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var users int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		return false, fmt.Errorf("seed: count users: %w", err)
	}
	if users > 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, role) VALUES ($1, $2, $3, $4)`,
		admin.Username, admin.Email, admin.PasswordHash, admin.Role,
	); err != nil {
		return false, fmt.Errorf("seed: insert admin: %w", err)
	}

	for _, f := range sampleFAQs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO faqs (category, question, answer, language) VALUES ($1, $2, $3, $4)`,
			f.category, f.question, f.answer, f.language,
		); err != nil {
			return false, fmt.Errorf("seed: insert faq: %w", err)
		}
	}

	for _, a := range sampleAftercareRows {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO aftercare_instructions (title, treatment_type, instructions, precautions,
				follow_up_timeline, emergency_signs, language)
			VALUES ($1, $2, $3, $4, $5, $6, 'en')`,
			a.title, a.treatmentType, a.instructions, a.precautions, a.followUp, a.emergencySigns,
		); err != nil {
			return false, fmt.Errorf("seed: insert aftercare: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO patients (first_name, last_name, email, phone, preferred_language) VALUES ($1, $2, $3, $4, $5)`,
		"John", "Doe", "john.doe@example.com", "(555) 123-4567", "en",
	); err != nil {
		return false, fmt.Errorf("seed: insert patient: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("seed: commit: %w", err)
	}
	return true, nil
}

func randomPassword() string {
	return uuid.NewString()[:18]
}
