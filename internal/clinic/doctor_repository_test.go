package clinic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDoctorRepository_SoftDelete(t *testing.T) {
	repo := NewInMemoryDoctorRepository()
	ctx := context.Background()

	d, err := repo.Create(ctx, &CreateDoctorRequest{FirstName: "Ana", LastName: "Lopez", Title: "Dr."})
	require.NoError(t, err)
	assert.True(t, d.InPersonConsultation)
	assert.False(t, d.VideoConsultation)
	assert.JSONEq(t, `{}`, string(d.Availability))
	assert.Equal(t, "Dr. Ana Lopez", d.DisplayName())

	require.NoError(t, repo.Deactivate(ctx, d.ID))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestInMemoryDoctorRepository_Validation(t *testing.T) {
	repo := NewInMemoryDoctorRepository()
	_, err := repo.Create(context.Background(), &CreateDoctorRequest{FirstName: "Ana"})
	assert.ErrorIs(t, err, ErrDoctorNameRequired)

	_, err = repo.Update(context.Background(), 99, &UpdateDoctorRequest{})
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestInMemoryDoctorRepository_PartialUpdate(t *testing.T) {
	repo := NewInMemoryDoctorRepository()
	ctx := context.Background()
	d, err := repo.Create(ctx, &CreateDoctorRequest{FirstName: "Ana", LastName: "Lopez", Specialization: "Pediatrics"})
	require.NoError(t, err)

	video := true
	updated, err := repo.Update(ctx, d.ID, &UpdateDoctorRequest{VideoConsultation: &video})
	require.NoError(t, err)
	assert.True(t, updated.VideoConsultation)
	assert.Equal(t, "Pediatrics", updated.Specialization)
}

func TestPostgresDoctorRepository_DeactivateMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE doctors SET is_active = FALSE`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = NewPostgresDoctorRepositoryWithDB(mock).Deactivate(context.Background(), 5)
	assert.True(t, errors.Is(err, ErrDoctorNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDoctorRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .* FROM doctors WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgresDoctorRepositoryWithDB(mock).GetByID(context.Background(), 3)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestPostgresDoctorRepository_ListActive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	cols := []string{"id", "first_name", "last_name", "title", "specialization", "department", "email", "phone",
		"license_number", "availability", "in_person_consultation", "video_consultation", "phone_consultation",
		"bio", "profile_image_url", "years_of_experience", "languages_spoken", "is_active", "created_at", "updated_at"}
	mock.ExpectQuery(`FROM doctors WHERE is_active = TRUE ORDER BY id`).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			int64(1), "Ana", "Lopez", "Dr.", "Pediatrics", "Pediatrics", "ana@clinic.test", "555",
			"LIC-1", []byte(`{"monday":["09:00"]}`), true, false, false,
			"", "", 8, "en,es", true, now, now,
		))

	doctors, err := NewPostgresDoctorRepositoryWithDB(mock).ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Ana", doctors[0].FirstName)
	assert.JSONEq(t, `{"monday":["09:00"]}`, string(doctors[0].Availability))
	assert.NoError(t, mock.ExpectationsWereMet())
}
