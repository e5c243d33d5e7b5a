package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-assistant/internal/patients"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

func submit(t *testing.T, h *Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	rec := httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/api/intake-form", &buf))
	return rec
}

func TestSubmitIntakeForm(t *testing.T) {
	patientRepo := patients.NewInMemoryRepository()
	p, err := patientRepo.Create(context.Background(), &patients.CreatePatientRequest{
		FirstName: "John", LastName: "Doe", Email: "john.doe@example.com", Phone: "555-0123",
	})
	require.NoError(t, err)

	repo := NewInMemoryRepository()
	h := NewHandler(repo, patientRepo, logging.Default())

	rec := submit(t, h, map[string]any{
		"patient_email":   "JOHN.DOE@example.com",
		"chief_complaint": "Headache",
		"pain_level":      6,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var form map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &form))
	assert.EqualValues(t, p.ID, form["patient_id"])
	assert.EqualValues(t, 6, form["pain_level"])
	assert.NotEmpty(t, form["completed_at"])

	stored, err := repo.ListByPatient(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestSubmitIntakeFormErrors(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), patients.NewInMemoryRepository(), logging.Default())

	rec := submit(t, h, map[string]any{"patient_email": "nobody@example.com", "chief_complaint": "Cough"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Patient not found"}`, rec.Body.String())

	rec = submit(t, h, map[string]any{"patient_email": "nobody@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = submit(t, h, map[string]any{"patient_email": "a@b.c", "chief_complaint": "x", "pain_level": 11})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
