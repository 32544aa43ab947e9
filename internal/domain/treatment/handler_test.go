package treatment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *Service) {
	svc := NewService(newMockPlanRepo())
	return NewHandler(svc), svc
}

func TestHandlerCreatePlan(t *testing.T) {
	h, _ := newTestHandler()
	e := echo.New()
	patientID := uuid.New()
	body := `{"patient_id":"` + patientID.String() + `","nombre":"Ortodoncia fase 1","fecha":"2026-03-10T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/treatment-plans", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.CreatePlan(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var p Plan
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected plan id to be assigned")
	}
	if p.Name != "Ortodoncia fase 1" {
		t.Errorf("expected nombre to round-trip, got %s", p.Name)
	}
}

func TestHandlerCreatePlan_MissingName(t *testing.T) {
	h, _ := newTestHandler()
	e := echo.New()
	body := `{"patient_id":"` + uuid.NewString() + `","fecha":"2026-03-10T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/treatment-plans", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.CreatePlan(e.NewContext(req, rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestHandlerListByPatient(t *testing.T) {
	h, svc := newTestHandler()
	e := echo.New()
	patientID := uuid.New()
	if err := svc.CreatePlan(context.Background(), &Plan{
		PatientID: patientID,
		Name:      "Endodoncia",
		Date:      time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("seeding plan: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/patients/"+patientID.String()+"/treatment-plans", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(patientID.String())

	if err := h.ListByPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var summaries []PlanSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].Name != "Endodoncia" {
		t.Errorf("expected Endodoncia, got %s", summaries[0].Name)
	}
}

func TestHandlerListByPatient_InvalidID(t *testing.T) {
	h, _ := newTestHandler()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients/not-a-uuid/treatment-plans", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.ListByPatient(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandlerDeletePlan(t *testing.T) {
	h, svc := newTestHandler()
	e := echo.New()
	p := &Plan{PatientID: uuid.New(), Name: "Limpieza", Date: time.Now()}
	if err := svc.CreatePlan(context.Background(), p); err != nil {
		t.Fatalf("seeding plan: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/treatment-plans/"+p.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.DeletePlan(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	remaining, err := svc.ListByPatient(context.Background(), p.PatientID)
	if err != nil {
		t.Fatalf("listing after delete: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected plan to be gone, got %d", len(remaining))
	}
}

func TestHandlerDeletePlan_InvalidID(t *testing.T) {
	h, _ := newTestHandler()
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/treatment-plans/nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	err := h.DeletePlan(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
