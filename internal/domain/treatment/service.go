package treatment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrPlanNotFound = errors.New("treatment plan not found")

type Service struct {
	plans PlanRepository
}

func NewService(plans PlanRepository) *Service {
	return &Service{plans: plans}
}

func (s *Service) CreatePlan(ctx context.Context, p *Plan) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("nombre is required")
	}
	if p.Date.IsZero() {
		return fmt.Errorf("fecha is required")
	}
	return s.plans.Create(ctx, p)
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.plans.GetByID(ctx, id)
}

func (s *Service) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return s.plans.Delete(ctx, id)
}

// ListByPatient returns the summary projection used by the appointment
// form, most recent plan first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]PlanSummary, error) {
	plans, err := s.plans.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	summaries := make([]PlanSummary, 0, len(plans))
	for _, p := range plans {
		summaries = append(summaries, p.Summary())
	}
	return summaries, nil
}
