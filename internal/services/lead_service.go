package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"playabot-backend/internal/models"
	"playabot-backend/internal/store"
	"playabot-backend/pkg/logx"
)

// ErrLeadValidation marks a lead submission rejected before any store call.
var ErrLeadValidation = errors.New("lead validation failed")

// LeadService handles contact-form submissions.
type LeadService struct {
	store    store.Store
	validate *validator.Validate
}

// NewLeadService creates a new LeadService.
func NewLeadService(s store.Store) *LeadService {
	return &LeadService{
		store:    s,
		validate: validator.New(),
	}
}

// SubmitLead validates and stores a submission, returning the stored row.
// At least one of name/phone is required. Exactly one insert per call; no
// retry, no dedup.
func (s *LeadService) SubmitLead(ctx context.Context, req models.LeadRequest) (*models.Lead, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLeadValidation, err)
	}

	lead, err := s.store.CreateLead(ctx, store.CreateLeadParams{
		Name:     nilIfEmpty(req.Name),
		Phone:    nilIfEmpty(req.Phone),
		Email:    nilIfEmpty(req.Email),
		Interest: nilIfEmpty(req.Interest),
		Summary:  nilIfEmpty(req.Summary),
	})
	if err != nil {
		// Raw detail stays server-side; callers surface a generic message.
		logx.Error().Err(err).Msg("lead insert failed")
		return nil, fmt.Errorf("failed to store lead: %w", err)
	}

	return lead, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
