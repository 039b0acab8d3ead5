package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"archives/internal/models"
	"archives/internal/observability"
	"archives/internal/repository"
	"archives/internal/vip"
)

// VIPService manages the guest list and runs each visitor's verification flow.
type VIPService struct {
	vips  repository.VIPRepository
	flows vip.Store
	demo  bool
}

// VIPInput is the authoring form for a guest-list entry.
type VIPInput struct {
	Names   string `json:"names"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

// VIPPatch carries only the fields present in an edit request.
type VIPPatch struct {
	Names   *string `json:"names"`
	Date    *string `json:"date"`
	Message *string `json:"message"`
}

func NewVIPService(vips repository.VIPRepository, flows vip.Store, demo bool) *VIPService {
	return &VIPService{vips: vips, flows: flows, demo: demo}
}

func (s *VIPService) ListEntries(ctx context.Context) ([]models.VIPEntry, error) {
	return s.vips.List(ctx)
}

func (s *VIPService) CreateEntry(ctx context.Context, in VIPInput) (*models.VIPEntry, error) {
	if s.demo {
		return nil, models.ErrDemoMode
	}
	entry := &models.VIPEntry{
		Names:   strings.TrimSpace(in.Names),
		Date:    strings.TrimSpace(in.Date),
		Message: in.Message,
	}
	if err := validateVIP(entry); err != nil {
		return nil, err
	}
	if err := s.vips.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *VIPService) UpdateEntry(ctx context.Context, id uint, in VIPPatch) (*models.VIPEntry, error) {
	if s.demo {
		return nil, models.ErrDemoMode
	}
	current, err := s.vips.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *current
	fields := map[string]any{}
	if in.Names != nil {
		next.Names = strings.TrimSpace(*in.Names)
		fields["names"] = next.Names
	}
	if in.Date != nil {
		next.Date = strings.TrimSpace(*in.Date)
		fields["date"] = next.Date
	}
	if in.Message != nil {
		next.Message = *in.Message
		fields["message"] = next.Message
	}
	if err := validateVIP(&next); err != nil {
		return nil, err
	}
	return s.vips.Update(ctx, id, fields)
}

func (s *VIPService) DeleteEntry(ctx context.Context, id uint) error {
	if s.demo {
		return models.ErrDemoMode
	}
	return s.vips.Delete(ctx, id)
}

func validateVIP(e *models.VIPEntry) error {
	if len(e.Aliases()) == 0 {
		return models.NewValidationError("At least one name is required")
	}
	if strings.TrimSpace(e.Message) == "" {
		return models.NewValidationError("Message is required")
	}
	if e.Date != "" {
		if _, err := time.Parse(time.DateOnly, e.Date); err != nil {
			return models.NewValidationError("Date must be YYYY-MM-DD")
		}
	}
	return nil
}

// OpenFlow starts the visitor's flow at the intro with a freshly fetched guest list.
func (s *VIPService) OpenFlow(ctx context.Context, visitorID string) (vip.View, error) {
	entries, err := s.vips.List(ctx)
	if err != nil {
		return vip.View{}, err
	}
	f := vip.NewFlow()
	f.Open(entries)
	if err := s.flows.Save(ctx, visitorID, f); err != nil {
		return vip.View{}, err
	}
	return f.View(), nil
}

// FlowView returns the visitor's current flow state.
func (s *VIPService) FlowView(ctx context.Context, visitorID string) (vip.View, error) {
	f, err := s.flows.Load(ctx, visitorID)
	if err != nil {
		return vip.View{}, err
	}
	return f.View(), nil
}

func (s *VIPService) Accept(ctx context.Context, visitorID string) (vip.View, error) {
	return s.step(ctx, visitorID, func(f *vip.Flow) error { return f.Accept() })
}

func (s *VIPService) Decline(ctx context.Context, visitorID string) (vip.View, error) {
	return s.step(ctx, visitorID, func(f *vip.Flow) error { return f.Decline() })
}

func (s *VIPService) SubmitName(ctx context.Context, visitorID, name string) (vip.View, error) {
	return s.step(ctx, visitorID, func(f *vip.Flow) error {
		ok, err := f.SubmitName(name)
		if err == nil {
			observability.RecordVIPAttempt(string(vip.StepName), ok)
		}
		return err
	})
}

func (s *VIPService) SubmitDate(ctx context.Context, visitorID, date string) (vip.View, error) {
	return s.step(ctx, visitorID, func(f *vip.Flow) error {
		ok, err := f.SubmitDate(date)
		if err == nil {
			observability.RecordVIPAttempt(string(vip.StepDate), ok)
		}
		return err
	})
}

// CloseFlow forgets the visitor's flow from any step.
func (s *VIPService) CloseFlow(ctx context.Context, visitorID string) (vip.View, error) {
	if err := s.flows.Delete(ctx, visitorID); err != nil {
		return vip.View{}, err
	}
	return vip.NewFlow().View(), nil
}

func (s *VIPService) step(ctx context.Context, visitorID string, apply func(*vip.Flow) error) (_ vip.View, err error) {
	ctx, span := observability.StartSpan(ctx, "VIPService", "step")
	defer func() { observability.EndSpan(span, err) }()

	f, err := s.flows.Load(ctx, visitorID)
	if err != nil {
		return vip.View{}, err
	}
	if err := apply(f); err != nil {
		if errors.Is(err, vip.ErrWrongStep) {
			return f.View(), &models.AppError{Code: models.CodeValidation, Message: "That step is not available right now", Err: err}
		}
		return vip.View{}, err
	}
	if err := s.flows.Save(ctx, visitorID, f); err != nil {
		return vip.View{}, err
	}
	return f.View(), nil
}
