package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"smartop/fleet-service/internal/logs"
	"smartop/fleet-service/internal/models"
	"smartop/fleet-service/internal/policy"
	"smartop/fleet-service/internal/store"
	"smartop/fleet-service/internal/validate"
)

type ChecklistService struct {
	store store.Store
	now   func() time.Time
}

func NewChecklistService(st store.Store) *ChecklistService {
	return &ChecklistService{store: st, now: func() time.Time { return time.Now().UTC() }}
}

func (s *ChecklistService) CreateTemplate(ctx context.Context, actor models.Actor, input models.NewChecklistTemplate) (models.ChecklistTemplate, error) {
	if err := policy.CanManageFleet(actor); err != nil {
		return models.ChecklistTemplate{}, err
	}
	return s.store.CreateTemplate(ctx, actor.Scope(), input)
}

func (s *ChecklistService) ListTemplates(ctx context.Context, actor models.Actor) ([]models.ChecklistTemplate, error) {
	return s.store.ListTemplates(ctx, actor.Scope())
}

func (s *ChecklistService) GetTemplate(ctx context.Context, actor models.Actor, templateID string) (models.ChecklistTemplate, error) {
	return s.store.FindTemplate(ctx, actor.Scope(), templateID)
}

// Submit records a filled checklist for a machine as pending. When no
// template is named the machine's assigned template applies, and every
// required item of that template must be answered.
func (s *ChecklistService) Submit(ctx context.Context, actor models.Actor, input models.NewSubmission) (models.SubmissionView, error) {
	if err := policy.CanSubmitChecklist(actor); err != nil {
		return models.SubmissionView{}, err
	}
	scope := actor.Scope()
	machine, err := s.store.FindMachine(ctx, scope, input.MachineID)
	if err != nil {
		return models.SubmissionView{}, err
	}
	if input.TemplateID == nil && machine.ChecklistTemplateID != nil {
		templateID := *machine.ChecklistTemplateID
		input.TemplateID = &templateID
	}
	if input.TemplateID != nil {
		template, err := s.store.FindTemplate(ctx, scope, *input.TemplateID)
		if err != nil {
			return models.SubmissionView{}, err
		}
		if err := checkEntries(template, input.Entries); err != nil {
			return models.SubmissionView{}, err
		}
	}

	submission, err := s.store.CreateSubmission(ctx, scope, actor.UserID, input)
	if err != nil {
		return models.SubmissionView{}, err
	}
	view := submission.View()
	logs.Logger.WithFields(map[string]interface{}{
		"organization":  scope.OrganizationID,
		"submission_id": submission.ID,
		"machine_id":    submission.MachineID,
		"issues":        len(view.Issues),
	}).Info("checklist submitted")
	return view, nil
}

func (s *ChecklistService) List(ctx context.Context, actor models.Actor, filter models.SubmissionFilter) ([]models.SubmissionView, error) {
	submissions, err := s.store.ListSubmissions(ctx, actor.Scope(), filter)
	if err != nil {
		return nil, err
	}
	views := make([]models.SubmissionView, 0, len(submissions))
	for _, submission := range submissions {
		views = append(views, submission.View())
	}
	return views, nil
}

func (s *ChecklistService) ListPending(ctx context.Context, actor models.Actor) ([]models.SubmissionView, error) {
	return s.List(ctx, actor, models.SubmissionFilter{Status: models.SubmissionPending})
}

func (s *ChecklistService) Get(ctx context.Context, actor models.Actor, submissionID string) (models.SubmissionView, error) {
	submission, err := s.store.FindSubmission(ctx, actor.Scope(), submissionID)
	if err != nil {
		return models.SubmissionView{}, err
	}
	return submission.View(), nil
}

// Review moves a pending submission to approved or rejected. The store
// applies the change only while the row is still pending, so of two
// concurrent reviewers exactly one wins.
func (s *ChecklistService) Review(ctx context.Context, actor models.Actor, submissionID string, decision models.ReviewDecision, note *string) (models.SubmissionView, error) {
	if err := policy.CanReviewChecklists(actor); err != nil {
		return models.SubmissionView{}, err
	}
	scope := actor.Scope()
	submission, err := s.store.FindSubmission(ctx, scope, submissionID)
	if err != nil {
		return models.SubmissionView{}, err
	}
	if err := policy.CanReviewSubmission(actor, submission); err != nil {
		return models.SubmissionView{}, err
	}
	if !store.ValidTransition(decision, submission.Status) {
		return models.SubmissionView{}, store.ErrSubmissionNotPending
	}

	reviewed, err := s.store.ReviewSubmission(ctx, scope, store.ReviewInput{
		SubmissionID: submission.ID,
		Decision:     decision,
		ReviewerID:   actor.UserID,
		Note:         note,
		ReviewedAt:   s.now(),
	})
	if err != nil {
		return models.SubmissionView{}, err
	}
	logs.Logger.WithFields(map[string]interface{}{
		"organization":  scope.OrganizationID,
		"submission_id": reviewed.ID,
		"status":        reviewed.Status,
		"reviewed_by":   actor.UserID,
	}).Info("checklist reviewed")
	return reviewed.View(), nil
}

func checkEntries(template models.ChecklistTemplate, entries []models.ChecklistEntry) error {
	answered := make(map[string]models.ChecklistEntry, len(entries))
	for _, entry := range entries {
		answered[labelKey(entry.Label)] = entry
	}

	var c validate.Checker
	for _, item := range template.Items {
		entry, ok := answered[labelKey(item.Label)]
		if !ok {
			if item.Required {
				c.Add("entries", "must include required item "+item.Label)
			}
			continue
		}
		if item.ValueType == models.ValueTypeNumber && entry.Value != nil && strings.TrimSpace(*entry.Value) != "" {
			if _, err := strconv.ParseFloat(strings.TrimSpace(*entry.Value), 64); err != nil {
				c.Add("entries", "value of "+item.Label+" must be a number")
			}
		}
	}
	return c.Err()
}

func labelKey(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
