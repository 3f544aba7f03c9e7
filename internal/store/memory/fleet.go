package memory

import (
	"context"
	"sort"
	"time"

	"smartop/fleet-service/internal/models"
	"smartop/fleet-service/internal/store"

	"github.com/google/uuid"
)

func (s *Store) CreateMachine(ctx context.Context, scope models.Scope, input models.NewMachine) (models.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := input.Status
	if status == "" {
		status = models.MachineStatusActive
	}
	machine := models.Machine{
		ID:             uuid.NewString(),
		OrganizationID: scope.OrganizationID,
		Name:           input.Name,
		Type:           input.Type,
		Brand:          copyString(input.Brand),
		Model:          copyString(input.Model),
		SerialNumber:   copyString(input.SerialNumber),
		Status:         status,
		CreatedAt:      s.now(),
	}
	s.machines[machine.ID] = machine
	return cloneMachine(machine), nil
}

func (s *Store) FindMachine(ctx context.Context, scope models.Scope, machineID string) (models.Machine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	machine, ok := s.machineLocked(scope, machineID)
	if !ok {
		return models.Machine{}, store.ErrMachineNotFound
	}
	return cloneMachine(machine), nil
}

func (s *Store) ListMachines(ctx context.Context, scope models.Scope, filter models.MachineFilter) ([]models.Machine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	machines := make([]models.Machine, 0)
	for _, machine := range s.machines {
		if machine.OrganizationID != scope.OrganizationID {
			continue
		}
		if filter.Status != "" && machine.Status != filter.Status {
			continue
		}
		if filter.OperatorID != "" && (machine.AssignedOperatorID == nil || *machine.AssignedOperatorID != filter.OperatorID) {
			continue
		}
		machines = append(machines, cloneMachine(machine))
	}
	sort.Slice(machines, func(i, j int) bool {
		if machines[i].Name != machines[j].Name {
			return machines[i].Name < machines[j].Name
		}
		return machines[i].ID < machines[j].ID
	})
	return machines, nil
}

func (s *Store) AssignMachine(ctx context.Context, scope models.Scope, machineID string, assignment models.MachineAssignment) (models.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	machine, ok := s.machineLocked(scope, machineID)
	if !ok {
		return models.Machine{}, store.ErrMachineNotFound
	}
	if assignment.OperatorID != nil {
		if *assignment.OperatorID == "" {
			machine.AssignedOperatorID = nil
		} else {
			if _, ok := s.userLocked(scope, *assignment.OperatorID); !ok {
				return models.Machine{}, store.ErrConstraint
			}
			machine.AssignedOperatorID = copyString(assignment.OperatorID)
		}
	}
	if assignment.ChecklistTemplateID != nil {
		if *assignment.ChecklistTemplateID == "" {
			machine.ChecklistTemplateID = nil
		} else {
			if _, ok := s.templateLocked(scope, *assignment.ChecklistTemplateID); !ok {
				return models.Machine{}, store.ErrConstraint
			}
			machine.ChecklistTemplateID = copyString(assignment.ChecklistTemplateID)
		}
	}
	s.machines[machine.ID] = machine
	return cloneMachine(machine), nil
}

func (s *Store) CreateTemplate(ctx context.Context, scope models.Scope, input models.NewChecklistTemplate) (models.ChecklistTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	template := models.ChecklistTemplate{
		ID:             uuid.NewString(),
		OrganizationID: scope.OrganizationID,
		Name:           input.Name,
		Items:          append([]models.ChecklistItem{}, input.Items...),
		CreatedAt:      s.now(),
	}
	s.templates[template.ID] = template
	return cloneTemplate(template), nil
}

func (s *Store) FindTemplate(ctx context.Context, scope models.Scope, templateID string) (models.ChecklistTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	template, ok := s.templateLocked(scope, templateID)
	if !ok {
		return models.ChecklistTemplate{}, store.ErrTemplateNotFound
	}
	return cloneTemplate(template), nil
}

func (s *Store) ListTemplates(ctx context.Context, scope models.Scope) ([]models.ChecklistTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	templates := make([]models.ChecklistTemplate, 0)
	for _, template := range s.templates {
		if template.OrganizationID == scope.OrganizationID {
			templates = append(templates, cloneTemplate(template))
		}
	}
	sort.Slice(templates, func(i, j int) bool {
		if templates[i].Name != templates[j].Name {
			return templates[i].Name < templates[j].Name
		}
		return templates[i].ID < templates[j].ID
	})
	return templates, nil
}

func (s *Store) CreateSubmission(ctx context.Context, scope models.Scope, operatorID string, input models.NewSubmission) (models.ChecklistSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.machineLocked(scope, input.MachineID); !ok {
		return models.ChecklistSubmission{}, store.ErrMachineNotFound
	}
	if _, ok := s.userLocked(scope, operatorID); !ok {
		return models.ChecklistSubmission{}, store.ErrConstraint
	}
	submission := models.ChecklistSubmission{
		ID:         uuid.NewString(),
		MachineID:  input.MachineID,
		OperatorID: operatorID,
		TemplateID: copyString(input.TemplateID),
		Status:     models.SubmissionPending,
		Note:       input.Note,
		Entries:    copyEntries(input.Entries),
		CreatedAt:  s.now(),
	}
	s.submissions[submission.ID] = submission
	return cloneSubmission(submission), nil
}

func (s *Store) FindSubmission(ctx context.Context, scope models.Scope, submissionID string) (models.ChecklistSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submission, ok := s.submissionLocked(scope, submissionID)
	if !ok {
		return models.ChecklistSubmission{}, store.ErrSubmissionNotFound
	}
	return cloneSubmission(submission), nil
}

func (s *Store) ListSubmissions(ctx context.Context, scope models.Scope, filter models.SubmissionFilter) ([]models.ChecklistSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submissions := make([]models.ChecklistSubmission, 0)
	for _, submission := range s.submissions {
		if _, ok := s.machineLocked(scope, submission.MachineID); !ok {
			continue
		}
		if filter.Status != "" && submission.Status != filter.Status {
			continue
		}
		if filter.MachineID != "" && submission.MachineID != filter.MachineID {
			continue
		}
		if filter.OperatorID != "" && submission.OperatorID != filter.OperatorID {
			continue
		}
		submissions = append(submissions, cloneSubmission(submission))
	}
	sort.Slice(submissions, func(i, j int) bool {
		if !submissions[i].CreatedAt.Equal(submissions[j].CreatedAt) {
			return submissions[i].CreatedAt.After(submissions[j].CreatedAt)
		}
		return submissions[i].ID < submissions[j].ID
	})
	return submissions, nil
}

func (s *Store) ReviewSubmission(ctx context.Context, scope models.Scope, input store.ReviewInput) (models.ChecklistSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	submission, ok := s.submissionLocked(scope, input.SubmissionID)
	if !ok {
		return models.ChecklistSubmission{}, store.ErrSubmissionNotFound
	}
	if submission.Status != models.SubmissionPending {
		return models.ChecklistSubmission{}, store.ErrSubmissionNotPending
	}
	reviewer := input.ReviewerID
	reviewedAt := input.ReviewedAt
	if reviewedAt.IsZero() {
		reviewedAt = s.now()
	}
	submission.Status = string(input.Decision)
	submission.ReviewedBy = &reviewer
	submission.ReviewedAt = &reviewedAt
	submission.ReviewNote = copyString(input.Note)
	s.submissions[submission.ID] = submission
	return cloneSubmission(submission), nil
}

func (s *Store) CreateJob(ctx context.Context, scope models.Scope, input models.NewJob) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := input.Status
	if status == "" {
		status = models.JobStatusPlanned
	}
	job := models.Job{
		ID:             uuid.NewString(),
		OrganizationID: scope.OrganizationID,
		Name:           input.Name,
		Site:           copyString(input.Site),
		Status:         status,
		CreatedAt:      s.now(),
	}
	s.jobs[job.ID] = job
	return cloneJob(job), nil
}

func (s *Store) FindJob(ctx context.Context, scope models.Scope, jobID string) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok || job.OrganizationID != scope.OrganizationID {
		return models.Job{}, store.ErrJobNotFound
	}
	return cloneJob(job), nil
}

func (s *Store) ListJobs(ctx context.Context, scope models.Scope) ([]models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]models.Job, 0)
	for _, job := range s.jobs {
		if job.OrganizationID == scope.OrganizationID {
			jobs = append(jobs, cloneJob(job))
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
		}
		return jobs[i].ID < jobs[j].ID
	})
	return jobs, nil
}

func (s *Store) LinkJob(ctx context.Context, scope models.Scope, link models.JobAssignment) (models.JobAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[link.JobID]
	if !ok || job.OrganizationID != scope.OrganizationID {
		return models.JobAssignment{}, store.ErrJobNotFound
	}
	if link.MachineID != nil {
		if _, ok := s.machineLocked(scope, *link.MachineID); !ok {
			return models.JobAssignment{}, store.ErrConstraint
		}
	}
	if link.OperatorID != nil {
		if _, ok := s.userLocked(scope, *link.OperatorID); !ok {
			return models.JobAssignment{}, store.ErrConstraint
		}
	}
	for _, existing := range s.assignments {
		if sameLink(existing, link) {
			return cloneAssignment(existing), nil
		}
	}
	stored := cloneAssignment(link)
	s.assignments = append(s.assignments, stored)
	return cloneAssignment(stored), nil
}

func (s *Store) UnlinkJob(ctx context.Context, scope models.Scope, link models.JobAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[link.JobID]
	if !ok || job.OrganizationID != scope.OrganizationID {
		return store.ErrJobNotFound
	}
	for i, existing := range s.assignments {
		if sameLink(existing, link) {
			s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)
			return nil
		}
	}
	return store.ErrAssignmentNotFound
}

func (s *Store) ListJobAssignments(ctx context.Context, scope models.Scope, jobID string) ([]models.JobAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok || job.OrganizationID != scope.OrganizationID {
		return nil, store.ErrJobNotFound
	}
	links := make([]models.JobAssignment, 0)
	for _, existing := range s.assignments {
		if existing.JobID == jobID {
			links = append(links, cloneAssignment(existing))
		}
	}
	return links, nil
}

func (s *Store) machineLocked(scope models.Scope, machineID string) (models.Machine, bool) {
	machine, ok := s.machines[machineID]
	if !ok || machine.OrganizationID != scope.OrganizationID {
		return models.Machine{}, false
	}
	return machine, true
}

func (s *Store) templateLocked(scope models.Scope, templateID string) (models.ChecklistTemplate, bool) {
	template, ok := s.templates[templateID]
	if !ok || template.OrganizationID != scope.OrganizationID {
		return models.ChecklistTemplate{}, false
	}
	return template, true
}

// Submissions belong to the organization of their machine.
func (s *Store) submissionLocked(scope models.Scope, submissionID string) (models.ChecklistSubmission, bool) {
	submission, ok := s.submissions[submissionID]
	if !ok {
		return models.ChecklistSubmission{}, false
	}
	if _, ok := s.machineLocked(scope, submission.MachineID); !ok {
		return models.ChecklistSubmission{}, false
	}
	return submission, true
}

func (s *Store) machineSummariesLocked(scope models.Scope, operatorID string) []models.MachineSummary {
	summaries := make([]models.MachineSummary, 0)
	for _, machine := range s.machines {
		if machine.OrganizationID != scope.OrganizationID || machine.AssignedOperatorID == nil {
			continue
		}
		if *machine.AssignedOperatorID == operatorID {
			summaries = append(summaries, machine.Summary())
		}
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries
}

func sameLink(a, b models.JobAssignment) bool {
	return a.JobID == b.JobID && equalPtr(a.MachineID, b.MachineID) && equalPtr(a.OperatorID, b.OperatorID)
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func nilIfEmpty(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return copyString(v)
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func copyEntries(entries []models.ChecklistEntry) []models.ChecklistEntry {
	out := make([]models.ChecklistEntry, len(entries))
	for i, entry := range entries {
		entry.Value = copyString(entry.Value)
		entry.PhotoURL = copyString(entry.PhotoURL)
		out[i] = entry
	}
	return out
}

func cloneUser(u models.User) models.User {
	u.Phone = copyString(u.Phone)
	u.JobTitle = copyString(u.JobTitle)
	u.AvatarURL = copyString(u.AvatarURL)
	u.Licenses = copyStrings(u.Licenses)
	u.Specialties = copyStrings(u.Specialties)
	u.LastLogin = copyTime(u.LastLogin)
	u.Latitude = copyFloat(u.Latitude)
	u.Longitude = copyFloat(u.Longitude)
	u.Address = copyString(u.Address)
	u.LocationUpdatedAt = copyTime(u.LocationUpdatedAt)
	return u
}

func cloneMachine(m models.Machine) models.Machine {
	m.Brand = copyString(m.Brand)
	m.Model = copyString(m.Model)
	m.SerialNumber = copyString(m.SerialNumber)
	m.AssignedOperatorID = copyString(m.AssignedOperatorID)
	m.ChecklistTemplateID = copyString(m.ChecklistTemplateID)
	return m
}

func cloneTemplate(t models.ChecklistTemplate) models.ChecklistTemplate {
	t.Items = append([]models.ChecklistItem{}, t.Items...)
	return t
}

func cloneSubmission(s models.ChecklistSubmission) models.ChecklistSubmission {
	s.TemplateID = copyString(s.TemplateID)
	s.Entries = copyEntries(s.Entries)
	s.ReviewedBy = copyString(s.ReviewedBy)
	s.ReviewedAt = copyTime(s.ReviewedAt)
	s.ReviewNote = copyString(s.ReviewNote)
	return s
}

func cloneJob(j models.Job) models.Job {
	j.Site = copyString(j.Site)
	return j
}

func cloneAssignment(a models.JobAssignment) models.JobAssignment {
	a.MachineID = copyString(a.MachineID)
	a.OperatorID = copyString(a.OperatorID)
	return a
}
