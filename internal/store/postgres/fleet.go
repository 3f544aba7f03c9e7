package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smartop/fleet-service/internal/models"
	"smartop/fleet-service/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gorm.io/datatypes"
)

const machineColumns = `id, organization_id, name, type, brand, model, serial_number, status,
	assigned_operator_id, checklist_template_id, created_at`

const submissionColumns = `s.id, s.machine_id, s.operator_id, s.template_id, s.status, s.note, s.entries,
	s.reviewed_by, s.reviewed_at, s.review_note, s.created_at`

func (s *Store) CreateMachine(ctx context.Context, scope models.Scope, input models.NewMachine) (models.Machine, error) {
	status := input.Status
	if status == "" {
		status = models.MachineStatusActive
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO machines (id, organization_id, name, type, brand, model, serial_number, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING `+machineColumns,
		uuid.NewString(), scope.OrganizationID, input.Name, input.Type, input.Brand, input.Model, input.SerialNumber, status, time.Now().UTC())
	machine, err := scanMachine(row)
	if err != nil {
		return models.Machine{}, translate(err)
	}
	return machine, nil
}

func (s *Store) FindMachine(ctx context.Context, scope models.Scope, machineID string) (models.Machine, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+machineColumns+` FROM machines WHERE organization_id = $1 AND id = $2`, scope.OrganizationID, machineID)
	machine, err := scanMachine(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Machine{}, store.ErrMachineNotFound
		}
		return models.Machine{}, translate(err)
	}
	return machine, nil
}

func (s *Store) ListMachines(ctx context.Context, scope models.Scope, filter models.MachineFilter) ([]models.Machine, error) {
	query := `SELECT ` + machineColumns + ` FROM machines WHERE organization_id = $1`
	args := []interface{}{scope.OrganizationID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.OperatorID != "" {
		args = append(args, filter.OperatorID)
		query += fmt.Sprintf(" AND assigned_operator_id = $%d", len(args))
	}
	query += " ORDER BY name, id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	machines := make([]models.Machine, 0)
	for rows.Next() {
		machine, err := scanMachine(rows)
		if err != nil {
			return nil, translate(err)
		}
		machines = append(machines, machine)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return machines, nil
}

// AssignMachine relies on the foreign keys to reject links to missing records.
// Cross-organization targets are filtered by the EXISTS guards.
func (s *Store) AssignMachine(ctx context.Context, scope models.Scope, machineID string, assignment models.MachineAssignment) (models.Machine, error) {
	sets := []string{}
	args := []interface{}{scope.OrganizationID, machineID}
	if assignment.OperatorID != nil {
		args = append(args, nullIfEmpty(*assignment.OperatorID))
		sets = append(sets, fmt.Sprintf("assigned_operator_id = $%d", len(args)))
	}
	if assignment.ChecklistTemplateID != nil {
		args = append(args, nullIfEmpty(*assignment.ChecklistTemplateID))
		sets = append(sets, fmt.Sprintf("checklist_template_id = $%d", len(args)))
	}
	if len(sets) == 0 {
		return s.FindMachine(ctx, scope, machineID)
	}

	guards := ""
	if assignment.OperatorID != nil && *assignment.OperatorID != "" {
		guards += " AND EXISTS (SELECT 1 FROM users u WHERE u.organization_id = $1 AND u.id = assigned_operator_id)"
	}
	if assignment.ChecklistTemplateID != nil && *assignment.ChecklistTemplateID != "" {
		guards += " AND EXISTS (SELECT 1 FROM checklist_templates t WHERE t.organization_id = $1 AND t.id = checklist_template_id)"
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Machine{}, translate(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	update := "UPDATE machines SET "
	for i, set := range sets {
		if i > 0 {
			update += ", "
		}
		update += set
	}
	update += " WHERE organization_id = $1 AND id = $2 RETURNING " + machineColumns
	machine, err := scanMachine(tx.QueryRow(ctx, update, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Machine{}, store.ErrMachineNotFound
		}
		return models.Machine{}, translate(err)
	}

	if guards != "" {
		var ok bool
		if err := tx.QueryRow(ctx, `SELECT TRUE FROM machines WHERE organization_id = $1 AND id = $2`+guards, scope.OrganizationID, machineID).Scan(&ok); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return models.Machine{}, store.ErrConstraint
			}
			return models.Machine{}, translate(err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Machine{}, translate(err)
	}
	return machine, nil
}

func (s *Store) CreateTemplate(ctx context.Context, scope models.Scope, input models.NewChecklistTemplate) (models.ChecklistTemplate, error) {
	items, err := jsonArray(input.Items)
	if err != nil {
		return models.ChecklistTemplate{}, err
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO checklist_templates (id, organization_id, name, items, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, organization_id, name, items, created_at
	`, uuid.NewString(), scope.OrganizationID, input.Name, items, time.Now().UTC())
	template, err := scanTemplate(row)
	if err != nil {
		return models.ChecklistTemplate{}, translate(err)
	}
	return template, nil
}

func (s *Store) FindTemplate(ctx context.Context, scope models.Scope, templateID string) (models.ChecklistTemplate, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, organization_id, name, items, created_at
		FROM checklist_templates
		WHERE organization_id = $1 AND id = $2
	`, scope.OrganizationID, templateID)
	template, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChecklistTemplate{}, store.ErrTemplateNotFound
		}
		return models.ChecklistTemplate{}, translate(err)
	}
	return template, nil
}

func (s *Store) ListTemplates(ctx context.Context, scope models.Scope) ([]models.ChecklistTemplate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, organization_id, name, items, created_at
		FROM checklist_templates
		WHERE organization_id = $1
		ORDER BY name, id
	`, scope.OrganizationID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	templates := make([]models.ChecklistTemplate, 0)
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, translate(err)
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return templates, nil
}

// CreateSubmission inserts only when the machine and operator belong to scope.
func (s *Store) CreateSubmission(ctx context.Context, scope models.Scope, operatorID string, input models.NewSubmission) (models.ChecklistSubmission, error) {
	entries, err := jsonArray(input.Entries)
	if err != nil {
		return models.ChecklistSubmission{}, err
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO checklist_submissions AS s (id, machine_id, operator_id, template_id, status, note, entries, created_at)
		SELECT $3, m.id, u.id, $5, $6, $7, $8, $9
		FROM machines m
		JOIN users u ON u.organization_id = m.organization_id AND u.id = $4
		WHERE m.organization_id = $1 AND m.id = $2
		RETURNING `+submissionColumns,
		scope.OrganizationID, input.MachineID, uuid.NewString(), operatorID, input.TemplateID,
		models.SubmissionPending, input.Note, entries, time.Now().UTC())
	submission, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChecklistSubmission{}, store.ErrMachineNotFound
		}
		return models.ChecklistSubmission{}, translate(err)
	}
	return submission, nil
}

func (s *Store) FindSubmission(ctx context.Context, scope models.Scope, submissionID string) (models.ChecklistSubmission, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+submissionColumns+`
		FROM checklist_submissions s
		JOIN machines m ON m.id = s.machine_id
		WHERE m.organization_id = $1 AND s.id = $2
	`, scope.OrganizationID, submissionID)
	submission, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChecklistSubmission{}, store.ErrSubmissionNotFound
		}
		return models.ChecklistSubmission{}, translate(err)
	}
	return submission, nil
}

func (s *Store) ListSubmissions(ctx context.Context, scope models.Scope, filter models.SubmissionFilter) ([]models.ChecklistSubmission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM checklist_submissions s
		JOIN machines m ON m.id = s.machine_id
		WHERE m.organization_id = $1`
	args := []interface{}{scope.OrganizationID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND s.status = $%d", len(args))
	}
	if filter.MachineID != "" {
		args = append(args, filter.MachineID)
		query += fmt.Sprintf(" AND s.machine_id = $%d", len(args))
	}
	if filter.OperatorID != "" {
		args = append(args, filter.OperatorID)
		query += fmt.Sprintf(" AND s.operator_id = $%d", len(args))
	}
	query += " ORDER BY s.created_at DESC, s.id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	submissions := make([]models.ChecklistSubmission, 0)
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, translate(err)
		}
		submissions = append(submissions, submission)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return submissions, nil
}

// ReviewSubmission is a compare-and-swap on status: only a pending row is
// updated, so concurrent reviewers cannot both succeed.
func (s *Store) ReviewSubmission(ctx context.Context, scope models.Scope, input store.ReviewInput) (models.ChecklistSubmission, error) {
	reviewedAt := input.ReviewedAt
	if reviewedAt.IsZero() {
		reviewedAt = time.Now().UTC()
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE checklist_submissions AS s
		SET status = $3, reviewed_by = $4, reviewed_at = $5, review_note = $6
		FROM machines m
		WHERE m.id = s.machine_id AND m.organization_id = $1 AND s.id = $2 AND s.status = $7
		RETURNING `+submissionColumns,
		scope.OrganizationID, input.SubmissionID, string(input.Decision), input.ReviewerID, reviewedAt, input.Note, models.SubmissionPending)
	submission, err := scanSubmission(row)
	if err == nil {
		return submission, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.ChecklistSubmission{}, translate(err)
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM checklist_submissions s
			JOIN machines m ON m.id = s.machine_id
			WHERE m.organization_id = $1 AND s.id = $2
		)
	`, scope.OrganizationID, input.SubmissionID).Scan(&exists); err != nil {
		return models.ChecklistSubmission{}, translate(err)
	}
	if !exists {
		return models.ChecklistSubmission{}, store.ErrSubmissionNotFound
	}
	return models.ChecklistSubmission{}, store.ErrSubmissionNotPending
}

func (s *Store) CreateJob(ctx context.Context, scope models.Scope, input models.NewJob) (models.Job, error) {
	status := input.Status
	if status == "" {
		status = models.JobStatusPlanned
	}
	var job models.Job
	row := s.pool.QueryRow(ctx, `
		INSERT INTO jobs (id, organization_id, name, site, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, organization_id, name, site, status, created_at
	`, uuid.NewString(), scope.OrganizationID, input.Name, input.Site, status, time.Now().UTC())
	if err := row.Scan(&job.ID, &job.OrganizationID, &job.Name, &job.Site, &job.Status, &job.CreatedAt); err != nil {
		return models.Job{}, translate(err)
	}
	return job, nil
}

func (s *Store) FindJob(ctx context.Context, scope models.Scope, jobID string) (models.Job, error) {
	var job models.Job
	row := s.pool.QueryRow(ctx, `
		SELECT id, organization_id, name, site, status, created_at
		FROM jobs WHERE organization_id = $1 AND id = $2
	`, scope.OrganizationID, jobID)
	if err := row.Scan(&job.ID, &job.OrganizationID, &job.Name, &job.Site, &job.Status, &job.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Job{}, store.ErrJobNotFound
		}
		return models.Job{}, translate(err)
	}
	return job, nil
}

func (s *Store) ListJobs(ctx context.Context, scope models.Scope) ([]models.Job, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, organization_id, name, site, status, created_at
		FROM jobs WHERE organization_id = $1
		ORDER BY created_at DESC, id
	`, scope.OrganizationID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	jobs := make([]models.Job, 0)
	for rows.Next() {
		var job models.Job
		if err := rows.Scan(&job.ID, &job.OrganizationID, &job.Name, &job.Site, &job.Status, &job.CreatedAt); err != nil {
			return nil, translate(err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return jobs, nil
}

// LinkJob is idempotent: linking an existing pair returns the stored link.
func (s *Store) LinkJob(ctx context.Context, scope models.Scope, link models.JobAssignment) (models.JobAssignment, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.JobAssignment{}, translate(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var jobExists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE organization_id = $1 AND id = $2)`, scope.OrganizationID, link.JobID).Scan(&jobExists); err != nil {
		return models.JobAssignment{}, translate(err)
	}
	if !jobExists {
		return models.JobAssignment{}, store.ErrJobNotFound
	}

	var inScope bool
	if err := tx.QueryRow(ctx, `
		SELECT ($2::uuid IS NULL OR EXISTS (SELECT 1 FROM machines WHERE organization_id = $1 AND id = $2))
		   AND ($3::uuid IS NULL OR EXISTS (SELECT 1 FROM users WHERE organization_id = $1 AND id = $3))
	`, scope.OrganizationID, link.MachineID, link.OperatorID).Scan(&inScope); err != nil {
		return models.JobAssignment{}, translate(err)
	}
	if !inScope {
		return models.JobAssignment{}, store.ErrConstraint
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO job_assignments (id, job_id, machine_id, operator_id, created_at)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (
			SELECT 1 FROM job_assignments
			WHERE job_id = $2
			  AND machine_id IS NOT DISTINCT FROM $3::uuid
			  AND operator_id IS NOT DISTINCT FROM $4::uuid
		)
	`, uuid.NewString(), link.JobID, link.MachineID, link.OperatorID, time.Now().UTC()); err != nil {
		return models.JobAssignment{}, translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return models.JobAssignment{}, translate(err)
	}
	return link, nil
}

func (s *Store) UnlinkJob(ctx context.Context, scope models.Scope, link models.JobAssignment) error {
	if _, err := s.FindJob(ctx, scope, link.JobID); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM job_assignments
		WHERE job_id = $1
		  AND machine_id IS NOT DISTINCT FROM $2::uuid
		  AND operator_id IS NOT DISTINCT FROM $3::uuid
	`, link.JobID, link.MachineID, link.OperatorID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrAssignmentNotFound
	}
	return nil
}

func (s *Store) ListJobAssignments(ctx context.Context, scope models.Scope, jobID string) ([]models.JobAssignment, error) {
	if _, err := s.FindJob(ctx, scope, jobID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT job_id, machine_id, operator_id
		FROM job_assignments
		WHERE job_id = $1
		ORDER BY created_at, id
	`, jobID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	links := make([]models.JobAssignment, 0)
	for rows.Next() {
		var link models.JobAssignment
		if err := rows.Scan(&link.JobID, &link.MachineID, &link.OperatorID); err != nil {
			return nil, translate(err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return links, nil
}

func scanMachine(row pgx.Row) (models.Machine, error) {
	var machine models.Machine
	err := row.Scan(&machine.ID, &machine.OrganizationID, &machine.Name, &machine.Type, &machine.Brand,
		&machine.Model, &machine.SerialNumber, &machine.Status, &machine.AssignedOperatorID,
		&machine.ChecklistTemplateID, &machine.CreatedAt)
	return machine, err
}

func scanTemplate(row pgx.Row) (models.ChecklistTemplate, error) {
	var template models.ChecklistTemplate
	var items datatypes.JSON
	if err := row.Scan(&template.ID, &template.OrganizationID, &template.Name, &items, &template.CreatedAt); err != nil {
		return models.ChecklistTemplate{}, err
	}
	template.Items = []models.ChecklistItem{}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &template.Items); err != nil {
			return models.ChecklistTemplate{}, err
		}
	}
	return template, nil
}

func scanSubmission(row pgx.Row) (models.ChecklistSubmission, error) {
	var submission models.ChecklistSubmission
	var entries datatypes.JSON
	err := row.Scan(&submission.ID, &submission.MachineID, &submission.OperatorID, &submission.TemplateID,
		&submission.Status, &submission.Note, &entries, &submission.ReviewedBy, &submission.ReviewedAt,
		&submission.ReviewNote, &submission.CreatedAt)
	if err != nil {
		return models.ChecklistSubmission{}, err
	}
	submission.Entries = []models.ChecklistEntry{}
	if len(entries) > 0 {
		if err := json.Unmarshal(entries, &submission.Entries); err != nil {
			return models.ChecklistSubmission{}, err
		}
	}
	return submission, nil
}
