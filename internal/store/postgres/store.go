package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"smartop/fleet-service/internal/models"
	"smartop/fleet-service/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/datatypes"
)

const usersEmailIndex = "idx_users_org_email"

const userColumns = `
	id, organization_id, email, password_hash, first_name, last_name, role, phone, job_title,
	avatar_url, licenses, specialties, is_active, last_login, latitude, longitude, address,
	location_updated_at, biometric_enabled, email_notifications, push_notifications,
	sms_notifications, checklist_reminders, created_at, updated_at`

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) CreateUser(ctx context.Context, scope models.Scope, input store.CreateUserInput) (models.User, error) {
	licenses, err := jsonArray(input.Licenses)
	if err != nil {
		return models.User{}, err
	}
	specialties, err := jsonArray(input.Specialties)
	if err != nil {
		return models.User{}, err
	}
	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (
			id, organization_id, email, password_hash, first_name, last_name, role, phone, job_title,
			avatar_url, licenses, specialties, is_active, biometric_enabled, email_notifications,
			push_notifications, sms_notifications, checklist_reminders, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,TRUE,FALSE,TRUE,TRUE,FALSE,TRUE,$13,$13)
		RETURNING `+userColumns,
		uuid.NewString(), scope.OrganizationID, strings.ToLower(input.Email), nullIfEmpty(input.PasswordHash),
		input.FirstName, input.LastName, string(input.Role), input.Phone, input.JobTitle, input.AvatarURL,
		licenses, specialties, createdAt)
	user, err := scanUser(row)
	if err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

func (s *Store) FindUser(ctx context.Context, scope models.Scope, userID string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE organization_id = $1 AND id = $2`, scope.OrganizationID, userID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		return models.User{}, translate(err)
	}
	return user, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, scope models.Scope, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE organization_id = $1 AND email = lower($2)`, scope.OrganizationID, strings.TrimSpace(email))
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		return models.User{}, translate(err)
	}
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, scope models.Scope, query models.UserQuery) ([]models.User, int, error) {
	query = store.NormalizeUserQuery(query)

	where := " WHERE organization_id = $1"
	args := []interface{}{scope.OrganizationID}
	if query.Search != "" {
		args = append(args, "%"+escapeLike(query.Search)+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", n, n, n)
	}
	if query.Role != nil {
		args = append(args, string(*query.Role))
		where += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if query.IsActive != nil {
		args = append(args, *query.IsActive)
		where += fmt.Sprintf(" AND is_active = $%d", len(args))
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, 0, translate(err)
	}

	column := store.UserSortColumns[query.SortBy]
	direction := "DESC"
	if query.SortOrder == "asc" {
		direction = "ASC"
	}
	args = append(args, query.Limit, (query.Page-1)*query.Limit)
	sql := "SELECT " + userColumns + " FROM users" + where +
		fmt.Sprintf(" ORDER BY %s %s NULLS LAST, id ASC LIMIT $%d OFFSET $%d", column, direction, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, translate(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(err)
	}
	return users, total, nil
}

// UpdateUser writes every set field of patch in a single statement.
func (s *Store) UpdateUser(ctx context.Context, scope models.Scope, userID string, patch models.UserPatch) (models.User, error) {
	sets := []string{}
	args := []interface{}{scope.OrganizationID, userID}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Email != nil {
		set("email", strings.ToLower(*patch.Email))
	}
	if patch.FirstName != nil {
		set("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set("last_name", *patch.LastName)
	}
	if patch.Phone != nil {
		set("phone", nullIfEmpty(*patch.Phone))
	}
	if patch.AvatarURL != nil {
		set("avatar_url", nullIfEmpty(*patch.AvatarURL))
	}
	if patch.Role != nil {
		set("role", string(*patch.Role))
	}
	if patch.JobTitle != nil {
		set("job_title", nullIfEmpty(*patch.JobTitle))
	}
	if patch.Licenses != nil {
		licenses, err := jsonArray(*patch.Licenses)
		if err != nil {
			return models.User{}, err
		}
		set("licenses", licenses)
	}
	if patch.Specialties != nil {
		specialties, err := jsonArray(*patch.Specialties)
		if err != nil {
			return models.User{}, err
		}
		set("specialties", specialties)
	}
	if patch.IsActive != nil {
		set("is_active", *patch.IsActive)
	}
	if len(sets) == 0 {
		return s.FindUser(ctx, scope, userID)
	}
	sets = append(sets, "updated_at = NOW()")

	row := s.pool.QueryRow(ctx, `
		UPDATE users SET `+strings.Join(sets, ", ")+`
		WHERE organization_id = $1 AND id = $2
		RETURNING `+userColumns, args...)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		return models.User{}, translate(err)
	}
	return user, nil
}

func (s *Store) DeactivateUser(ctx context.Context, scope models.Scope, userID string) error {
	return s.execUser(ctx, `
		UPDATE users SET is_active = FALSE, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
	`, scope.OrganizationID, userID)
}

func (s *Store) UpdateLocation(ctx context.Context, scope models.Scope, userID string, location models.LocationUpdate, at time.Time) (models.UserLocation, error) {
	var result models.UserLocation
	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET latitude = $3, longitude = $4, address = $5, location_updated_at = $6, updated_at = $6
		WHERE organization_id = $1 AND id = $2
		RETURNING id, latitude, longitude, address, location_updated_at
	`, scope.OrganizationID, userID, location.Latitude, location.Longitude, location.Address, at)
	if err := row.Scan(&result.ID, &result.Latitude, &result.Longitude, &result.Address, &result.LocationUpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.UserLocation{}, store.ErrUserNotFound
		}
		return models.UserLocation{}, translate(err)
	}
	return result, nil
}

func (s *Store) SetBiometric(ctx context.Context, scope models.Scope, userID string, enabled bool) error {
	return s.execUser(ctx, `
		UPDATE users SET biometric_enabled = $3, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
	`, scope.OrganizationID, userID, enabled)
}

func (s *Store) SetPasswordHash(ctx context.Context, scope models.Scope, userID, hash string) error {
	return s.execUser(ctx, `
		UPDATE users SET password_hash = $3, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
	`, scope.OrganizationID, userID, hash)
}

func (s *Store) UpdateNotificationSettings(ctx context.Context, scope models.Scope, userID string, patch models.NotificationPatch) (models.NotificationSettings, error) {
	var settings models.NotificationSettings
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET
			email_notifications = COALESCE($3, email_notifications),
			push_notifications = COALESCE($4, push_notifications),
			sms_notifications = COALESCE($5, sms_notifications),
			checklist_reminders = COALESCE($6, checklist_reminders),
			updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
		RETURNING email_notifications, push_notifications, sms_notifications, checklist_reminders
	`, scope.OrganizationID, userID, patch.EmailNotifications, patch.PushNotifications, patch.SMSNotifications, patch.ChecklistReminders)
	if err := row.Scan(&settings.EmailNotifications, &settings.PushNotifications, &settings.SMSNotifications, &settings.ChecklistReminders); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.NotificationSettings{}, store.ErrUserNotFound
		}
		return models.NotificationSettings{}, translate(err)
	}
	return settings, nil
}

func (s *Store) RecordLogin(ctx context.Context, scope models.Scope, userID string, at time.Time) error {
	return s.execUser(ctx, `
		UPDATE users SET last_login = $3
		WHERE organization_id = $1 AND id = $2
	`, scope.OrganizationID, userID, at)
}

func (s *Store) ListOperatorsWithLocation(ctx context.Context, scope models.Scope) ([]models.OperatorLocation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, first_name, last_name, phone, avatar_url, latitude, longitude, address, location_updated_at
		FROM users
		WHERE organization_id = $1
		  AND role = $2
		  AND is_active = TRUE
		  AND latitude IS NOT NULL
		  AND longitude IS NOT NULL
		ORDER BY last_name, id
	`, scope.OrganizationID, string(models.RoleOperator))
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	operators := make([]models.OperatorLocation, 0)
	index := map[string]int{}
	for rows.Next() {
		var op models.OperatorLocation
		if err := rows.Scan(&op.ID, &op.FirstName, &op.LastName, &op.Phone, &op.AvatarURL, &op.Latitude, &op.Longitude, &op.Address, &op.LocationUpdatedAt); err != nil {
			return nil, translate(err)
		}
		op.AssignedMachines = []models.MachineSummary{}
		index[op.ID] = len(operators)
		operators = append(operators, op)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	if len(operators) == 0 {
		return operators, nil
	}

	ids := make([]string, 0, len(operators))
	for _, op := range operators {
		ids = append(ids, op.ID)
	}
	machineRows, err := s.pool.Query(ctx, `
		SELECT assigned_operator_id, id, name, type, status
		FROM machines
		WHERE organization_id = $1 AND assigned_operator_id::text = ANY($2::text[])
		ORDER BY name
	`, scope.OrganizationID, ids)
	if err != nil {
		return nil, translate(err)
	}
	defer machineRows.Close()
	for machineRows.Next() {
		var operatorID string
		var summary models.MachineSummary
		if err := machineRows.Scan(&operatorID, &summary.ID, &summary.Name, &summary.Type, &summary.Status); err != nil {
			return nil, translate(err)
		}
		if i, ok := index[operatorID]; ok {
			operators[i].AssignedMachines = append(operators[i].AssignedMachines, summary)
		}
	}
	if err := machineRows.Err(); err != nil {
		return nil, translate(err)
	}
	return operators, nil
}

func (s *Store) execUser(ctx context.Context, sql string, args ...interface{}) error {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	var passwordHash *string
	var role string
	var licenses, specialties datatypes.JSON
	err := row.Scan(
		&user.ID, &user.OrganizationID, &user.Email, &passwordHash, &user.FirstName, &user.LastName, &role,
		&user.Phone, &user.JobTitle, &user.AvatarURL, &licenses, &specialties, &user.IsActive, &user.LastLogin,
		&user.Latitude, &user.Longitude, &user.Address, &user.LocationUpdatedAt, &user.BiometricEnabled,
		&user.EmailNotifications, &user.PushNotifications, &user.SMSNotifications, &user.ChecklistReminders,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, err
	}
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	user.Role = models.Role(role)
	if user.Licenses, err = decodeStrings(licenses); err != nil {
		return models.User{}, err
	}
	if user.Specialties, err = decodeStrings(specialties); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// translate maps driver errors onto store sentinels. Unclassified failures
// keep the cause for logs but match ErrStorage.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			if pgErr.ConstraintName == usersEmailIndex {
				return store.ErrEmailTaken
			}
			return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName)
		case "23503", "23502", "23514", "22P02", "22001":
			return fmt.Errorf("%w: %s %s", store.ErrConstraint, pgErr.Code, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%w: %v", store.ErrStorage, err)
}

func jsonArray[T any](values []T) (datatypes.JSON, error) {
	if values == nil {
		values = []T{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func decodeStrings(raw datatypes.JSON) ([]string, error) {
	values := []string{}
	if len(raw) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
