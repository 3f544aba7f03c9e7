package httpapi

import (
	"strings"

	"smartop/fleet-service/internal/models"
	"smartop/fleet-service/internal/validate"
)

func roleValues() []string {
	values := make([]string, 0, len(models.Roles))
	for _, role := range models.Roles {
		values = append(values, string(role))
	}
	return values
}

func (req *loginRequest) validate() error {
	req.OrganizationID = strings.TrimSpace(req.OrganizationID)
	req.Email = strings.TrimSpace(req.Email)

	var c validate.Checker
	c.Required("organizationId", req.OrganizationID)
	c.Email("email", req.Email)
	c.Required("password", req.Password)
	return c.Err()
}

type createUserRequest struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Role        *string  `json:"role"`
	Phone       *string  `json:"phone"`
	JobTitle    *string  `json:"jobTitle"`
	AvatarURL   *string  `json:"avatarUrl"`
	Licenses    []string `json:"licenses"`
	Specialties []string `json:"specialties"`
}

func (req *createUserRequest) toInput() (models.NewUser, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	var c validate.Checker
	c.Email("email", req.Email)
	c.Length("password", req.Password, 8, 100)
	c.Length("firstName", req.FirstName, 2, 100)
	c.Length("lastName", req.LastName, 2, 100)
	if req.Role != nil {
		c.OneOf("role", *req.Role, roleValues()...)
	}
	if req.Phone != nil {
		c.MaxLength("phone", *req.Phone, 20)
	}
	if req.JobTitle != nil {
		c.MaxLength("jobTitle", *req.JobTitle, 100)
	}
	if req.AvatarURL != nil {
		c.MaxLength("avatarUrl", *req.AvatarURL, 500)
	}
	c.Strings("licenses", req.Licenses, 100)
	c.Strings("specialties", req.Specialties, 100)
	if err := c.Err(); err != nil {
		return models.NewUser{}, err
	}

	input := models.NewUser{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		JobTitle:    req.JobTitle,
		AvatarURL:   req.AvatarURL,
		Licenses:    req.Licenses,
		Specialties: req.Specialties,
	}
	if req.Role != nil {
		input.Role = models.Role(*req.Role)
	}
	return input, nil
}

// updateUserRequest accepts every user field; the role policy decides which
// of them survive.
type updateUserRequest struct {
	Email       *string   `json:"email"`
	FirstName   *string   `json:"firstName"`
	LastName    *string   `json:"lastName"`
	Role        *string   `json:"role"`
	Phone       *string   `json:"phone"`
	JobTitle    *string   `json:"jobTitle"`
	AvatarURL   *string   `json:"avatarUrl"`
	Licenses    *[]string `json:"licenses"`
	Specialties *[]string `json:"specialties"`
	IsActive    *bool     `json:"isActive"`
}

// keepSelfProfile drops every field outside the self-profile allow-list so
// that values the policy would discard are never validated.
func (req *updateUserRequest) keepSelfProfile() {
	req.Email = nil
	req.Role = nil
	req.JobTitle = nil
	req.Licenses = nil
	req.Specialties = nil
	req.IsActive = nil
}

func (req *updateUserRequest) toPatch() (models.UserPatch, error) {
	var c validate.Checker
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		req.Email = &email
		c.Email("email", email)
	}
	if req.FirstName != nil {
		name := strings.TrimSpace(*req.FirstName)
		req.FirstName = &name
		c.Length("firstName", name, 2, 100)
	}
	if req.LastName != nil {
		name := strings.TrimSpace(*req.LastName)
		req.LastName = &name
		c.Length("lastName", name, 2, 100)
	}
	if req.Role != nil {
		c.OneOf("role", *req.Role, roleValues()...)
	}
	if req.Phone != nil {
		c.MaxLength("phone", *req.Phone, 20)
	}
	if req.JobTitle != nil {
		c.MaxLength("jobTitle", *req.JobTitle, 100)
	}
	if req.AvatarURL != nil {
		c.MaxLength("avatarUrl", *req.AvatarURL, 500)
	}
	if req.Licenses != nil {
		c.Strings("licenses", *req.Licenses, 100)
	}
	if req.Specialties != nil {
		c.Strings("specialties", *req.Specialties, 100)
	}
	if err := c.Err(); err != nil {
		return models.UserPatch{}, err
	}

	patch := models.UserPatch{
		SelfProfilePatch: models.SelfProfilePatch{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			AvatarURL: req.AvatarURL,
		},
		Email:       req.Email,
		JobTitle:    req.JobTitle,
		Licenses:    req.Licenses,
		Specialties: req.Specialties,
		IsActive:    req.IsActive,
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		patch.Role = &role
	}
	return patch, nil
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   *string  `json:"address"`
}

func (req locationRequest) toInput() (models.LocationUpdate, error) {
	var c validate.Checker
	if req.Latitude == nil {
		c.Add("latitude", "must be a number")
	} else {
		c.Range("latitude", *req.Latitude, -90, 90)
	}
	if req.Longitude == nil {
		c.Add("longitude", "must be a number")
	} else {
		c.Range("longitude", *req.Longitude, -180, 180)
	}
	if req.Address != nil {
		c.MaxLength("address", *req.Address, 500)
	}
	if err := c.Err(); err != nil {
		return models.LocationUpdate{}, err
	}
	return models.LocationUpdate{Latitude: *req.Latitude, Longitude: *req.Longitude, Address: req.Address}, nil
}

type biometricRequest struct {
	Enabled *bool `json:"enabled"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (req changePasswordRequest) validate() error {
	var c validate.Checker
	c.Required("currentPassword", req.CurrentPassword)
	c.Length("newPassword", req.NewPassword, 8, 100)
	return c.Err()
}

type notificationRequest struct {
	EmailNotifications *bool `json:"emailNotifications"`
	PushNotifications  *bool `json:"pushNotifications"`
	SMSNotifications   *bool `json:"smsNotifications"`
	ChecklistReminders *bool `json:"checklistReminders"`
}

type machineRequest struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Brand        *string `json:"brand"`
	Model        *string `json:"model"`
	SerialNumber *string `json:"serialNumber"`
	Status       string  `json:"status"`
}

func (req *machineRequest) toInput() (models.NewMachine, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Type = strings.TrimSpace(req.Type)

	var c validate.Checker
	if c.Required("name", req.Name) {
		c.MaxLength("name", req.Name, 200)
	}
	if c.Required("type", req.Type) {
		c.MaxLength("type", req.Type, 100)
	}
	if req.Brand != nil {
		c.MaxLength("brand", *req.Brand, 100)
	}
	if req.Model != nil {
		c.MaxLength("model", *req.Model, 100)
	}
	if req.SerialNumber != nil {
		c.MaxLength("serialNumber", *req.SerialNumber, 100)
	}
	if req.Status != "" {
		c.OneOf("status", req.Status, models.MachineStatuses...)
	}
	if err := c.Err(); err != nil {
		return models.NewMachine{}, err
	}
	return models.NewMachine{
		Name:         req.Name,
		Type:         req.Type,
		Brand:        req.Brand,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		Status:       req.Status,
	}, nil
}

type machineAssignmentRequest struct {
	OperatorID          *string `json:"operatorId"`
	ChecklistTemplateID *string `json:"checklistTemplateId"`
}

func (req machineAssignmentRequest) toInput() (models.MachineAssignment, error) {
	var c validate.Checker
	c.Check(req.OperatorID != nil || req.ChecklistTemplateID != nil, "operatorId", "or checklistTemplateId is required")
	if req.OperatorID != nil && *req.OperatorID != "" {
		c.UUID("operatorId", *req.OperatorID)
	}
	if req.ChecklistTemplateID != nil && *req.ChecklistTemplateID != "" {
		c.UUID("checklistTemplateId", *req.ChecklistTemplateID)
	}
	if err := c.Err(); err != nil {
		return models.MachineAssignment{}, err
	}
	return models.MachineAssignment{OperatorID: req.OperatorID, ChecklistTemplateID: req.ChecklistTemplateID}, nil
}

type templateRequest struct {
	Name  string                `json:"name"`
	Items []templateItemRequest `json:"items"`
}

type templateItemRequest struct {
	Label     string `json:"label"`
	ValueType string `json:"valueType"`
	Required  bool   `json:"required"`
}

func (req *templateRequest) toInput() (models.NewChecklistTemplate, error) {
	req.Name = strings.TrimSpace(req.Name)

	var c validate.Checker
	if c.Required("name", req.Name) {
		c.MaxLength("name", req.Name, 200)
	}
	c.Check(len(req.Items) > 0, "items", "should not be empty")
	items := make([]models.ChecklistItem, 0, len(req.Items))
	seen := map[string]bool{}
	for _, item := range req.Items {
		label := strings.TrimSpace(item.Label)
		valueType := item.ValueType
		if valueType == "" {
			valueType = models.ValueTypeBoolean
		}
		if !c.Required("items.label", label) {
			continue
		}
		c.OneOf("items.valueType", valueType, models.ValueTypes...)
		c.Check(!seen[strings.ToLower(label)], "items.label", "must be unique: "+label)
		seen[strings.ToLower(label)] = true
		items = append(items, models.ChecklistItem{Label: label, ValueType: valueType, Required: item.Required})
	}
	if err := c.Err(); err != nil {
		return models.NewChecklistTemplate{}, err
	}
	return models.NewChecklistTemplate{Name: req.Name, Items: items}, nil
}

type submissionRequest struct {
	MachineID  string         `json:"machineId"`
	TemplateID *string        `json:"templateId"`
	Note       string         `json:"note"`
	Entries    []entryRequest `json:"entries"`
}

type entryRequest struct {
	Label    string  `json:"label"`
	IsOK     *bool   `json:"isOk"`
	Value    *string `json:"value"`
	PhotoURL *string `json:"photoUrl"`
}

func (req *submissionRequest) toInput() (models.NewSubmission, error) {
	var c validate.Checker
	c.UUID("machineId", req.MachineID)
	if req.TemplateID != nil {
		c.UUID("templateId", *req.TemplateID)
	}
	c.MaxLength("note", req.Note, 2000)
	c.Check(len(req.Entries) > 0, "entries", "should not be empty")
	entries := make([]models.ChecklistEntry, 0, len(req.Entries))
	for _, entry := range req.Entries {
		label := strings.TrimSpace(entry.Label)
		if !c.Required("entries.label", label) {
			continue
		}
		if entry.IsOK == nil {
			c.Add("entries.isOk", "must be a boolean value")
			continue
		}
		if entry.Value != nil {
			c.MaxLength("entries.value", *entry.Value, 1000)
		}
		entries = append(entries, models.ChecklistEntry{
			Label:    label,
			IsOK:     *entry.IsOK,
			Value:    entry.Value,
			PhotoURL: entry.PhotoURL,
		})
	}
	if err := c.Err(); err != nil {
		return models.NewSubmission{}, err
	}
	return models.NewSubmission{
		MachineID:  req.MachineID,
		TemplateID: req.TemplateID,
		Note:       strings.TrimSpace(req.Note),
		Entries:    entries,
	}, nil
}

type reviewRequest struct {
	Decision string  `json:"decision"`
	Note     *string `json:"note"`
}

func (req reviewRequest) toDecision() (models.ReviewDecision, error) {
	decision, ok := models.ParseDecision(req.Decision)
	var c validate.Checker
	c.Check(ok, "decision", "must be one of the following values: "+models.SubmissionApproved+", "+models.SubmissionRejected)
	if req.Note != nil {
		c.MaxLength("note", *req.Note, 2000)
	}
	return decision, c.Err()
}

type jobRequest struct {
	Name   string  `json:"name"`
	Site   *string `json:"site"`
	Status string  `json:"status"`
}

func (req *jobRequest) toInput() (models.NewJob, error) {
	req.Name = strings.TrimSpace(req.Name)

	var c validate.Checker
	if c.Required("name", req.Name) {
		c.MaxLength("name", req.Name, 200)
	}
	if req.Site != nil {
		c.MaxLength("site", *req.Site, 500)
	}
	if req.Status != "" {
		c.OneOf("status", req.Status, models.JobStatuses...)
	}
	if err := c.Err(); err != nil {
		return models.NewJob{}, err
	}
	return models.NewJob{Name: req.Name, Site: req.Site, Status: req.Status}, nil
}

type jobLinkRequest struct {
	MachineID  *string `json:"machineId"`
	OperatorID *string `json:"operatorId"`
}

func (req jobLinkRequest) toLink(jobID string) (models.JobAssignment, error) {
	var c validate.Checker
	if req.MachineID != nil {
		c.UUID("machineId", *req.MachineID)
	}
	if req.OperatorID != nil {
		c.UUID("operatorId", *req.OperatorID)
	}
	if err := c.Err(); err != nil {
		return models.JobAssignment{}, err
	}
	return models.JobAssignment{JobID: jobID, MachineID: req.MachineID, OperatorID: req.OperatorID}, nil
}
