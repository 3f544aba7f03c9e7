package models

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
)

var Roles = []Role{RoleAdmin, RoleManager, RoleOperator}

func ParseRole(value string) (Role, bool) {
	for _, role := range Roles {
		if string(role) == value {
			return role, true
		}
	}
	return "", false
}

type User struct {
	ID                 string     `json:"id"`
	OrganizationID     string     `json:"organizationId"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	FirstName          string     `json:"firstName"`
	LastName           string     `json:"lastName"`
	Role               Role       `json:"role"`
	Phone              *string    `json:"phone"`
	JobTitle           *string    `json:"jobTitle"`
	AvatarURL          *string    `json:"avatarUrl"`
	Licenses           []string   `json:"licenses"`
	Specialties        []string   `json:"specialties"`
	IsActive           bool       `json:"isActive"`
	LastLogin          *time.Time `json:"lastLogin"`
	Latitude           *float64   `json:"latitude"`
	Longitude          *float64   `json:"longitude"`
	Address            *string    `json:"address"`
	LocationUpdatedAt  *time.Time `json:"locationUpdatedAt"`
	BiometricEnabled   bool       `json:"biometricEnabled"`
	EmailNotifications bool       `json:"emailNotifications"`
	PushNotifications  bool       `json:"pushNotifications"`
	SMSNotifications   bool       `json:"smsNotifications"`
	ChecklistReminders bool       `json:"checklistReminders"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// Sanitized returns a copy that is safe to hand to any caller.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	if u.Licenses == nil {
		u.Licenses = []string{}
	}
	if u.Specialties == nil {
		u.Specialties = []string{}
	}
	return u
}

func (u User) Settings() NotificationSettings {
	return NotificationSettings{
		EmailNotifications: u.EmailNotifications,
		PushNotifications:  u.PushNotifications,
		SMSNotifications:   u.SMSNotifications,
		ChecklistReminders: u.ChecklistReminders,
	}
}

type NewUser struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Role        Role
	Phone       *string
	JobTitle    *string
	AvatarURL   *string
	Licenses    []string
	Specialties []string
}

// SelfProfilePatch holds the only fields a non-admin may change on their own record.
type SelfProfilePatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
	AvatarURL *string
}

func (p SelfProfilePatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil && p.AvatarURL == nil
}

type UserPatch struct {
	SelfProfilePatch
	Email       *string
	Role        *Role
	JobTitle    *string
	Licenses    *[]string
	Specialties *[]string
	IsActive    *bool
}

func (p UserPatch) Empty() bool {
	return p.SelfProfilePatch.Empty() && p.Email == nil && p.Role == nil && p.JobTitle == nil &&
		p.Licenses == nil && p.Specialties == nil && p.IsActive == nil
}

type UserDetail struct {
	User
	AssignedMachines []MachineSummary `json:"assignedMachines"`
}

type UserQuery struct {
	Search    string
	Role      *Role
	IsActive  *bool
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type UserPage struct {
	Data []User   `json:"data"`
	Meta PageMeta `json:"meta"`
}

type NotificationSettings struct {
	EmailNotifications bool `json:"emailNotifications"`
	PushNotifications  bool `json:"pushNotifications"`
	SMSNotifications   bool `json:"smsNotifications"`
	ChecklistReminders bool `json:"checklistReminders"`
}

type NotificationPatch struct {
	EmailNotifications *bool
	PushNotifications  *bool
	SMSNotifications   *bool
	ChecklistReminders *bool
}

type UserSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}
