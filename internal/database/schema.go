package database

import (
	"time"

	"gorm.io/datatypes"
)

// Schema records. These only describe tables for AutoMigrate; queries go
// through the pgx store.

type userRecord struct {
	ID                 string         `gorm:"column:id;type:uuid;primaryKey"`
	OrganizationID     string         `gorm:"column:organization_id;type:text;not null;uniqueIndex:idx_users_org_email,priority:1;index:idx_users_org_role,priority:1"`
	Email              string         `gorm:"column:email;type:text;not null;uniqueIndex:idx_users_org_email,priority:2"`
	PasswordHash       *string        `gorm:"column:password_hash;type:text"`
	FirstName          string         `gorm:"column:first_name;type:varchar(100);not null"`
	LastName           string         `gorm:"column:last_name;type:varchar(100);not null"`
	Role               string         `gorm:"column:role;type:varchar(16);not null;default:operator;index:idx_users_org_role,priority:2;check:chk_users_role,role IN ('admin','manager','operator')"`
	Phone              *string        `gorm:"column:phone;type:varchar(20)"`
	JobTitle           *string        `gorm:"column:job_title;type:varchar(100)"`
	AvatarURL          *string        `gorm:"column:avatar_url;type:text"`
	Licenses           datatypes.JSON `gorm:"column:licenses;type:jsonb;not null;default:'[]'"`
	Specialties        datatypes.JSON `gorm:"column:specialties;type:jsonb;not null;default:'[]'"`
	IsActive           bool           `gorm:"column:is_active;not null;default:true"`
	LastLogin          *time.Time     `gorm:"column:last_login;type:timestamptz"`
	Latitude           *float64       `gorm:"column:latitude;type:double precision"`
	Longitude          *float64       `gorm:"column:longitude;type:double precision"`
	Address            *string        `gorm:"column:address;type:text"`
	LocationUpdatedAt  *time.Time     `gorm:"column:location_updated_at;type:timestamptz"`
	BiometricEnabled   bool           `gorm:"column:biometric_enabled;not null;default:false"`
	EmailNotifications bool           `gorm:"column:email_notifications;not null;default:true"`
	PushNotifications  bool           `gorm:"column:push_notifications;not null;default:true"`
	SMSNotifications   bool           `gorm:"column:sms_notifications;not null;default:false"`
	ChecklistReminders bool           `gorm:"column:checklist_reminders;not null;default:true"`
	CreatedAt          time.Time      `gorm:"column:created_at;type:timestamptz;not null"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (userRecord) TableName() string { return "users" }

type checklistTemplateRecord struct {
	ID             string         `gorm:"column:id;type:uuid;primaryKey"`
	OrganizationID string         `gorm:"column:organization_id;type:text;not null;index"`
	Name           string         `gorm:"column:name;type:varchar(200);not null"`
	Items          datatypes.JSON `gorm:"column:items;type:jsonb;not null;default:'[]'"`
	CreatedAt      time.Time      `gorm:"column:created_at;type:timestamptz;not null"`
}

func (checklistTemplateRecord) TableName() string { return "checklist_templates" }

type machineRecord struct {
	ID                  string                   `gorm:"column:id;type:uuid;primaryKey"`
	OrganizationID      string                   `gorm:"column:organization_id;type:text;not null;index"`
	Name                string                   `gorm:"column:name;type:varchar(200);not null"`
	Type                string                   `gorm:"column:type;type:varchar(100);not null"`
	Brand               *string                  `gorm:"column:brand;type:varchar(100)"`
	Model               *string                  `gorm:"column:model;type:varchar(100)"`
	SerialNumber        *string                  `gorm:"column:serial_number;type:varchar(100)"`
	Status              string                   `gorm:"column:status;type:varchar(32);not null;default:active"`
	AssignedOperatorID  *string                  `gorm:"column:assigned_operator_id;type:uuid;index"`
	AssignedOperator    *userRecord              `gorm:"foreignKey:AssignedOperatorID;constraint:OnDelete:SET NULL"`
	ChecklistTemplateID *string                  `gorm:"column:checklist_template_id;type:uuid"`
	ChecklistTemplate   *checklistTemplateRecord `gorm:"foreignKey:ChecklistTemplateID;constraint:OnDelete:SET NULL"`
	CreatedAt           time.Time                `gorm:"column:created_at;type:timestamptz;not null"`
}

func (machineRecord) TableName() string { return "machines" }

type checklistSubmissionRecord struct {
	ID         string                   `gorm:"column:id;type:uuid;primaryKey"`
	MachineID  string                   `gorm:"column:machine_id;type:uuid;not null;index:idx_submissions_machine_status,priority:1"`
	Machine    *machineRecord           `gorm:"foreignKey:MachineID"`
	OperatorID string                   `gorm:"column:operator_id;type:uuid;not null;index"`
	Operator   *userRecord              `gorm:"foreignKey:OperatorID"`
	TemplateID *string                  `gorm:"column:template_id;type:uuid"`
	Template   *checklistTemplateRecord `gorm:"foreignKey:TemplateID;constraint:OnDelete:SET NULL"`
	Status     string                   `gorm:"column:status;type:varchar(16);not null;default:pending;index:idx_submissions_machine_status,priority:2;check:chk_submissions_status,status IN ('pending','approved','rejected')"`
	Note       string                   `gorm:"column:note;type:text;not null;default:''"`
	Entries    datatypes.JSON           `gorm:"column:entries;type:jsonb;not null;default:'[]'"`
	ReviewedBy *string                  `gorm:"column:reviewed_by;type:uuid"`
	Reviewer   *userRecord              `gorm:"foreignKey:ReviewedBy"`
	ReviewedAt *time.Time               `gorm:"column:reviewed_at;type:timestamptz"`
	ReviewNote *string                  `gorm:"column:review_note;type:text"`
	CreatedAt  time.Time                `gorm:"column:created_at;type:timestamptz;not null"`
}

func (checklistSubmissionRecord) TableName() string { return "checklist_submissions" }

type jobRecord struct {
	ID             string    `gorm:"column:id;type:uuid;primaryKey"`
	OrganizationID string    `gorm:"column:organization_id;type:text;not null;index"`
	Name           string    `gorm:"column:name;type:varchar(200);not null"`
	Site           *string   `gorm:"column:site;type:text"`
	Status         string    `gorm:"column:status;type:varchar(32);not null;default:planned"`
	CreatedAt      time.Time `gorm:"column:created_at;type:timestamptz;not null"`
}

func (jobRecord) TableName() string { return "jobs" }

type jobAssignmentRecord struct {
	ID         string         `gorm:"column:id;type:uuid;primaryKey"`
	JobID      string         `gorm:"column:job_id;type:uuid;not null;index"`
	Job        *jobRecord     `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	MachineID  *string        `gorm:"column:machine_id;type:uuid;check:chk_job_assignments_target,machine_id IS NOT NULL OR operator_id IS NOT NULL"`
	Machine    *machineRecord `gorm:"foreignKey:MachineID;constraint:OnDelete:CASCADE"`
	OperatorID *string        `gorm:"column:operator_id;type:uuid"`
	Operator   *userRecord    `gorm:"foreignKey:OperatorID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time      `gorm:"column:created_at;type:timestamptz;not null"`
}

func (jobAssignmentRecord) TableName() string { return "job_assignments" }

func records() []interface{} {
	return []interface{}{
		&userRecord{},
		&checklistTemplateRecord{},
		&machineRecord{},
		&checklistSubmissionRecord{},
		&jobRecord{},
		&jobAssignmentRecord{},
	}
}
