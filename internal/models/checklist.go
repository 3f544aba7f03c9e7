package models

import "time"

const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

const (
	ValueTypeBoolean = "boolean"
	ValueTypeText    = "text"
	ValueTypeNumber  = "number"
)

var ValueTypes = []string{ValueTypeBoolean, ValueTypeText, ValueTypeNumber}

type ChecklistItem struct {
	Label     string `json:"label"`
	ValueType string `json:"valueType"`
	Required  bool   `json:"required"`
}

type ChecklistTemplate struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organizationId"`
	Name           string          `json:"name"`
	Items          []ChecklistItem `json:"items"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type NewChecklistTemplate struct {
	Name  string
	Items []ChecklistItem
}

type ChecklistEntry struct {
	Label    string  `json:"label"`
	IsOK     bool    `json:"isOk"`
	Value    *string `json:"value"`
	PhotoURL *string `json:"photoUrl"`
}

type ChecklistSubmission struct {
	ID         string           `json:"id"`
	MachineID  string           `json:"machineId"`
	OperatorID string           `json:"operatorId"`
	TemplateID *string          `json:"templateId"`
	Status     string           `json:"status"`
	Note       string           `json:"note"`
	Entries    []ChecklistEntry `json:"entries"`
	ReviewedBy *string          `json:"reviewedBy"`
	ReviewedAt *time.Time       `json:"reviewedAt"`
	ReviewNote *string          `json:"reviewNote"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// ReportedIssues returns the entries flagged as not ok, in submission order.
func (s ChecklistSubmission) ReportedIssues() []ChecklistEntry {
	issues := []ChecklistEntry{}
	for _, entry := range s.Entries {
		if !entry.IsOK {
			issues = append(issues, entry)
		}
	}
	return issues
}

func (s ChecklistSubmission) View() SubmissionView {
	issues := s.ReportedIssues()
	if s.Entries == nil {
		s.Entries = []ChecklistEntry{}
	}
	return SubmissionView{ChecklistSubmission: s, Issues: issues, AllNormal: len(issues) == 0}
}

type SubmissionView struct {
	ChecklistSubmission
	Issues    []ChecklistEntry `json:"issues"`
	AllNormal bool             `json:"allNormal"`
}

type NewSubmission struct {
	MachineID  string
	TemplateID *string
	Note       string
	Entries    []ChecklistEntry
}

type ReviewDecision string

const (
	DecisionApproved ReviewDecision = SubmissionApproved
	DecisionRejected ReviewDecision = SubmissionRejected
)

func ParseDecision(value string) (ReviewDecision, bool) {
	switch ReviewDecision(value) {
	case DecisionApproved, DecisionRejected:
		return ReviewDecision(value), true
	default:
		return "", false
	}
}

type SubmissionFilter struct {
	Status     string
	MachineID  string
	OperatorID string
}
