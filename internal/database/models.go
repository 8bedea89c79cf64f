package database

import (
	"time"

	"gorm.io/gorm"
)

// CaseRecord is everything extracted from one case page
type CaseRecord struct {
	ID               string         `json:"id"`
	Summary          string         `json:"summary"`
	Parties          string         `json:"parties"`
	Offense          string         `json:"offense"`
	ArrestingOfficer string         `json:"arresting_officer"`
	Schedule         string         `json:"schedule"`
	Finances         string         `json:"finances"`
	Narrative        string         `json:"narrative"`
	Costs            []CostEntry    `json:"costs"`
	Actions          []ActionRecord `json:"actions"`
}

type CostEntry struct {
	CaseID  string `json:"case_id"`
	Payer   string `json:"payer"`
	Account string `json:"account"`
	Date    Date   `json:"date"`
	Amount  string `json:"amount"`
}

// ActionRecord is one dated entry of the register of actions
type ActionRecord struct {
	CaseID       string `json:"case_id"`
	Date         Date   `json:"date"`
	Type         string `json:"type"`
	InitiatedBy  string `json:"initiated_by,omitempty"`
	AttachmentID string `json:"attachment_id,omitempty"`
	Other        string `json:"other,omitempty"`
}

// FetchLog records every case fetch attempt
type FetchLog struct {
	gorm.Model
	CaseID       string    `json:"case_id" gorm:"index"`
	Success      bool      `json:"success"`
	Skipped      bool      `json:"skipped"`
	ErrorKind    string    `json:"error_kind"`
	ErrorMessage string    `json:"error_message"`
	StatusCode   int       `json:"status_code"`
	Actions      int       `json:"actions"`
	Attachments  int       `json:"attachments"`
	FetchTime    time.Time `json:"fetch_time"`
	Duration     int64     `json:"duration_ms"`
}

func (FetchLog) TableName() string {
	return "fetch_logs"
}
