package table

import (
	"fmt"

	"github.com/JustJay7/court-records-ingest/internal/database"
)

var (
	SummaryColumns = []string{"summary", "parties", "offense", "arresting_officer", "schedule", "finances", "narrative"}
	ActionColumns  = []string{"case_id", "date", "type", "initiated_by", "attachment_id", "other"}
	CostColumns    = []string{"case_id", "payer", "account", "date", "amount"}
)

// SummaryRow flattens the scalar fields of a case; costs and actions live in
// their own tables
func SummaryRow(c *database.CaseRecord) Row {
	return Row{
		"id":                c.ID,
		"summary":           c.Summary,
		"parties":           c.Parties,
		"offense":           c.Offense,
		"arresting_officer": c.ArrestingOfficer,
		"schedule":          c.Schedule,
		"finances":          c.Finances,
		"narrative":         c.Narrative,
	}
}

// ActionID is the storage key of the index-th action of a case
func ActionID(caseID string, index int) string {
	return fmt.Sprintf("%s-%d", caseID, index)
}

func ActionRows(caseID string, actions []database.ActionRecord) []Row {
	rows := make([]Row, len(actions))
	for i, a := range actions {
		rows[i] = Row{
			"id":            ActionID(caseID, i),
			"case_id":       caseID,
			"date":          a.Date.String(),
			"type":          a.Type,
			"initiated_by":  a.InitiatedBy,
			"attachment_id": a.AttachmentID,
			"other":         a.Other,
		}
	}
	return rows
}

func CostRows(caseID string, costs []database.CostEntry) []Row {
	rows := make([]Row, len(costs))
	for i, c := range costs {
		rows[i] = Row{
			"id":      fmt.Sprintf("%s-%d", caseID, i),
			"case_id": caseID,
			"payer":   c.Payer,
			"account": c.Account,
			"date":    c.Date.String(),
			"amount":  c.Amount,
		}
	}
	return rows
}
