// Package narrative turns a register-of-actions text blob into dated action
// records. Splitting text into date-anchored chunks and classifying the
// fragments of each chunk are separate stages.
package narrative

import (
	"regexp"
	"strings"

	"github.com/JustJay7/court-records-ingest/internal/database"
	"github.com/JustJay7/court-records-ingest/pkg/logger"
)

const otherSeparator = " | "

var (
	markerPhrase = regexp.MustCompile(`(?i)this action initiated by|image id\b`)
	initiatedBy  = regexp.MustCompile(`(?is)^this action initiated by\s*(.*)$`)
	imageID      = regexp.MustCompile(`(?is)^image id\s*[:#]?\s*([a-z0-9]+)(.*)$`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Parser handles narrative parsing
type Parser struct {
	logger *logger.Logger
}

// NewParser creates a new parser instance
func NewParser(logger *logger.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse extracts actions in order of appearance. Actions whose date is
// missing or unparseable are dropped; the rest of the narrative is unaffected.
func (p *Parser) Parse(caseID, text string) []database.ActionRecord {
	var (
		actions []database.ActionRecord
		current = &database.ActionRecord{CaseID: caseID}
	)

	for _, chunk := range Chunks(text) {
		rest := chunk.Body
		if chunk.Date != "" {
			actions = append(actions, *current)
			current = &database.ActionRecord{CaseID: caseID}

			date, err := database.ParseDate(chunk.Date)
			if err != nil {
				p.logger.Debug("Dropping action with bad date", "case_id", caseID, "token", chunk.Date, "error", err)
			}
			current.Date = date

			var typ string
			typ, rest = splitType(rest)
			current.Type = clean(typ)
		}

		for _, fragment := range fragments(rest) {
			classify(current, fragment)
		}
	}
	actions = append(actions, *current)

	dated := actions[:0]
	for _, action := range actions {
		if !action.Date.IsZero() {
			dated = append(dated, action)
		}
	}
	if len(dated) == 0 {
		return nil
	}
	return dated
}

// splitType returns the text of the first line up to any marker phrase, and
// everything after it
func splitType(body string) (string, string) {
	firstLine, rest, _ := strings.Cut(body, "\n")
	if loc := markerPhrase.FindStringIndex(firstLine); loc != nil {
		return firstLine[:loc[0]], firstLine[loc[0]:] + "\n" + rest
	}
	return firstLine, rest
}

// fragments splits text on newlines and in front of every marker phrase
func fragments(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		start := 0
		for _, loc := range markerPhrase.FindAllStringIndex(line, -1) {
			out = appendFragment(out, line[start:loc[0]])
			start = loc[0]
		}
		out = appendFragment(out, line[start:])
	}
	return out
}

func appendFragment(out []string, s string) []string {
	if s = clean(s); s != "" {
		out = append(out, s)
	}
	return out
}

func classify(action *database.ActionRecord, fragment string) {
	if m := initiatedBy.FindStringSubmatch(fragment); m != nil && action.InitiatedBy == "" {
		action.InitiatedBy = clean(m[1])
		return
	}
	if m := imageID.FindStringSubmatch(fragment); m != nil && action.AttachmentID == "" {
		action.AttachmentID = m[1]
		addOther(action, m[2])
		return
	}
	addOther(action, fragment)
}

func addOther(action *database.ActionRecord, s string) {
	s = clean(s)
	if s == "" {
		return
	}
	if action.Other == "" {
		action.Other = s
		return
	}
	action.Other += otherSeparator + s
}

func clean(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
