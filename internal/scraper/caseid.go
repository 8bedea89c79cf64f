package scraper

import (
	"fmt"
	"regexp"
)

var caseIDPattern = regexp.MustCompile(`^[A-Za-z]{2}\d{2}\d+$`)

// CaseID is a TTYYNNNNN identifier split the way the search form wants it
type CaseID struct {
	Type string
	Year string
	Seq  string
}

// ParseCaseID splits id into type, two-digit year and sequence
func ParseCaseID(id string) (CaseID, error) {
	if !caseIDPattern.MatchString(id) {
		return CaseID{}, fmt.Errorf("%w: %q", ErrInvalidCaseID, id)
	}
	return CaseID{
		Type: id[0:2],
		Year: id[2:4],
		Seq:  id[4:],
	}, nil
}

func (c CaseID) String() string {
	return c.Type + c.Year + c.Seq
}

// FormData returns the search form fields
func (c CaseID) FormData() map[string]string {
	return map[string]string{
		"caseType": c.Type,
		"caseYear": c.Year,
		"caseSeq":  c.Seq,
	}
}
