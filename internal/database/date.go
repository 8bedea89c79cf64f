package database

import (
	"fmt"
	"strings"
	"time"
)

const (
	narrativeLayout = "1/2/2006"
	isoLayout       = "2006-01-02"
)

// Date is a calendar date. The zero value means the date is unknown.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an M/D/YYYY token such as "1/2/2020"
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(narrativeLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("unable to parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// ParseISODate parses YYYY-MM-DD; the empty string yields the zero Date
func ParseISODate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("unable to parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) Time() time.Time {
	return d.t
}

// String formats as YYYY-MM-DD, or "" when unknown
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(isoLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseISODate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
