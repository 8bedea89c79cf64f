package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/JustJay7/court-records-ingest/internal/database"
	"github.com/JustJay7/court-records-ingest/pkg/logger"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	headingSelector = "h1, h2, h3, h4, h5, h6, legend, .heading, .panel-heading"
	bannerSelector  = "div.error, div.alert-danger, span.error-message, div#errormsg"
)

// Panel labels as they appear in the site's headings, lowercased
var panelLabels = map[string][]string{
	"summary":           {"case summary", "summary", "case information"},
	"parties":           {"parties", "party information"},
	"offense":           {"offense", "offenses", "charges", "charge information"},
	"arresting_officer": {"arresting officer", "arresting officer information"},
	"schedule":          {"schedule", "scheduled events", "court schedule", "hearings"},
	"costs":             {"costs", "court costs", "fees and costs"},
	"finances":          {"finances", "financial information", "financial summary"},
	"narrative":         {"register of actions", "docket entries", "case history"},
}

// Phrases the site prints instead of a banner when a search finds nothing
var bannerPhrases = []string{"no case found", "case not found", "no records found", "search error"}

var errNoContent = errors.New("heading has no content")

var attachmentIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// AttachmentLink is a document link found in the register of actions
type AttachmentLink struct {
	ID  string
	URL string
}

// Parser extracts case fields from a case page
type Parser struct {
	logger *logger.Logger
}

// NewParser creates a new parser instance
func NewParser(logger *logger.Logger) *Parser {
	return &Parser{logger: logger}
}

// ErrorBanner reports an error message embedded in an otherwise successful
// reply. Banner elements are checked first; the known phrases only count on
// a page without any case panels.
func (p *Parser) ErrorBanner(doc *goquery.Document) (string, bool) {
	if msg, found := findBanner(doc); found {
		return msg, true
	}

	if doc.Find(headingSelector).FilterFunction(isPanelHeading).Length() > 0 {
		return "", false
	}

	for _, line := range strings.Split(nodeText(doc.Find("body")), "\n") {
		lower := strings.ToLower(line)
		for _, phrase := range bannerPhrases {
			if strings.Contains(lower, phrase) {
				return line, true
			}
		}
	}
	return "", false
}

// ExtractCase reads every labeled panel into a CaseRecord. A missing panel
// leaves its field empty; a malformed one is reported in the returned
// ParseErrors and also left empty.
func (p *Parser) ExtractCase(doc *goquery.Document, caseID string) (*database.CaseRecord, []error) {
	record := &database.CaseRecord{ID: caseID}
	var errs []error

	fields := []struct {
		name string
		dest *string
	}{
		{"summary", &record.Summary},
		{"parties", &record.Parties},
		{"offense", &record.Offense},
		{"arresting_officer", &record.ArrestingOfficer},
		{"schedule", &record.Schedule},
		{"finances", &record.Finances},
		{"narrative", &record.Narrative},
	}

	for _, field := range fields {
		panel, found := findPanel(doc, field.name)
		if !found {
			p.logger.Debug("Panel not found", "case", caseID, "panel", field.name)
			continue
		}
		if panel.Length() == 0 {
			errs = append(errs, &ParseError{Field: field.name, Err: errNoContent})
			continue
		}
		*field.dest = nodeText(panel)
	}

	if panel, found := findPanel(doc, "costs"); found {
		costs, costErrs := parseCosts(caseID, panel)
		record.Costs = costs
		errs = append(errs, costErrs...)
	}

	return record, errs
}

// AttachmentLinks lists the links in the register of actions that carry an
// attachment id in their "id" query parameter, resolved against pageURL.
// Links without an alphanumeric id, or pointing at another host, are skipped
// with a warning.
func (p *Parser) AttachmentLinks(doc *goquery.Document, pageURL *url.URL) []AttachmentLink {
	panel, found := findPanel(doc, "narrative")
	if !found || panel.Length() == 0 {
		return nil
	}

	var links []AttachmentLink
	seen := make(map[string]bool)

	panel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			p.logger.Warn("Skipping malformed attachment link", "href", href, "error", err)
			return
		}

		abs := pageURL.ResolveReference(ref)
		// credentials are only ever sent to the court site
		if !strings.EqualFold(abs.Host, pageURL.Host) {
			p.logger.Warn("Skipping attachment link to another host", "href", href, "host", abs.Host)
			return
		}
		id := abs.Query().Get("id")
		if id == "" {
			p.logger.Warn("Skipping attachment link without id", "href", href)
			return
		}
		// the id becomes part of a file name
		if !attachmentIDPattern.MatchString(id) {
			p.logger.Warn("Skipping attachment link with invalid id", "href", href, "id", id)
			return
		}
		if seen[id] {
			return
		}
		seen[id] = true

		links = append(links, AttachmentLink{ID: id, URL: abs.String()})
	})

	return links
}

func findBanner(doc *goquery.Document) (string, bool) {
	banner := doc.Find(bannerSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) != ""
	}).First()
	if banner.Length() == 0 {
		return "", false
	}
	return strings.Join(strings.Fields(banner.Text()), " "), true
}

// findPanel returns the element following the heading labeled for field.
// found is true when the heading exists, even if nothing follows it.
func findPanel(doc *goquery.Document, field string) (*goquery.Selection, bool) {
	labels := panelLabels[field]

	var heading *goquery.Selection
	doc.Find(headingSelector).EachWithBreak(func(_ int, h *goquery.Selection) bool {
		text := normalizeLabel(h.Text())
		for _, label := range labels {
			if text == label {
				heading = h
				return false
			}
		}
		return true
	})

	if heading == nil {
		return nil, false
	}
	return heading.Next(), true
}

func isPanelHeading(_ int, h *goquery.Selection) bool {
	text := normalizeLabel(h.Text())
	for _, labels := range panelLabels {
		for _, label := range labels {
			if text == label {
				return true
			}
		}
	}
	return false
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.TrimSuffix(s, ":")
}

func parseCosts(caseID string, panel *goquery.Selection) ([]database.CostEntry, []error) {
	table := panel.Filter("table")
	if table.Length() == 0 {
		table = panel.Find("table").First()
	}
	if table.Length() == 0 {
		return nil, []error{&ParseError{Field: "costs", Err: errors.New("no table in panel")}}
	}

	var costs []database.CostEntry
	var errs []error

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			// header row
			return
		}

		text := make([]string, cells.Length())
		cells.Each(func(j int, cell *goquery.Selection) {
			text[j] = strings.Join(strings.Fields(cell.Text()), " ")
		})

		if strings.HasPrefix(strings.ToLower(text[0]), "total") {
			return
		}
		if len(text) < 4 {
			errs = append(errs, &ParseError{
				Field: "costs",
				Err:   fmt.Errorf("row %d has %d cells, want 4", i, len(text)),
			})
			return
		}

		date, err := database.ParseDate(text[2])
		if err != nil && text[2] != "" {
			errs = append(errs, &ParseError{Field: "costs.date", Err: err})
		}

		costs = append(costs, database.CostEntry{
			CaseID:  caseID,
			Payer:   text[0],
			Account: text[1],
			Date:    date,
			Amount:  normalizeAmount(text[3]),
		})
	})

	return costs, errs
}

// normalizeAmount turns "$1,234.50" into "1234.50" and "(12.00)" into "-12.00"
func normalizeAmount(s string) string {
	s = strings.TrimSpace(s)
	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	s = strings.Trim(s, "()")
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if negative && s != "" {
		return "-" + s
	}
	return s
}

var blockElements = map[string]bool{
	"p": true, "div": true, "tr": true, "li": true, "table": true,
	"ul": true, "ol": true, "section": true, "dt": true, "dd": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// nodeText renders a selection as text, one line per block element, with
// whitespace collapsed inside each line
func nodeText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
	}

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "br":
			b.WriteString("\n")
			return
		case "td", "th":
			b.WriteString(" ")
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteString("\n")
	}
}
