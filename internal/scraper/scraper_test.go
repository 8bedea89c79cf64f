package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JustJay7/court-records-ingest/internal/cache"
	"github.com/JustJay7/court-records-ingest/internal/config"
	"github.com/JustJay7/court-records-ingest/internal/database"
	"github.com/JustJay7/court-records-ingest/internal/markers"
	"github.com/JustJay7/court-records-ingest/pkg/logger"
	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const casePage = `<html><body>
<h2>Case Summary</h2>
<div>Case CR2100001<br>Status: Open</div>
<h2>Parties</h2>
<div><p>State of Example</p><p>John Doe</p></div>
<h2>Offense</h2>
<div>Theft</div>
<h2>Arresting Officer</h2>
<div>Ofc. Smith</div>
<h2>Schedule</h2>
<div>2/3/2021 Arraignment</div>
<h2>Costs</h2>
<table>
  <tr><th>Payer</th><th>Account</th><th>Date</th><th>Amount</th></tr>
  <tr><td>John Doe</td><td>Court Fee</td><td>1/5/2021</td><td>$1,250.00</td></tr>
  <tr><td>broken row</td></tr>
</table>
<h2>Finances</h2>
<div>Balance due</div>
<h2>Register of Actions</h2>
<div>
  <p>1/2/2021 Case Filed This action initiated by Plaintiff</p>
  <p>1/5/2021 Answer Filed <a href="/docs/view?id=ab12">Image ID ab12</a></p>
  <p><a href="/docs/help">Help</a></p>
</div>
</body></html>`

type fakeCourt struct {
	casePage   string
	caseStatus int
	docStatus  int
	caseHits   int32
	docHits    int32
}

func (f *fakeCourt) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/case/search", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.caseHits, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "CR", r.PostForm.Get("caseType"))
		assert.Equal(t, "21", r.PostForm.Get("caseYear"))
		assert.Equal(t, "00001", r.PostForm.Get("caseSeq"))

		if f.caseStatus != 0 {
			w.WriteHeader(f.caseStatus)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, f.casePage)
	})
	mux.HandleFunc("/docs/view", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.docHits, 1)
		if f.docStatus != 0 {
			w.WriteHeader(f.docStatus)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		io.WriteString(w, "%PDF-1.4 "+r.URL.Query().Get("id"))
	})
	return mux
}

type fixture struct {
	scraper     *Scraper
	cfg         *config.Config
	cache       cache.Cache
	caseMarks   *markers.Store
	attachMarks *markers.Store
}

func newFixture(t *testing.T, baseURL string, configure func(*config.Config)) *fixture {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		OutputDir:      dir,
		CourtBaseURL:   baseURL,
		CasePath:       "/case/search",
		CacheTTL:       time.Hour,
		RequestTimeout: 5 * time.Second,
		UserAgent:      "test-agent",
	}
	if configure != nil {
		configure(cfg)
	}

	log := logger.NewNop()
	c := cache.NewCache(100, time.Minute)

	client, err := NewClient(cfg, c, log)
	require.NoError(t, err)

	caseMarks, err := markers.Open(filepath.Join(dir, "case_downloads.json"), log)
	require.NoError(t, err)
	attachMarks, err := markers.Open(filepath.Join(dir, "attachment_downloads.json"), log)
	require.NoError(t, err)

	return &fixture{
		scraper:     NewScraper(cfg, client, caseMarks, attachMarks, log),
		cfg:         cfg,
		cache:       c,
		caseMarks:   caseMarks,
		attachMarks: attachMarks,
	}
}

func TestParseCaseID(t *testing.T) {
	tests := []struct {
		id      string
		want    CaseID
		wantErr bool
	}{
		{id: "CR2100001", want: CaseID{Type: "CR", Year: "21", Seq: "00001"}},
		{id: "tr991", want: CaseID{Type: "tr", Year: "99", Seq: "1"}},
		{id: "CR21", wantErr: true},
		{id: "C12100001", wantErr: true},
		{id: "CR21-0001", wantErr: true},
		{id: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := ParseCaseID(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCaseID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.id, got.String())
		})
	}
}

func TestFetchCase(t *testing.T) {
	court := &fakeCourt{casePage: casePage}
	srv := httptest.NewServer(court.handler(t))
	defer srv.Close()

	f := newFixture(t, srv.URL, nil)

	result, err := f.scraper.FetchCase(context.Background(), "CR2100001")
	require.NoError(t, err)

	raw, err := os.ReadFile(RawPath(f.cfg.OutputDir, "CR2100001"))
	require.NoError(t, err)
	assert.Equal(t, casePage, string(raw))

	assert.Equal(t, "CR2100001", result.ID)
	assert.Equal(t, "Case CR2100001\nStatus: Open", result.Summary)
	assert.Equal(t, "State of Example\nJohn Doe", result.Parties)
	assert.Equal(t, "Theft", result.Offense)
	assert.Equal(t, "Ofc. Smith", result.ArrestingOfficer)
	assert.Equal(t, "2/3/2021 Arraignment", result.Schedule)
	assert.Equal(t, "Balance due", result.Finances)

	wantCosts := []database.CostEntry{{
		CaseID:  "CR2100001",
		Payer:   "John Doe",
		Account: "Court Fee",
		Date:    database.NewDate(2021, time.January, 5),
		Amount:  "1250.00",
	}}
	if diff := cmp.Diff(wantCosts, result.Costs, cmp.AllowUnexported(database.Date{})); diff != "" {
		t.Errorf("costs mismatch (-want +got):\n%s", diff)
	}

	wantActions := []database.ActionRecord{
		{
			CaseID:      "CR2100001",
			Date:        database.NewDate(2021, time.January, 2),
			Type:        "Case Filed",
			InitiatedBy: "Plaintiff",
		},
		{
			CaseID:       "CR2100001",
			Date:         database.NewDate(2021, time.January, 5),
			Type:         "Answer Filed",
			AttachmentID: "ab12",
			Other:        "Help",
		},
	}
	if diff := cmp.Diff(wantActions, result.Actions, cmp.AllowUnexported(database.Date{})); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}

	wantPath := filepath.Join(CaseDir(f.cfg.OutputDir, "CR2100001"), "attachments", "2021-01-05_CR2100001_ab12.pdf")
	assert.Equal(t, []string{wantPath}, result.Attachments)
	assert.NoError(t, result.AttachmentErr)

	doc, err := os.ReadFile(wantPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 ab12", string(doc))

	assert.False(t, f.caseMarks.ShouldForceRefresh("CR2100001"))
	assert.False(t, f.attachMarks.ShouldForceRefresh("CR2100001-ab12"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&court.docHits))
}

func TestFetchCaseInvalidID(t *testing.T) {
	f := newFixture(t, "http://127.0.0.1:1", nil)

	_, err := f.scraper.FetchCase(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrInvalidCaseID)
	assert.Empty(t, f.caseMarks.Pending())
}

func TestFetchCaseSearchBanner(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "banner element",
			page: `<html><body><div class="error">  No case found  </div></body></html>`,
			want: "No case found",
		},
		{
			name: "phrase without panels",
			page: `<html><body><p>Search Error: service unavailable</p></body></html>`,
			want: "Search Error: service unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			court := &fakeCourt{casePage: tt.page}
			srv := httptest.NewServer(court.handler(t))
			defer srv.Close()

			f := newFixture(t, srv.URL, nil)

			result, err := f.scraper.FetchCase(context.Background(), "CR2100001")
			assert.Nil(t, result)

			var searchErr *SearchError
			require.True(t, errors.As(err, &searchErr), "got %v", err)
			assert.Equal(t, "CR2100001", searchErr.CaseID)
			assert.Equal(t, tt.want, searchErr.Message)

			// the reply itself was received in full
			assert.FileExists(t, RawPath(f.cfg.OutputDir, "CR2100001"))
			assert.False(t, f.caseMarks.ShouldForceRefresh("CR2100001"))
		})
	}
}

func TestPhraseInsidePanelIsNotBanner(t *testing.T) {
	page := `<html><body>
<h2>Register of Actions</h2>
<div><p>1/2/2021 Motion denied, no records found for the exhibit</p></div>
</body></html>`

	court := &fakeCourt{casePage: page}
	srv := httptest.NewServer(court.handler(t))
	defer srv.Close()

	f := newFixture(t, srv.URL, nil)

	result, err := f.scraper.FetchCase(context.Background(), "CR2100001")
	require.NoError(t, err)
	require.Len(t, result.Actions, 1)
	assert.Equal(t, "Motion denied, no records found for the exhibit", result.Actions[0].Type)
}

func TestFetchCaseServerError(t *testing.T) {
	court := &fakeCourt{caseStatus: http.StatusInternalServerError}
	srv := httptest.NewServer(court.handler(t))
	defer srv.Close()

	f := newFixture(t, srv.URL, nil)

	_, err := f.scraper.FetchCase(context.Background(), "CR2100001")

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr), "got %v", err)
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
	assert.Equal(t, "request", ErrorKind(err))

	assert.True(t, f.caseMarks.ShouldForceRefresh("CR2100001"))
	assert.NoFileExists(t, RawPath(f.cfg.OutputDir, "CR2100001"))
}

func TestFetchCaseTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	f := newFixture(t, baseURL, nil)

	_, err := f.scraper.FetchCase(context.Background(), "CR2100001")

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr), "got %v", err)
	assert.Zero(t, reqErr.StatusCode)
	assert.Error(t, reqErr.Err)
	assert.Equal(t, []string{"CR2100001"}, f.caseMarks.Pending())
}

func stalePage(f *fixture) {
	key := cache.GenerateCacheKey(http.MethodPost, f.cfg.CasePath, CaseID{Type: "CR", Year: "21", Seq: "00001"}.FormData())
	f.cache.Set(key, &cache.Response{
		StatusCode:  http.StatusOK,
		ContentType: "text/html",
		Body:        []byte(`<h2>Offense</h2><div>Stale</div>`),
	}, time.Hour)
}

func TestFetchCaseUsesCache(t *testing.T) {
	court := &fakeCourt{casePage: casePage}
	srv := httptest.NewServer(court.handler(t))
	defer srv.Close()

	f := newFixture(t, srv.URL, nil)
	stalePage(f)

	result, err := f.scraper.FetchCase(context.Background(), "CR2100001")
	require.NoError(t, err)

	assert.Equal(t, "Stale", result.Offense)
	assert.Zero(t, atomic.LoadInt32(&court.caseHits))
}

func TestInterruptedFetchBypassesCache(t *testing.T) {
	court := &fakeCourt{casePage: casePage}
	srv := httptest.NewServer(court.handler(t))
	defer srv.Close()

	f := newFixture(t, srv.URL, nil)
	stalePage(f)

	// a previous run died after Begin
	require.NoError(t, f.caseMarks.Begin("CR2100001"))

	result, err := f.scraper.FetchCase(context.Background(), "CR2100001")
	require.NoError(t, err)

	assert.Equal(t, "Theft", result.Offense)
	assert.Equal(t, int32(1), atomic.LoadInt32(&court.caseHits))
	assert.False(t, f.caseMarks.ShouldForceRefresh("CR2100001"))
}

func TestSkipExisting(t *testing.T) {
	court := &fakeCourt{casePage: casePage}
	srv := httptest.NewServer(court.handler(t))
	defer srv.Close()

	f := newFixture(t, srv.URL, func(cfg *config.Config) {
		cfg.SkipExisting = true
	})
	require.NoError(t, writeFile(RawPath(f.cfg.OutputDir, "CR2100001"), []byte("old")))

	_, err := f.scraper.FetchCase(context.Background(), "CR2100001")
	assert.ErrorIs(t, err, ErrAlreadyFetched)
	assert.Zero(t, atomic.LoadInt32(&court.caseHits))
}

func TestAttachmentFailureDoesNotFailCase(t *testing.T) {
	court := &fakeCourt{casePage: casePage, docStatus: http.StatusNotFound}
	srv := httptest.NewServer(court.handler(t))
	defer srv.Close()

	f := newFixture(t, srv.URL, nil)

	result, err := f.scraper.FetchCase(context.Background(), "CR2100001")
	require.NoError(t, err)

	assert.Len(t, result.Actions, 2)
	assert.Empty(t, result.Attachments)
	assert.Error(t, result.AttachmentErr)
	assert.True(t, f.attachMarks.ShouldForceRefresh("CR2100001-ab12"))
}

func TestLogin(t *testing.T) {
	var logins int32
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&logins, 1)
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("username") != "clerk" || r.PostForm.Get("password") != "secret" {
			fmt.Fprint(w, `<form><input name="username"><input type="password" name="password"></form>`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
		fmt.Fprint(w, `<p>Welcome</p>`)
	})
	mux.HandleFunc("/case/search", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err != nil || c.Value != "ok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `<h2>Offense</h2><div>Theft</div>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	t.Run("session cookie is reused", func(t *testing.T) {
		f := newFixture(t, srv.URL, func(cfg *config.Config) {
			cfg.LoginPath = "/login"
			cfg.Username = "clerk"
			cfg.Password = "secret"
			cfg.CacheTTL = 0
		})

		atomic.StoreInt32(&logins, 0)
		for i := 0; i < 2; i++ {
			result, err := f.scraper.FetchCase(context.Background(), "CR2100001")
			require.NoError(t, err)
			assert.Equal(t, "Theft", result.Offense)
		}
		assert.Equal(t, int32(1), atomic.LoadInt32(&logins))
	})

	t.Run("rejected credentials", func(t *testing.T) {
		f := newFixture(t, srv.URL, func(cfg *config.Config) {
			cfg.LoginPath = "/login"
			cfg.Username = "clerk"
			cfg.Password = "wrong"
		})

		_, err := f.scraper.FetchCase(context.Background(), "CR2100001")
		assert.ErrorIs(t, err, ErrLoginFailed)
		assert.Equal(t, "login", ErrorKind(err))
		assert.Empty(t, f.caseMarks.Pending())
	})
}

func TestBasicAuthWithoutLoginPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "clerk" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `<h2>Offense</h2><div>Theft</div>`)
	}))
	defer srv.Close()

	f := newFixture(t, srv.URL, func(cfg *config.Config) {
		cfg.Username = "clerk"
		cfg.Password = "secret"
	})

	result, err := f.scraper.FetchCase(context.Background(), "CR2100001")
	require.NoError(t, err)
	assert.Equal(t, "Theft", result.Offense)
}

func TestAttachmentLinks(t *testing.T) {
	page := `<h2>Case History</h2>
<div>
  <a href="view.aspx?id=AB12&amp;type=pdf">one</a>
  <a href="https://docs.example.com/get?id=cd34">another host</a>
  <a href="/docs/view?ID=x">no id</a>
  <a href="/docs/view?id=..%2F..%2Fpasswd">traversal</a>
  <a href="/docs/view?id=ef56">two</a>
  <a href="view.aspx?id=AB12">duplicate</a>
</div>
<a href="/outside?id=zz99">outside the narrative</a>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	base, err := url.Parse("https://court.example.com/case/search")
	require.NoError(t, err)

	got := NewParser(logger.NewNop()).AttachmentLinks(doc, base)
	want := []AttachmentLink{
		{ID: "AB12", URL: "https://court.example.com/case/view.aspx?id=AB12&type=pdf"},
		{ID: "ef56", URL: "https://court.example.com/docs/view?id=ef56"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestTraversalAttachmentIDIsNotWritten(t *testing.T) {
	page := strings.Replace(casePage, `/docs/view?id=ab12`, `/docs/view?id=..%2F..%2F..%2Fescaped`, 1)
	court := &fakeCourt{casePage: page}
	srv := httptest.NewServer(court.handler(t))
	defer srv.Close()

	f := newFixture(t, srv.URL, nil)

	result, err := f.scraper.FetchCase(context.Background(), "CR2100001")
	require.NoError(t, err)

	assert.Empty(t, result.Attachments)
	assert.NoError(t, result.AttachmentErr)
	assert.Zero(t, atomic.LoadInt32(&court.docHits))
	assert.Empty(t, f.attachMarks.Pending())

	matches, err := filepath.Glob(filepath.Join(f.cfg.OutputDir, "*escaped*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDownloadAttachmentRejectsUnsafeID(t *testing.T) {
	court := &fakeCourt{casePage: casePage}
	srv := httptest.NewServer(court.handler(t))
	defer srv.Close()

	f := newFixture(t, srv.URL, nil)
	outDir := filepath.Join(f.cfg.OutputDir, "case", "attachments")

	for _, id := range []string{"../../x", "a/b", "", `..\x`} {
		_, err := f.scraper.DownloadAttachment(context.Background(), AttachmentRequest{
			CaseID:       "CR2100001",
			URL:          srv.URL + "/docs/view?id=x",
			AttachmentID: id,
			OutputDir:    outDir,
		})
		assert.ErrorIs(t, err, ErrUnsafeAttachmentID, id)
	}

	assert.Zero(t, atomic.LoadInt32(&court.docHits))
	assert.Empty(t, f.attachMarks.Pending())
	assert.NoDirExists(t, outDir)
}

func TestAttachmentOnAnotherHostIsNotFetched(t *testing.T) {
	var foreignHits int32
	var foreignAuth atomic.Value
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&foreignHits, 1)
		foreignAuth.Store(r.Header.Get("Authorization"))
		io.WriteString(w, "%PDF-1.4")
	}))
	defer foreign.Close()

	page := strings.Replace(casePage, `/docs/view?id=ab12`, foreign.URL+`/docs/view?id=ef56`, 1)
	court := &fakeCourt{casePage: page}
	srv := httptest.NewServer(court.handler(t))
	defer srv.Close()

	f := newFixture(t, srv.URL, func(cfg *config.Config) {
		cfg.Username = "clerk"
		cfg.Password = "secret"
	})

	result, err := f.scraper.FetchCase(context.Background(), "CR2100001")
	require.NoError(t, err)

	assert.Empty(t, result.Attachments)
	assert.Zero(t, atomic.LoadInt32(&foreignHits))
	assert.Nil(t, foreignAuth.Load())
}

func TestRequestIntervalSpacesRequests(t *testing.T) {
	var mu sync.Mutex
	var arrivals []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		fmt.Fprint(w, `<h2>Offense</h2><div>Theft</div>`)
	}))
	defer srv.Close()

	f := newFixture(t, srv.URL, func(cfg *config.Config) {
		cfg.CacheTTL = 0
		cfg.RequestInterval = 200 * time.Millisecond
	})

	for i := 0; i < 2; i++ {
		_, err := f.scraper.FetchCase(context.Background(), "CR2100001")
		require.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, arrivals, 2)
	assert.GreaterOrEqual(t, arrivals[1].Sub(arrivals[0]), 190*time.Millisecond)
}

func TestRequestTimeoutLeavesMarkerPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := newFixture(t, srv.URL, func(cfg *config.Config) {
		cfg.RequestTimeout = 100 * time.Millisecond
	})

	start := time.Now()
	_, err := f.scraper.FetchCase(context.Background(), "CR2100001")
	assert.Less(t, time.Since(start), time.Second)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr), "got %v", err)
	assert.Zero(t, reqErr.StatusCode)
	assert.Error(t, reqErr.Err)
	assert.Equal(t, "request", ErrorKind(err))
	assert.Equal(t, []string{"CR2100001"}, f.caseMarks.Pending())
	assert.NoFileExists(t, RawPath(f.cfg.OutputDir, "CR2100001"))
}

func TestMalformedPanel(t *testing.T) {
	page := `<div><h2>Costs</h2><p>No table here</p></div><div><h2>Parties</h2></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	record, errs := NewParser(logger.NewNop()).ExtractCase(doc, "CR2100001")

	assert.Empty(t, record.Costs)
	assert.Empty(t, record.Parties)
	require.Len(t, errs, 2)

	var parseErr *ParseError
	for _, err := range errs {
		assert.True(t, errors.As(err, &parseErr))
	}
}

func TestAttachmentFileName(t *testing.T) {
	tests := []struct {
		name        string
		date        database.Date
		contentType string
		want        string
	}{
		{"pdf", database.NewDate(2020, time.January, 5), "application/pdf", "2020-01-05_CR2100001_ab12.pdf"},
		{"unknown date", database.Date{}, "image/tiff", "unknown-date_CR2100001_ab12.tif"},
		{"parameters ignored", database.Date{}, "text/html; charset=utf-8", "unknown-date_CR2100001_ab12.html"},
		{"unparseable type", database.Date{}, "", "unknown-date_CR2100001_ab12.bin"},
		{"unknown type", database.Date{}, "application/x-court-unknown", "unknown-date_CR2100001_ab12.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AttachmentFileName(tt.date, "CR2100001", "ab12", extensionFor(tt.contentType))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAttachmentDate(t *testing.T) {
	actions := []database.ActionRecord{
		{Date: database.NewDate(2020, time.January, 2), Type: "Case Filed"},
		{Date: database.NewDate(2020, time.January, 5), AttachmentID: "AB12"},
	}
	assert.Equal(t, "2020-01-05", attachmentDate(actions, "ab12").String())
	assert.True(t, attachmentDate(actions, "zz99").IsZero())
}

func TestNormalizeAmount(t *testing.T) {
	assert.Equal(t, "1250.00", normalizeAmount("$1,250.00"))
	assert.Equal(t, "-12.00", normalizeAmount("($12.00)"))
	assert.Equal(t, "", normalizeAmount(" "))
}
