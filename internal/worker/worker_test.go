package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"frota/internal/dto"
	"frota/internal/hours"
	"frota/internal/infra"
	"frota/internal/report"
	"frota/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("relay timeout")

func init() { retryBaseDelay = time.Millisecond }

// ── Retry ─────────────────────────────────────────────────────────────────────

type countingProcessor struct {
	calls int
	errs  []error
}

func (p *countingProcessor) Process(context.Context, json.RawMessage) error {
	p.calls++
	if p.calls <= len(p.errs) {
		return p.errs[p.calls-1]
	}
	return nil
}

func TestRunJob_RetriesTransientErrors(t *testing.T) {
	proc := &countingProcessor{errs: []error{errTransient, errTransient}}
	attempts, err := runJob(context.Background(), map[string]Processor{JobHoursEmail: proc}, Job{Type: JobHoursEmail})
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRunJob_GivesUpAfterMaxAttempts(t *testing.T) {
	proc := &countingProcessor{errs: []error{errTransient, errTransient, errTransient, errTransient}}
	attempts, err := runJob(context.Background(), map[string]Processor{JobHoursEmail: proc}, Job{Type: JobHoursEmail})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, maxAttempts, attempts)
	assert.False(t, isPermanent(err))
}

func TestRunJob_PermanentStopsAtOnce(t *testing.T) {
	proc := &countingProcessor{errs: []error{Permanent(errTransient)}}
	attempts, err := runJob(context.Background(), map[string]Processor{JobHoursEmail: proc}, Job{Type: JobHoursEmail})
	assert.True(t, isPermanent(err))
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, attempts)
}

func TestRunJob_UnknownType(t *testing.T) {
	attempts, err := runJob(context.Background(), map[string]Processor{}, Job{Type: "facturacion"})
	assert.True(t, isPermanent(err))
	assert.Zero(t, attempts)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := withRetry(ctx, 3, func(int) error { calls++; return errTransient })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}

// ── Email worker ──────────────────────────────────────────────────────────────

type stubDocs struct {
	doc    *infra.HoursDocument
	err    error
	filter report.HoursFilter
}

func (s *stubDocs) HoursDocument(_ context.Context, _ uuid.UUID, f report.HoursFilter) (*infra.HoursDocument, error) {
	s.filter = f
	return s.doc, s.err
}

type stubMailer struct {
	to, subject, path string
	err               error
	calls             int
}

func (m *stubMailer) SendReport(to, subject, _ string, pdfPath string) error {
	m.calls++
	m.to, m.subject, m.path = to, subject, pdfPath
	return m.err
}

func sampleDoc() *infra.HoursDocument {
	res := hours.Result{Entries: []hours.Entry{
		{User: "ana@frota.com", Period: "2025-09-01", PeriodType: hours.PeriodDay, Hours: decimal.RequireFromString("4.5")},
	}}
	return &infra.HoursDocument{
		DatasetName: "Setembro",
		GeneratedAt: time.Date(2025, 9, 30, 8, 0, 0, 0, time.UTC),
		Report:      report.BuildHours(res, report.HoursFilter{PeriodType: "DAY"}),
	}
}

func jobPayload(t *testing.T, job dto.HoursEmailJob) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestEmailWorker_SendsPDF(t *testing.T) {
	docs := &stubDocs{doc: sampleDoc()}
	mailer := &stubMailer{}
	w := NewEmailWorker(docs, mailer, infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp")), t.TempDir())

	err := w.Process(context.Background(), jobPayload(t, dto.HoursEmailJob{
		DatasetID: uuid.NewString(), To: "gestao@frota.com", PeriodType: "DAY", Users: []string{"ana@frota.com"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "gestao@frota.com", mailer.to)
	assert.Contains(t, mailer.subject, "Setembro")
	assert.Equal(t, report.HoursFilter{PeriodType: "DAY", Users: []string{"ana@frota.com"}}, docs.filter)

	_, statErr := os.Stat(mailer.path)
	assert.NoError(t, statErr, "PDF written before sending")
}

func TestEmailWorker_PermanentFailures(t *testing.T) {
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
	mailer := &stubMailer{}

	cases := []struct {
		name    string
		docs    *stubDocs
		payload json.RawMessage
	}{
		{"bad json", &stubDocs{}, json.RawMessage(`{`)},
		{"no recipient", &stubDocs{}, jobPayload(t, dto.HoursEmailJob{DatasetID: uuid.NewString()})},
		{"bad dataset id", &stubDocs{}, jobPayload(t, dto.HoursEmailJob{DatasetID: "x", To: "a@b.com"})},
		{"dataset gone", &stubDocs{err: service.ErrDatasetNotFound},
			jobPayload(t, dto.HoursEmailJob{DatasetID: uuid.NewString(), To: "a@b.com"})},
		{"hours unavailable", &stubDocs{err: &service.HoursUnavailableError{Reason: hours.ReasonNoPairs}},
			jobPayload(t, dto.HoursEmailJob{DatasetID: uuid.NewString(), To: "a@b.com"})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewEmailWorker(tc.docs, mailer, cb, t.TempDir())
			err := w.Process(context.Background(), tc.payload)
			assert.True(t, isPermanent(err), "got %v", err)
		})
	}
	assert.Zero(t, mailer.calls)
}

func TestEmailWorker_RelayFailureIsRetryable(t *testing.T) {
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Name: "smtp", FailureThreshold: 1, OpenTimeout: time.Hour})
	mailer := &stubMailer{err: errTransient}
	w := NewEmailWorker(&stubDocs{doc: sampleDoc()}, mailer, cb, t.TempDir())
	payload := jobPayload(t, dto.HoursEmailJob{DatasetID: uuid.NewString(), To: "a@b.com"})

	err := w.Process(context.Background(), payload)
	assert.ErrorIs(t, err, errTransient)
	assert.False(t, isPermanent(err))

	err = w.Process(context.Background(), payload)
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.Equal(t, 1, mailer.calls, "open breaker skips the relay")
}
