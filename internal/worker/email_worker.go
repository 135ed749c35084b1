package worker

// email_worker.go
// Renders the worked-hours PDF of a dataset and mails it through the SMTP
// relay, behind the circuit breaker.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"frota/internal/dto"
	"frota/internal/infra"
	"frota/internal/report"
	"frota/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// HoursDocumentSource builds the PDF contents; implemented by
// service.ReportService.
type HoursDocumentSource interface {
	HoursDocument(ctx context.Context, id uuid.UUID, f report.HoursFilter) (*infra.HoursDocument, error)
}

type ReportMailer interface {
	SendReport(to, subject, body, pdfPath string) error
}

type EmailWorker struct {
	docs        HoursDocumentSource
	mailer      ReportMailer
	cb          *infra.CircuitBreaker
	storagePath string
}

func NewEmailWorker(docs HoursDocumentSource, mailer ReportMailer, cb *infra.CircuitBreaker, storagePath string) *EmailWorker {
	return &EmailWorker{docs: docs, mailer: mailer, cb: cb, storagePath: storagePath}
}

// Process handles one HoursEmailJob. The report is rebuilt from the dataset
// at send time, so a dataset deleted or emptied after the request fails the
// job permanently.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var job dto.HoursEmailJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return Permanent(fmt.Errorf("email_worker: invalid payload: %w", err))
	}
	if job.To == "" {
		return Permanent(errors.New("email_worker: empty recipient"))
	}
	id, err := uuid.Parse(job.DatasetID)
	if err != nil {
		return Permanent(fmt.Errorf("email_worker: invalid dataset_id %q", job.DatasetID))
	}

	doc, err := w.docs.HoursDocument(ctx, id, report.HoursFilter{PeriodType: job.PeriodType, Users: job.Users})
	if err != nil {
		var unavailable *service.HoursUnavailableError
		if errors.Is(err, service.ErrDatasetNotFound) || errors.As(err, &unavailable) {
			return Permanent(err)
		}
		return err
	}

	path, err := infra.SaveHoursPDF(*doc, w.storagePath)
	if err != nil {
		return err
	}

	subject := "Relatório de horas trabalhadas - " + doc.DatasetName
	body := fmt.Sprintf("Segue em anexo o relatório de horas trabalhadas do dataset %q.\nTotal: %sh em %d período(s), %d usuário(s).",
		doc.DatasetName, doc.Report.TotalHours.StringFixed(2), doc.Report.Periods, doc.Report.UserCount)

	err = w.cb.Execute(func() error {
		return w.mailer.SendReport(job.To, subject, body, path)
	})
	if err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", job.To, err)
	}
	log.Info().Str("to", job.To).Str("dataset_id", job.DatasetID).Str("file", path).Msg("email_worker: hours report sent")
	return nil
}
