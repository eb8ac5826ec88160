// Package handler exposes the ingestion HTTP API: document uploads, job
// polling, per-job log trails and the CSV export.
package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/brfin/caixa-api/internal/api/middleware"
	"github.com/brfin/caixa-api/internal/ingest"
	"github.com/brfin/caixa-api/internal/ingest/repository"
	"github.com/brfin/caixa-api/internal/jobs"
)

// maxUploadBytes caps an uploaded document. The largest real statements are
// well under a megabyte of extracted content.
const maxUploadBytes = 25 << 20

// Service is the slice of the ingest service the HTTP layer needs.
type Service interface {
	Logs(ctx context.Context, jobID uuid.UUID) ([]repository.IngestionLog, error)
	ExportBankTransactionsCSV(ctx context.Context, w io.Writer, start, end time.Time) (int, error)
}

// IngestAPI handles document ingestion endpoints.
type IngestAPI struct {
	svc       Service
	publisher jobs.Publisher
	store     jobs.JobStore
	uploadDir string
	logger    *slog.Logger
}

// NewIngestAPI creates a new ingestion API. Uploads are spooled to uploadDir
// until the background worker consumes them.
func NewIngestAPI(svc Service, publisher jobs.Publisher, store jobs.JobStore, uploadDir string, logger *slog.Logger) *IngestAPI {
	return &IngestAPI{
		svc:       svc,
		publisher: publisher,
		store:     store,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// Register attaches the ingestion routes to mux.
func (a *IngestAPI) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/ingest/bank", a.UploadBank)
	mux.HandleFunc("POST /v1/ingest/internal", a.UploadInternal)
	mux.HandleFunc("GET /v1/jobs", a.ListJobs)
	mux.HandleFunc("GET /v1/jobs/{id}", a.GetJob)
	mux.HandleFunc("GET /v1/logs", a.Logs)
	mux.HandleFunc("GET /v1/transactions/export", a.ExportTransactions)
}

// UploadBank handles POST /v1/ingest/bank. The statement layout is resolved
// from the filename and fixed on the job.
func (a *IngestAPI) UploadBank(w http.ResponseWriter, r *http.Request) {
	a.upload(w, r, ingest.DetectBankKind)
}

// UploadInternal handles POST /v1/ingest/internal. Filenames that match
// neither ledger still enqueue; the worker records the rejection on the
// job's log trail where the uploader can see it.
func (a *IngestAPI) UploadInternal(w http.ResponseWriter, r *http.Request) {
	a.upload(w, r, ingest.DetectInternalKind)
}

func (a *IngestAPI) upload(w http.ResponseWriter, r *http.Request, detect func(string) ingest.DocumentKind) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "A file upload named 'file' is required")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	path, err := a.spool(file)
	if err != nil {
		a.logger.Error("failed to spool upload", slog.Any("error", err))
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	job := &jobs.IngestJob{
		JobID:    uuid.NewString(),
		Kind:     detect(filename),
		Filename: filename,
		Path:     path,
	}

	if err := a.publisher.PublishIngest(r.Context(), job); err != nil {
		_ = os.Remove(path)
		a.logger.Error("failed to enqueue ingestion job", slog.Any("error", err))
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue ingestion job")
		return
	}

	a.logger.Info("ingestion job enqueued",
		slog.String("job_id", job.JobID),
		slog.String("kind", string(job.Kind)),
		slog.String("filename", filename),
	)

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":   job.JobID,
		"filename": filename,
		"status":   string(job.Status),
	})
}

// spool copies the upload to a temp file owned by the job.
func (a *IngestAPI) spool(file io.Reader) (string, error) {
	tmp, err := os.CreateTemp(a.uploadDir, "upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close upload: %w", err)
	}

	return tmp.Name(), nil
}

// GetJob handles GET /v1/jobs/{id}.
func (a *IngestAPI) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	job, err := a.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /v1/jobs.
func (a *IngestAPI) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Kind:   ingest.DocumentKind(query.Get("kind")),
		Status: jobs.JobStatus(query.Get("status")),
	}
	filter.Limit = intQuery(query.Get("limit"))
	filter.Offset = intQuery(query.Get("offset"))

	list, err := a.store.ListJobs(r.Context(), filter)
	if err != nil {
		a.logger.Error("failed to list jobs", slog.Any("error", err))
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"jobs":  list,
		"count": len(list),
	})
}

type logEntry struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Logs handles GET /v1/logs?job_id=. It returns a job's processing trail in
// write order.
func (a *IngestAPI) Logs(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.URL.Query().Get("job_id"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "A valid job_id is required")
		return
	}

	logs, err := a.svc.Logs(r.Context(), jobID)
	if err != nil {
		a.logger.Error("failed to list ingestion logs", slog.Any("error", err))
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list logs")
		return
	}

	entries := make([]logEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, logEntry{
			Type:      l.LogType,
			Message:   l.Message,
			CreatedAt: l.CreatedAt,
		})
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"job_id": jobID.String(),
		"logs":   entries,
		"count":  len(entries),
	})
}

// ExportTransactions handles GET /v1/transactions/export. The date window
// defaults to the trailing year.
func (a *IngestAPI) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "transacoes-"+end.Format("2006-01-02")+".csv"))

	if _, err := a.svc.ExportBankTransactionsCSV(r.Context(), w, start, end); err != nil {
		// Headers are already out; all we can do is log and cut the stream.
		a.logger.Error("failed to export transactions", slog.Any("error", err))
	}
}

func dateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start := time.Now().AddDate(-1, 0, 0)
	end := time.Now()

	var err error
	if startStr != "" {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date format, expected YYYY-MM-DD")
		}
	}
	if endStr != "" {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date format, expected YYYY-MM-DD")
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date must not precede start_date")
	}
	return start, end, nil
}

func intQuery(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
