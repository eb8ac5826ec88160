// Package service orchestrates document ingestion: extraction, parsing,
// persistence and the per-job log trail.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/brfin/caixa-api/internal/document"
	"github.com/brfin/caixa-api/internal/ingest"
	"github.com/brfin/caixa-api/internal/ingest/parser"
	"github.com/brfin/caixa-api/internal/ingest/repository"
	"github.com/brfin/caixa-api/internal/jobs"
	"github.com/brfin/caixa-api/pkg/metrics"
)

// IngestService processes uploaded documents end to end. One call handles one
// document; there is no state shared between documents, so jobs may run on
// any number of workers.
type IngestService struct {
	repo      repository.IngestRepository
	extractor document.Extractor
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewIngestService creates a new ingest service. metrics may be nil when
// instrumentation is disabled.
func NewIngestService(repo repository.IngestRepository, extractor document.Extractor, m *metrics.Metrics, logger *slog.Logger) *IngestService {
	return &IngestService{
		repo:      repo,
		extractor: extractor,
		metrics:   m,
		logger:    logger,
	}
}

// ProcessJob runs one ingestion job to completion. A returned error means the
// document produced zero records and the job may be retried; partial output is
// never persisted.
func (s *IngestService) ProcessJob(ctx context.Context, job *jobs.IngestJob) error {
	jobID, err := uuid.Parse(job.JobID)
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", job.JobID, err)
	}

	s.log(ctx, jobID, repository.LogInfo, fmt.Sprintf("Arquivo recebido: %s", job.Filename))

	pages, err := s.extractPages(ctx, job.Path)
	if err != nil {
		s.countDocument(job.Kind, "failed")
		s.log(ctx, jobID, repository.LogError, fmt.Sprintf("Falha ao extrair conteúdo do documento: %v", err))
		return fmt.Errorf("failed to extract document content: %w", err)
	}

	started := time.Now()

	var inserted int
	switch job.Kind {
	case ingest.KindBankTable, ingest.KindBankText:
		inserted, err = s.processBank(ctx, jobID, job.Kind, pages, job.Filename)
	case ingest.KindPayments:
		inserted, err = s.processPayments(ctx, jobID, pages, job.Filename)
	case ingest.KindReceivables:
		inserted, err = s.processReceivables(ctx, jobID, pages, job.Filename)
	default:
		s.countDocument(job.Kind, "failed")
		s.log(ctx, jobID, repository.LogError,
			fmt.Sprintf("Nome de arquivo não reconhecido: %s. Esperado extrato, 'pagamentos' ou 'recebimentos'.", job.Filename))
		return fmt.Errorf("unrecognized document kind %q", job.Kind)
	}

	if s.metrics != nil {
		s.metrics.ParseDuration.WithLabelValues(string(job.Kind)).Observe(time.Since(started).Seconds())
	}

	if err != nil {
		s.countDocument(job.Kind, "failed")
		return err
	}

	s.countDocument(job.Kind, "ok")
	s.log(ctx, jobID, repository.LogSuccess,
		fmt.Sprintf("Job de ingestão finalizado com sucesso. %d registros adicionados.", inserted))

	// The upload stays on disk across failed attempts so the queue can retry
	// the job; only a finished job releases it.
	s.removeUpload(job.Path)
	return nil
}

func (s *IngestService) removeUpload(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove upload", slog.String("path", path), slog.Any("error", err))
	}
}

// Logs returns a job's log trail in write order.
func (s *IngestService) Logs(ctx context.Context, jobID uuid.UUID) ([]repository.IngestionLog, error) {
	return s.repo.ListLogs(ctx, jobID)
}

func (s *IngestService) processBank(ctx context.Context, jobID uuid.UUID, kind ingest.DocumentKind, pages []document.Page, filename string) (int, error) {
	var records []parser.BankTransaction
	if kind == ingest.KindBankText {
		s.log(ctx, jobID, repository.LogInfo, "Usando parser de extrato (texto)...")
		records = parser.ParseBankText(pages, filename)
	} else {
		s.log(ctx, jobID, repository.LogInfo, "Usando parser de extrato (tabela)...")
		records = parser.ParseBankTables(pages, filename)
	}

	s.countRows(kind, pages, len(records))
	s.log(ctx, jobID, repository.LogServer,
		fmt.Sprintf("Parsing concluído. %d transações encontradas.", len(records)))

	if len(records) == 0 {
		s.log(ctx, jobID, repository.LogInfo, "Nenhuma transação encontrada para inserir.")
		return 0, nil
	}

	s.log(ctx, jobID, repository.LogServer, "Iniciando inserção no PostgreSQL...")
	inserted, err := s.repo.InsertBankTransactions(ctx, records)
	if err != nil {
		s.countInsertFailure()
		s.log(ctx, jobID, repository.LogError, fmt.Sprintf("Falha na inserção: %v", err))
		return 0, fmt.Errorf("failed to insert bank transactions: %w", err)
	}

	s.countRecords(kind, inserted)
	s.log(ctx, jobID, repository.LogSuccess,
		fmt.Sprintf("Inserção concluída. %d linhas adicionadas.", inserted))
	return inserted, nil
}

func (s *IngestService) processPayments(ctx context.Context, jobID uuid.UUID, pages []document.Page, filename string) (int, error) {
	s.log(ctx, jobID, repository.LogInfo, "Usando parser de Pagamentos...")
	entries := parser.ParsePayments(pages, filename)

	s.countRows(ingest.KindPayments, pages, len(entries))

	if len(entries) == 0 {
		s.log(ctx, jobID, repository.LogInfo, "Nenhum dado de pagamento encontrado.")
		return 0, nil
	}

	s.log(ctx, jobID, repository.LogServer,
		fmt.Sprintf("Iniciando inserção de %d pagamentos...", len(entries)))
	inserted, err := s.repo.InsertPayments(ctx, entries)
	if err != nil {
		s.countInsertFailure()
		s.log(ctx, jobID, repository.LogError, fmt.Sprintf("Falha na inserção: %v", err))
		return 0, fmt.Errorf("failed to insert payments: %w", err)
	}

	s.countRecords(ingest.KindPayments, inserted)
	s.log(ctx, jobID, repository.LogSuccess,
		fmt.Sprintf("Inserção concluída. %d pagamentos adicionados.", inserted))
	return inserted, nil
}

func (s *IngestService) processReceivables(ctx context.Context, jobID uuid.UUID, pages []document.Page, filename string) (int, error) {
	s.log(ctx, jobID, repository.LogInfo, "Usando parser de Recebimentos...")
	entries := parser.ParseReceivables(pages, filename)

	s.countRows(ingest.KindReceivables, pages, len(entries))

	if len(entries) == 0 {
		s.log(ctx, jobID, repository.LogInfo, "Nenhum dado de recebimento encontrado.")
		return 0, nil
	}

	s.log(ctx, jobID, repository.LogServer,
		fmt.Sprintf("Iniciando inserção de %d recebimentos...", len(entries)))
	inserted, err := s.repo.InsertReceivables(ctx, entries)
	if err != nil {
		s.countInsertFailure()
		s.log(ctx, jobID, repository.LogError, fmt.Sprintf("Falha na inserção: %v", err))
		return 0, fmt.Errorf("failed to insert receivables: %w", err)
	}

	s.countRecords(ingest.KindReceivables, inserted)
	s.log(ctx, jobID, repository.LogSuccess,
		fmt.Sprintf("Inserção concluída. %d recebimentos adicionados.", inserted))
	return inserted, nil
}

// extractPages opens the uploaded payload and hands it to the extraction
// collaborator.
func (s *IngestService) extractPages(ctx context.Context, path string) ([]document.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close upload", slog.Any("error", err))
		}
	}()

	return s.extractor.Extract(ctx, f)
}

// log writes one line to the job trail and mirrors it on the process logger.
// Trail writes are best effort; losing a line never fails the job.
func (s *IngestService) log(ctx context.Context, jobID uuid.UUID, logType, message string) {
	s.logger.Info(message, slog.String("job_id", jobID.String()), slog.String("log_type", logType))
	if err := s.repo.InsertLog(ctx, jobID, logType, message); err != nil {
		s.logger.Warn("failed to write ingestion log", slog.Any("error", err))
	}
}

func (s *IngestService) countDocument(kind ingest.DocumentKind, outcome string) {
	if s.metrics != nil {
		s.metrics.DocumentsParsed.WithLabelValues(string(kind), outcome).Inc()
	}
}

func (s *IngestService) countRecords(kind ingest.DocumentKind, n int) {
	if s.metrics != nil {
		s.metrics.RecordsExtracted.WithLabelValues(string(kind)).Add(float64(n))
	}
}

// countRows tracks table rows that did not survive extraction.
func (s *IngestService) countRows(kind ingest.DocumentKind, pages []document.Page, emitted int) {
	if s.metrics == nil {
		return
	}
	total := 0
	for i := range pages {
		total += pages[i].RowCount()
	}
	if skipped := total - emitted; skipped > 0 {
		s.metrics.RowsSkipped.WithLabelValues(string(kind)).Add(float64(skipped))
	}
}

func (s *IngestService) countInsertFailure() {
	if s.metrics != nil {
		s.metrics.InsertFailures.Inc()
	}
}
