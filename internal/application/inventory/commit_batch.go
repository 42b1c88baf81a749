package inventory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/labstock-api/internal/application/ports"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	invdomain "github.com/jhoicas/labstock-api/internal/domain/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// CommitOptions parámetros de reintento del committer.
type CommitOptions struct {
	MaxRetries int           // reintentos adicionales ante ErrConcurrencyConflict
	Backoff    time.Duration // espera base; el intento n espera n × Backoff
}

// CommitBatchUseCase valida y persiste un lote completo (ingreso, baja o consumo) de forma atómica.
// El saldo se vuelve a leer dentro de la transacción, con las filas de los ítems bloqueadas;
// el snapshot del borrador nunca decide el resultado.
type CommitBatchUseCase struct {
	txRunner TxRunner
	observer ports.CommitObserver
	log      *logger.Logger
	opts     CommitOptions
	now      func() time.Time
}

// NewCommitBatchUseCase construye el caso de uso.
func NewCommitBatchUseCase(
	txRunner TxRunner,
	observer ports.CommitObserver,
	log *logger.Logger,
	opts CommitOptions,
) *CommitBatchUseCase {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &CommitBatchUseCase{
		txRunner: txRunner,
		observer: observer,
		log:      log.Component("committer"),
		opts:     opts,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (pruebas).
func (uc *CommitBatchUseCase) WithClock(now func() time.Time) *CommitBatchUseCase {
	uc.now = now
	return uc
}

// Commit valida el lote y agrega todas sus filas al ledger en una sola transacción.
// Devuelve el batch_id o un *domain.BatchError con los motivos por fila.
func (uc *CommitBatchUseCase) Commit(ctx context.Context, batch entity.Batch) (string, error) {
	if !batch.Kind.Valid() {
		return "", fmt.Errorf("%w: tipo de lote %q", domain.ErrInvalidInput, batch.Kind)
	}
	if len(batch.Rows) == 0 {
		return "", fmt.Errorf("%w: el lote no tiene filas", domain.ErrValidation)
	}

	start := uc.now()
	if batch.Meta.OccurredAt.IsZero() {
		batch.Meta.OccurredAt = start
	}
	batch.Meta.OccurredAt = batch.Meta.OccurredAt.UTC()
	batchID := uuid.New().String()

	var err error
	for attempt := 0; ; attempt++ {
		err = uc.txRunner.Run(ctx, func(
			ledgerRepo repository.LedgerRepository,
			itemRepo repository.ItemRepository,
			employeeRepo repository.EmployeeRepository,
		) error {
			return uc.commitTx(ctx, ledgerRepo, itemRepo, employeeRepo, batchID, batch)
		})
		if !errors.Is(err, domain.ErrConcurrencyConflict) || attempt >= uc.opts.MaxRetries {
			break
		}
		uc.observer.ObserveRetry(batch.Kind)
		uc.log.Warn().
			Str("batch_id", batchID).
			Str("kind", string(batch.Kind)).
			Int("attempt", attempt+1).
			Msg("conflicto de concurrencia, reintentando lote")
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(uc.opts.Backoff * time.Duration(attempt+1)):
		}
	}

	elapsed := uc.now().Sub(start)
	var batchErr *domain.BatchError
	switch {
	case err == nil:
		uc.observer.ObserveCommit(batch.Kind, ports.CommitOutcomeCommitted, elapsed)
		uc.log.Info().
			Str("batch_id", batchID).
			Str("kind", string(batch.Kind)).
			Int("rows", len(batch.Rows)).
			Str("recorded_by", batch.Meta.RecordedBy).
			Msg("lote confirmado")
		return batchID, nil
	case errors.As(err, &batchErr):
		uc.observer.ObserveCommit(batch.Kind, ports.CommitOutcomeRejected, elapsed)
		uc.log.Info().
			Str("kind", string(batch.Kind)).
			Str("cause", batchErr.Cause.Error()).
			Int("row_errors", len(batchErr.Rows)).
			Msg("lote rechazado")
	case errors.Is(err, domain.ErrConcurrencyConflict):
		uc.observer.ObserveCommit(batch.Kind, ports.CommitOutcomeConflict, elapsed)
		uc.log.Warn().Str("kind", string(batch.Kind)).Msg("lote abortado: reintentos agotados")
	default:
		uc.observer.ObserveCommit(batch.Kind, ports.CommitOutcomeError, elapsed)
		uc.log.Error().Err(err).Str("kind", string(batch.Kind)).Msg("error confirmando lote")
	}
	return "", err
}

// commitTx corre dentro de la transacción: bloquea ítems, valida, relee saldo y agrega.
func (uc *CommitBatchUseCase) commitTx(
	ctx context.Context,
	ledgerRepo repository.LedgerRepository,
	itemRepo repository.ItemRepository,
	employeeRepo repository.EmployeeRepository,
	batchID string,
	batch entity.Batch,
) error {
	itemIDs := distinctNonEmpty(batch.ItemIDs())
	locked, err := itemRepo.LockByIDs(ctx, itemIDs)
	if err != nil {
		return err
	}
	items := make(map[string]entity.Item, len(locked))
	for _, it := range locked {
		items[it.ID] = it
	}

	var employees map[string]entity.Employee
	if batch.Kind == entity.EntryKindConsumed {
		employees, err = loadEmployees(ctx, employeeRepo, batch.Rows)
		if err != nil {
			return err
		}
	}

	valid, rowErrs := invdomain.ValidateRows(batch.Kind, batch.Rows, batch.Meta.OccurredAt, items, employees)
	dupErrs := invdomain.CheckExclusivity(batch.Rows)
	switch {
	case len(rowErrs) > 0:
		return domain.NewBatchError(domain.ErrValidation, sortRowErrors(append(rowErrs, dupErrs...)))
	case len(dupErrs) > 0:
		return domain.NewBatchError(domain.ErrDuplicateItemInBatch, dupErrs)
	}

	if batch.Kind.DrawsStock() {
		totals, err := ledgerRepo.Totals(ctx, itemIDs)
		if err != nil {
			return err
		}
		if errs := invdomain.CheckAvailability(valid, totals); len(errs) > 0 {
			return domain.NewBatchError(domain.ErrInsufficientStock, errs)
		}
	}

	now := uc.now().UTC()
	switch batch.Kind {
	case entity.EntryKindReceived:
		return ledgerRepo.AppendReceived(ctx, buildReceived(batchID, batch.Meta, valid, now))
	case entity.EntryKindRemoved:
		return ledgerRepo.AppendRemoved(ctx, buildRemoved(batchID, batch.Meta, valid, now))
	default:
		return ledgerRepo.AppendConsumed(ctx, buildConsumed(batchID, batch.Meta, valid, now))
	}
}

func loadEmployees(ctx context.Context, repo repository.EmployeeRepository, rows []entity.BatchRow) (map[string]entity.Employee, error) {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.EmployeeID)
	}
	list, err := repo.GetByIDs(ctx, distinctNonEmpty(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[string]entity.Employee, len(list))
	for _, e := range list {
		out[e.ID] = e
	}
	return out, nil
}

func buildReceived(batchID string, meta entity.BatchMeta, rows []invdomain.ValidRow, now time.Time) []entity.ReceivedEntry {
	out := make([]entity.ReceivedEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, entity.ReceivedEntry{
			ID:         newEntryID(),
			BatchID:    batchID,
			ItemID:     r.Row.ItemID,
			Quantity:   r.Quantity,
			ReceivedAt: meta.OccurredAt,
			ExpiryDate: r.Row.ExpiryDate,
			Supplier:   meta.Supplier,
			Reference:  meta.Reference,
			Remarks:    firstNonEmpty(r.Row.Remarks, meta.Remarks),
			LotNumber:  r.Row.LotNumber,
			UnitCost:   r.Row.UnitCost,
			RecordedBy: meta.RecordedBy,
			CreatedAt:  now,
		})
	}
	return out
}

func buildRemoved(batchID string, meta entity.BatchMeta, rows []invdomain.ValidRow, now time.Time) []entity.RemovedEntry {
	out := make([]entity.RemovedEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, entity.RemovedEntry{
			ID:         newEntryID(),
			BatchID:    batchID,
			ItemID:     r.Row.ItemID,
			Quantity:   r.Quantity,
			RemovedAt:  meta.OccurredAt,
			Reference:  meta.Reference,
			Remarks:    firstNonEmpty(r.Row.Remarks, meta.Remarks),
			RecordedBy: meta.RecordedBy,
			CreatedAt:  now,
		})
	}
	return out
}

func buildConsumed(batchID string, meta entity.BatchMeta, rows []invdomain.ValidRow, now time.Time) []entity.ConsumedEntry {
	out := make([]entity.ConsumedEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, entity.ConsumedEntry{
			ID:            newEntryID(),
			BatchID:       batchID,
			ItemID:        r.Row.ItemID,
			Quantity:      r.Quantity,
			ConsumedAt:    meta.OccurredAt,
			EmployeeID:    r.Row.EmployeeID,
			Purpose:       r.Row.Purpose,
			ReceiptNumber: firstNonEmpty(r.Row.ReceiptNumber, meta.ReceiptNumber),
			CreatedAt:     now,
		})
	}
	return out
}

// newEntryID UUIDv7: ordenado por tiempo, conserva el orden de envío dentro del lote.
func newEntryID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func distinctNonEmpty(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func sortRowErrors(errs []domain.RowError) []domain.RowError {
	slices.SortStableFunc(errs, func(a, b domain.RowError) int { return a.Index - b.Index })
	return errs
}
