package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
	invdomain "github.com/jhoicas/labstock-api/internal/domain/inventory"
)

// DateLayout formato de fechas sin hora (vencimientos).
const DateLayout = "2006-01-02"

// BatchRowRequest fila de un lote. Los campos aplican según el tipo:
// ingreso: expiry_date, lot_number, unit_cost, remarks; baja: remarks;
// consumo: employee_id, purpose, receipt_number.
type BatchRowRequest struct {
	ItemID        string           `json:"item_id"`
	Quantity      json.RawMessage `json:"quantity" swaggertype:"number"` // número o string numérico
	ExpiryDate    string          `json:"expiry_date,omitempty"`         // AAAA-MM-DD
	LotNumber     string          `json:"lot_number,omitempty"`
	UnitCost      json.RawMessage `json:"unit_cost,omitempty" swaggertype:"number"`
	Remarks       string          `json:"remarks,omitempty"`
	EmployeeID    string          `json:"employee_id,omitempty"`
	Purpose       string          `json:"purpose,omitempty"`
	ReceiptNumber string          `json:"receipt_number,omitempty"`
}

// BatchMetaRequest metadatos comunes del lote.
type BatchMetaRequest struct {
	OccurredAt    *time.Time `json:"occurred_at,omitempty"` // received_at / removed_at / consumed_at; vacío = ahora
	Supplier      string     `json:"supplier,omitempty"`
	Reference     string     `json:"reference,omitempty"`
	Remarks       string     `json:"remarks,omitempty"`
	ReceiptNumber string     `json:"receipt_number,omitempty"`
}

// CommitBatchRequest body para POST /api/inventory/batches/{kind}.
type CommitBatchRequest struct {
	Rows []BatchRowRequest `json:"rows"`
	Meta BatchMetaRequest  `json:"meta"`
}

// CommitBatchResponse respuesta de un lote confirmado.
type CommitBatchResponse struct {
	BatchID string `json:"batch_id"`
}

// ToBatch convierte el request en un lote de dominio.
// Valores no interpretables (cantidad, costo, fecha) quedan marcados en la fila y
// se informan junto con el resto de errores por fila al confirmar.
func (r CommitBatchRequest) ToBatch(kind entity.EntryKind, recordedBy string) entity.Batch {
	batch := entity.Batch{
		Kind: kind,
		Rows: make([]entity.BatchRow, 0, len(r.Rows)),
		Meta: entity.BatchMeta{
			Supplier:      strings.TrimSpace(r.Meta.Supplier),
			Reference:     strings.TrimSpace(r.Meta.Reference),
			Remarks:       strings.TrimSpace(r.Meta.Remarks),
			ReceiptNumber: strings.TrimSpace(r.Meta.ReceiptNumber),
			RecordedBy:    recordedBy,
		},
	}
	if r.Meta.OccurredAt != nil {
		batch.Meta.OccurredAt = *r.Meta.OccurredAt
	}
	for _, in := range r.Rows {
		row := entity.BatchRow{
			ItemID:        strings.TrimSpace(in.ItemID),
			LotNumber:     strings.TrimSpace(in.LotNumber),
			Remarks:       strings.TrimSpace(in.Remarks),
			EmployeeID:    strings.TrimSpace(in.EmployeeID),
			Purpose:       strings.TrimSpace(in.Purpose),
			ReceiptNumber: strings.TrimSpace(in.ReceiptNumber),
		}
		if q, present, ok := parseDecimal(in.Quantity); !ok {
			row.MalformedQuantity = string(in.Quantity)
		} else if present {
			row.Quantity = q
		}
		if c, present, ok := parseDecimal(in.UnitCost); !ok {
			row.MalformedUnitCost = string(in.UnitCost)
		} else if present {
			row.UnitCost = &c
		}
		if expiry := strings.TrimSpace(in.ExpiryDate); expiry != "" {
			if d, err := time.Parse(DateLayout, expiry); err != nil {
				row.MalformedExpiry = expiry
			} else {
				row.ExpiryDate = &d
			}
		}
		batch.Rows = append(batch.Rows, row)
	}
	return batch
}

// parseDecimal acepta un número JSON o un string numérico.
// present=false si el campo falta o es null; ok=false si no es interpretable.
func parseDecimal(raw json.RawMessage) (d decimal.Decimal, present, ok bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, false, true
	}
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, true, false
	}
	return d, true, true
}

// BalanceResponse saldo actual de un ítem.
type BalanceResponse struct {
	ItemID          string          `json:"item_id"`
	Label           string          `json:"label"`
	SectionID       string          `json:"section_id"`
	Unit            string          `json:"unit"`
	ReorderLevel    int64           `json:"reorder_level"`
	TotalReceived   int64           `json:"total_received"`
	TotalRemoved    int64           `json:"total_removed"`
	TotalConsumed   int64           `json:"total_consumed"`
	CurrentStock    int64           `json:"current_stock"`
	Status          string          `json:"status"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"`
	StockValue      decimal.Decimal `json:"stock_value"`
}

// ToBalanceResponse mapea un saldo de dominio.
func ToBalanceResponse(b entity.CurrentBalance) BalanceResponse {
	return BalanceResponse{
		ItemID:          b.ItemID,
		Label:           b.Label,
		SectionID:       b.SectionID,
		Unit:            b.Unit,
		ReorderLevel:    b.ReorderLevel,
		TotalReceived:   b.TotalReceived,
		TotalRemoved:    b.TotalRemoved,
		TotalConsumed:   b.TotalConsumed,
		CurrentStock:    b.CurrentStock,
		Status:          string(b.Status),
		AverageUnitCost: b.AverageUnitCost,
		StockValue:      b.StockValue,
	}
}

// MovementResponse movimiento del historial.
type MovementResponse struct {
	EntryID            string    `json:"entry_id"`
	BatchID            string    `json:"batch_id"`
	Kind               string    `json:"kind"`
	ItemID             string    `json:"item_id"`
	ItemLabel          string    `json:"item_label"`
	Quantity           int64     `json:"quantity"`
	SignedQuantity     int64     `json:"signed_quantity"`
	OccurredAt         time.Time `json:"occurred_at"`
	PerformerLabel     string    `json:"performer_label"`
	ReferenceOrPurpose string    `json:"reference_or_purpose,omitempty"`
	Remarks            string    `json:"remarks,omitempty"`
}

// ToMovementResponse mapea un movimiento de dominio.
func ToMovementResponse(m entity.MovementRecord) MovementResponse {
	return MovementResponse{
		EntryID:            m.EntryID,
		BatchID:            m.BatchID,
		Kind:               string(m.Kind),
		ItemID:             m.ItemID,
		ItemLabel:          m.ItemLabel,
		Quantity:           m.Quantity,
		SignedQuantity:     m.SignedQuantity(),
		OccurredAt:         m.OccurredAt,
		PerformerLabel:     m.PerformerLabel,
		ReferenceOrPurpose: m.ReferenceOrPurpose,
		Remarks:            m.Remarks,
	}
}

// ToMovementResponses mapea una lista de movimientos.
func ToMovementResponses(recs []entity.MovementRecord) []MovementResponse {
	out := make([]MovementResponse, 0, len(recs))
	for _, m := range recs {
		out = append(out, ToMovementResponse(m))
	}
	return out
}

// MovementPageResponse página del historial.
type MovementPageResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// OpenDraftRequest body para POST /api/inventory/drafts.
type OpenDraftRequest struct {
	Kind string `json:"kind"`
}

// DraftResponse borrador serializable: el cliente lo conserva y lo reenvía.
type DraftResponse struct {
	Kind     string               `json:"kind"`
	OpenedAt time.Time            `json:"opened_at"`
	Rows     []invdomain.RowDraft `json:"rows"`
	Snapshot map[string]int64     `json:"snapshot"`
	Eligible [][]string           `json:"eligible"`
}

// EligibleRequest body para POST /api/inventory/drafts/eligible.
type EligibleRequest struct {
	Kind     string               `json:"kind"`
	Rows     []invdomain.RowDraft `json:"rows"`
	Snapshot map[string]int64     `json:"snapshot,omitempty"`
}

// ToDraftResponse mapea un borrador y su elegibilidad por fila.
func ToDraftResponse(d *invdomain.Draft, eligible [][]entity.Item) DraftResponse {
	ids := make([][]string, 0, len(eligible))
	for _, row := range eligible {
		rowIDs := make([]string, 0, len(row))
		for _, it := range row {
			rowIDs = append(rowIDs, it.ID)
		}
		ids = append(ids, rowIDs)
	}
	return DraftResponse{
		Kind:     string(d.Kind),
		OpenedAt: d.OpenedAt,
		Rows:     d.Rows,
		Snapshot: d.Snapshot(),
		Eligible: ids,
	}
}

// ArchiveReportResponse ubicación del reporte archivado.
type ArchiveReportResponse struct {
	Location string `json:"location"`
}
