package dto

import "github.com/jhoicas/labstock-api/internal/domain"

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP. Rows solo se informa en rechazos de lote.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Rows    []domain.RowError `json:"rows,omitempty"`
}
