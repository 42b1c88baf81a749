package dto

// ItemResponse ítem del catálogo.
type ItemResponse struct {
	ItemID       string `json:"item_id"`
	Label        string `json:"label"`
	SectionID    string `json:"section_id"`
	Unit         string `json:"unit"`
	ReorderLevel int64  `json:"reorder_level"`
}

// SectionResponse sección del laboratorio.
type SectionResponse struct {
	SectionID string `json:"section_id"`
	Name      string `json:"name"`
}

// EmployeeResponse empleado.
type EmployeeResponse struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Active     bool   `json:"active"`
}
