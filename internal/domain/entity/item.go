package entity

// Item representa un insumo o reactivo del catálogo del laboratorio.
// El catálogo es administrado fuera del ledger; aquí solo se lee.
type Item struct {
	ID           string
	Label        string
	SectionID    string
	Unit         string // unidad de despacho: caja, frasco, kit, unidad...
	ReorderLevel int64  // punto de reorden (>= 0); stock <= ReorderLevel se considera bajo
}

// Section representa una sección del laboratorio (hematología, química, microbiología...).
type Section struct {
	ID   string
	Name string
}

// Employee representa un empleado que puede registrar o consumir insumos.
type Employee struct {
	ID       string
	FullName string
	Active   bool
}

// ItemFilter filtros de lectura del catálogo.
type ItemFilter struct {
	SectionID string
	Search    string // texto libre sobre Label (sin distinguir mayúsculas ni tildes)
}
