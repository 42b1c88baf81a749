package inventory

import "github.com/shopspring/decimal"

// AverageUnitCost implementa el costo promedio ponderado sobre los ingresos valorizados.
// Costo = Σ(cantidad × costo unitario) / Σ(cantidad), solo ingresos con costo informado.
func AverageUnitCost(valuedQuantity int64, valuedTotal decimal.Decimal) decimal.Decimal {
	if valuedQuantity <= 0 {
		return decimal.Zero
	}
	return valuedTotal.Div(decimal.NewFromInt(valuedQuantity)).Round(4)
}

// StockValue valor del stock actual al costo promedio, redondeado a 2 decimales.
func StockValue(currentStock int64, averageUnitCost decimal.Decimal) decimal.Decimal {
	if currentStock <= 0 {
		return decimal.Zero
	}
	return averageUnitCost.Mul(decimal.NewFromInt(currentStock)).Round(2)
}
