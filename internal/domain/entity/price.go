package entity

// PriceUnit is the billing unit a price row applies to
type PriceUnit string

// Billing units. Only per-image billing is honored; anything else signals
// an unsupported pricing model.
const (
	PriceUnitPerImage PriceUnit = "per_image"
)

// Well-known pricing keys. TaskTypeImageAnalysis debits the ledger without
// creating a task; TaskTypeImageGeneration is the default generation task.
const (
	TaskTypeImageGeneration = "image_generation"
	TaskTypeImageAnalysis   = "image_analysis"
)

// Price maps a task type and billing unit to a unit price in minor units.
// Rows are read-only configuration; the ledger engine never writes them.
type Price struct {
	TaskType string    // Pricing key
	Unit     PriceUnit // Billing unit
	Amount   int64     // Minor units per billed unit
}
