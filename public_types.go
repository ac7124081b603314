package photos

import "github.com/ddtrong/icloud-photos/internal/cloudkit"

// Public type aliases so consumers can work with raw records (MasterRecord,
// AssetRecord) without reaching into the internal wire package.
type (
	Record      = cloudkit.Record
	Fields      = cloudkit.Fields
	FieldValue  = cloudkit.FieldValue
	Filter      = cloudkit.Filter
	FilterValue = cloudkit.FilterValue
)
