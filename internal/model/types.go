package model

import "github.com/wardroom/messbook/internal/codec"

// Well-known collection names. Collections are created lazily, so these are
// conventions rather than a closed set; any other name is a plain collection
// with no side effects.
const (
	CollectionStockItems     = "stockItems"
	CollectionDailyMessing   = "dailyMessingEntries"
	CollectionBarEntries     = "barEntries"
	CollectionSnacksAtBar    = "snacksAtBarEntries"
	CollectionInwardLog      = "inwardLog"
	CollectionMessMembers    = "messMembers"
	CollectionAttendance     = "attendance"
	CollectionMonthlyCharges = "monthlyCharges"
	CollectionRationDemand   = "rationDemand"
	CollectionMinStockLevels = "minStockLevels"
)

// IsLedgerLinked reports whether inserts into the collection mutate stock
// as a side effect.
func IsLedgerLinked(name string) bool {
	switch name {
	case CollectionDailyMessing, CollectionBarEntries, CollectionSnacksAtBar, CollectionInwardLog:
		return true
	}
	return false
}

// Reserved record fields stamped by the store.
const (
	FieldID        = "id"
	FieldTimestamp = "timestamp"
	FieldDate      = "date"
)

// StockItem is the typed view of one record in the stockItems collection.
// TotalCost is maintained as CurrentQuantity*LastUnitCost and is never
// trusted independently.
type StockItem struct {
	ID                string
	ItemName          string
	CurrentQuantity   float64
	LastUnitCost      float64
	TotalCost         float64
	UnitOfMeasurement string
	ItemType          string
	Type              string
	LastReceivedDate  string
}

// StockItemFromRecord projects a raw record into the typed view. Numeric
// fields that decoded as anything other than numbers read as zero.
func StockItemFromRecord(rec codec.Record) StockItem {
	return StockItem{
		ID:                rec[FieldID].AsString(),
		ItemName:          rec["itemName"].AsString(),
		CurrentQuantity:   rec["currentQuantity"].NumberOr(0),
		LastUnitCost:      rec["lastUnitCost"].NumberOr(0),
		TotalCost:         rec["totalCost"].NumberOr(0),
		UnitOfMeasurement: rec["unitOfMeasurement"].AsString(),
		ItemType:          rec["itemType"].AsString(),
		Type:              rec["type"].AsString(),
		LastReceivedDate:  rec["lastReceivedDate"].AsString(),
	}
}

// Apply writes the mutable quantity and cost figures back onto the record.
func (s StockItem) Apply(rec codec.Record) {
	rec["currentQuantity"] = codec.Number(s.CurrentQuantity)
	rec["lastUnitCost"] = codec.Number(s.LastUnitCost)
	rec["totalCost"] = codec.Number(s.TotalCost)
	if s.LastReceivedDate != "" {
		rec["lastReceivedDate"] = codec.String(s.LastReceivedDate)
	}
	if s.Type != "" {
		rec["type"] = codec.String(s.Type)
	}
}
