// Package ledger implements the cross-collection inventory logic: inserts
// into the ledger-linked collections validate and mutate stock under the
// stock collection's lock before the event record itself is appended.
package ledger

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/wardroom/messbook/internal/codec"
	"github.com/wardroom/messbook/internal/model"
	"github.com/wardroom/messbook/internal/store"
)

// Coordinator sequences the two-phase ledger write: stock first, event
// second. The two writes are not one atomic transaction; the journal makes
// the gap visible when the second write fails.
type Coordinator struct {
	store   *store.Store
	journal *Journal
	log     zerolog.Logger
}

func NewCoordinator(st *store.Store, j *Journal, log zerolog.Logger) *Coordinator {
	return &Coordinator{store: st, journal: j, log: log}
}

// lineItem is one (itemName, quantity) reference carried by an event.
type lineItem struct {
	name     string
	quantity float64
}

// RecordEvent applies one insert into a ledger-linked collection and
// returns the stored event record carrying the captured cost figures.
// Validation failures reject the insert before any mutation.
func (c *Coordinator) RecordEvent(ctx context.Context, collection string, fields codec.Record) (codec.Record, error) {
	event := fields.Clone()

	var apply func(ctx context.Context, event codec.Record) error
	switch collection {
	case model.CollectionDailyMessing:
		items, err := consumedItems(event)
		if err != nil {
			return nil, err
		}
		apply = c.consume(items, shareCount(event, "membersPresent"), "totalMealCost")
	case model.CollectionBarEntries:
		item, err := singleItem(event, "wineType")
		if err != nil {
			return nil, err
		}
		apply = c.consume([]lineItem{item}, shareCount(event, "sharingMembers"), "totalCost")
	case model.CollectionSnacksAtBar:
		item, err := singleItem(event, "itemName")
		if err != nil {
			return nil, err
		}
		apply = c.consume([]lineItem{item}, shareCount(event, "sharingMembers"), "totalItemCost")
	case model.CollectionInwardLog:
		inw, err := inwardFields(event)
		if err != nil {
			return nil, err
		}
		apply = c.receive(inw)
	default:
		return nil, model.Validationf("collection %q is not ledger-linked", collection)
	}

	intentID, err := c.begin(ctx, collection, event)
	if err != nil {
		return nil, err
	}

	if err := apply(ctx, event); err != nil {
		c.cancel(ctx, intentID)
		return nil, err
	}

	rec, err := c.store.Append(collection, event)
	if err != nil {
		c.markFailed(ctx, intentID)
		perr := model.PartialLedger(intentID, collection, err)
		c.log.Error().
			Str("intent_id", intentID).
			Str("collection", collection).
			Err(err).
			Msg("partial ledger failure: stock mutated but event append failed")
		return nil, perr
	}
	c.complete(ctx, intentID)
	return rec, nil
}

// consume validates availability for every line item and deducts stock in
// the same lock scope, capturing the event's total cost at the moment of
// deduction.
func (c *Coordinator) consume(items []lineItem, members int, totalField string) func(context.Context, codec.Record) error {
	items = mergeLineItems(items)
	return func(_ context.Context, event codec.Record) error {
		var total float64
		err := c.store.Mutate(model.CollectionStockItems, func(tx *store.Tx) error {
			// Validate everything against the snapshot before touching it,
			// so a failed insert leaves no partial deduction.
			for _, it := range items {
				rec, ok := tx.Find("itemName", it.name)
				if !ok {
					return model.ItemNotFound(it.name)
				}
				si := model.StockItemFromRecord(rec)
				if it.quantity > si.CurrentQuantity {
					return model.InsufficientStock(it.name, it.quantity, si.CurrentQuantity)
				}
			}
			for _, it := range items {
				rec, _ := tx.Find("itemName", it.name)
				si := model.StockItemFromRecord(rec)
				cost := it.quantity * si.LastUnitCost
				si.CurrentQuantity -= it.quantity
				si.TotalCost -= cost
				if si.CurrentQuantity > 0 {
					si.LastUnitCost = si.TotalCost / si.CurrentQuantity
				} else {
					si.LastUnitCost = 0
				}
				si.Apply(rec)
				total += cost
			}
			tx.MarkDirty()
			return nil
		})
		if err != nil {
			return err
		}
		event[totalField] = codec.Number(total)
		event["costPerMember"] = codec.Number(total / float64(max(1, members)))
		return nil
	}
}

// mergeLineItems collapses repeated item names into one line with the
// combined quantity, so an event naming an item twice is validated against
// the total it consumes rather than each line against the same snapshot.
func mergeLineItems(items []lineItem) []lineItem {
	merged := make([]lineItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if i, ok := index[it.name]; ok {
			merged[i].quantity += it.quantity
			continue
		}
		index[it.name] = len(merged)
		merged = append(merged, it)
	}
	return merged
}

// inward is one replenishment: always increases stock and recomputes the
// weighted-average unit cost.
type inward struct {
	name              string
	quantity          float64
	unitCost          float64
	date              string
	typ               string
	unitOfMeasurement string
	itemType          string
}

func (c *Coordinator) receive(in inward) func(context.Context, codec.Record) error {
	return func(_ context.Context, event codec.Record) error {
		err := c.store.Mutate(model.CollectionStockItems, func(tx *store.Tx) error {
			rec, ok := tx.Find("itemName", in.name)
			if !ok {
				item := codec.Record{
					"itemName":          codec.String(in.name),
					"currentQuantity":   codec.Number(in.quantity),
					"lastUnitCost":      codec.Number(in.unitCost),
					"totalCost":         codec.Number(in.quantity * in.unitCost),
					"unitOfMeasurement": codec.String(defaultStr(in.unitOfMeasurement, "units")),
					"itemType":          codec.String(defaultStr(in.itemType, "Issue")),
					"type":              codec.String(defaultStr(in.typ, "grocery")),
					"lastReceivedDate":  codec.String(in.date),
				}
				tx.Append(item)
				return nil
			}
			si := model.StockItemFromRecord(rec)
			si.CurrentQuantity += in.quantity
			si.TotalCost += in.quantity * in.unitCost
			si.LastUnitCost = si.TotalCost / si.CurrentQuantity
			if in.date != "" {
				si.LastReceivedDate = in.date
			}
			if in.typ != "" {
				si.Type = in.typ
			}
			si.Apply(rec)
			tx.MarkDirty()
			return nil
		})
		if err != nil {
			return err
		}
		event["totalCost"] = codec.Number(in.quantity * in.unitCost)
		return nil
	}
}

// --- event shape parsing ------------------------------------------------

func consumedItems(event codec.Record) ([]lineItem, error) {
	list, ok := event["consumedItems"].AsList()
	if !ok || len(list) == 0 {
		return nil, model.Validationf("consumedItems is required and must be a non-empty list")
	}
	items := make([]lineItem, 0, len(list))
	for i, el := range list {
		m, ok := el.AsMap()
		if !ok {
			return nil, model.Validationf("consumedItems[%d] must be an object", i)
		}
		name := m["itemName"].AsString()
		if name == "" {
			return nil, model.Validationf("consumedItems[%d].itemName is required", i)
		}
		qty, ok := m["quantity"].AsNumber()
		if !ok || qty <= 0 {
			return nil, model.Validationf("consumedItems[%d].quantity must be a positive number", i)
		}
		items = append(items, lineItem{name: name, quantity: qty})
	}
	return items, nil
}

func singleItem(event codec.Record, nameField string) (lineItem, error) {
	name := event[nameField].AsString()
	if name == "" {
		return lineItem{}, model.Validationf("%s is required", nameField)
	}
	qty, ok := event["quantity"].AsNumber()
	if !ok || qty <= 0 {
		return lineItem{}, model.Validationf("quantity must be a positive number")
	}
	return lineItem{name: name, quantity: qty}, nil
}

func inwardFields(event codec.Record) (inward, error) {
	name := event["itemName"].AsString()
	if name == "" {
		return inward{}, model.Validationf("itemName is required")
	}
	qty, ok := event["quantity"].AsNumber()
	if !ok || qty <= 0 {
		return inward{}, model.Validationf("quantity must be a positive number")
	}
	unitCost, ok := event["unitCost"].AsNumber()
	if !ok || unitCost < 0 {
		return inward{}, model.Validationf("unitCost must be a non-negative number")
	}
	return inward{
		name:              name,
		quantity:          qty,
		unitCost:          unitCost,
		date:              event[model.FieldDate].AsString(),
		typ:               event["type"].AsString(),
		unitOfMeasurement: event["unitOfMeasurement"].AsString(),
		itemType:          event["itemType"].AsString(),
	}, nil
}

func shareCount(event codec.Record, field string) int {
	list, ok := event[field].AsList()
	if !ok {
		return 0
	}
	return len(list)
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// --- journal plumbing ---------------------------------------------------

func (c *Coordinator) begin(ctx context.Context, collection string, event codec.Record) (string, error) {
	if c.journal == nil {
		return "", nil
	}
	id, err := c.journal.Begin(ctx, collection, event)
	if err != nil {
		return "", model.StorageIO("journal intent", collection, err)
	}
	return id, nil
}

func (c *Coordinator) cancel(ctx context.Context, id string) {
	if c.journal == nil || id == "" {
		return
	}
	if err := c.journal.Cancel(ctx, id); err != nil {
		c.log.Warn().Err(err).Str("intent_id", id).Msg("failed to cancel ledger intent")
	}
}

func (c *Coordinator) complete(ctx context.Context, id string) {
	if c.journal == nil || id == "" {
		return
	}
	if err := c.journal.Complete(ctx, id); err != nil {
		c.log.Warn().Err(err).Str("intent_id", id).Msg("failed to complete ledger intent")
	}
}

func (c *Coordinator) markFailed(ctx context.Context, id string) {
	if c.journal == nil || id == "" {
		return
	}
	if err := c.journal.MarkFailed(ctx, id); err != nil {
		c.log.Warn().Err(err).Str("intent_id", id).Msg("failed to mark ledger intent failed")
	}
}
