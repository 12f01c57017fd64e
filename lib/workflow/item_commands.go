package workflow

import (
	"fmt"
	"time"

	"procurement-backend/models"
	dbmodels "procurement-backend/models/db"
)

type ItemPatch struct {
	Description  *string
	Category     *models.ItemCategory
	Quantity     *int
	Unit         *models.ItemUnit
	UnitPrice    *float64
	Supplier     *string
	DeliveryDate *time.Time
	Notes        *string
	Status       *models.ItemStatus
}

func guardItemChange(s State) error {
	if !s.PR.Status.AllowItemChange() {
		return models.InvalidTransitionErrorf("cannot modify items of PR in status %v", s.PR.Status)
	}
	return nil
}

// AddItem appends an item numbered after the highest number ever issued for the request.
func AddItem(s State, item dbmodels.PRItem, actor string, now time.Time) (Outcome, error) {
	if err := requireActor(actor); err != nil {
		return Outcome{}, err
	}
	if err := guardItemChange(s); err != nil {
		return Outcome{}, err
	}
	number := s.nextItemNumber()
	item = prepareItem(item, s.PR.ID, number, actor, now)
	if err := ValidateItem(item); err != nil {
		return Outcome{}, err
	}
	next := s.clone()
	next.Items = append(next.Items, item)
	next.PR.LastItemNumber = number
	touch(&next.PR, actor, now)
	return emit(next, actor, now, dbmodels.ItemAddedPayload{
		ItemNumber:  item.ItemNumber,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Total:       item.Total,
	}), nil
}

func UpdateItem(s State, itemID string, patch ItemPatch, actor string, now time.Time) (Outcome, error) {
	if err := requireActor(actor); err != nil {
		return Outcome{}, err
	}
	if err := guardItemChange(s); err != nil {
		return Outcome{}, err
	}
	idx := s.itemIndex(itemID)
	if idx < 0 {
		return Outcome{}, models.NotFoundErrorf("item %s", itemID)
	}
	next := s.clone()
	item := next.Items[idx]
	changes := []dbmodels.FieldChange{}
	apply("description", &item.Description, patch.Description, &changes)
	apply("category", &item.Category, patch.Category, &changes)
	apply("quantity", &item.Quantity, patch.Quantity, &changes)
	apply("unit", &item.Unit, patch.Unit, &changes)
	apply("unitPrice", &item.UnitPrice, patch.UnitPrice, &changes)
	apply("supplier", &item.Supplier, patch.Supplier, &changes)
	apply("notes", &item.Notes, patch.Notes, &changes)
	apply("status", &item.Status, patch.Status, &changes)
	if patch.DeliveryDate != nil && formatDate(item.DeliveryDate) != formatDate(patch.DeliveryDate) {
		changes = append(changes, dbmodels.FieldChange{
			Field:  "deliveryDate",
			Before: formatDate(item.DeliveryDate),
			After:  formatDate(patch.DeliveryDate),
		})
		deliveryDate := *patch.DeliveryDate
		item.DeliveryDate = &deliveryDate
	}
	item.RecalcTotal()
	if err := ValidateItem(item); err != nil {
		return Outcome{}, err
	}
	item.LastModifiedBy = actor
	item.UpdatedAt = now
	next.Items[idx] = item
	touch(&next.PR, actor, now)
	return emit(next, actor, now, dbmodels.ItemUpdatedPayload{
		ItemNumber:  item.ItemNumber,
		Description: item.Description,
		Changes:     changes,
	}), nil
}

// RemoveItem drops the item for good. Its number is not handed out again.
func RemoveItem(s State, itemID, actor string, now time.Time) (Outcome, error) {
	if err := requireActor(actor); err != nil {
		return Outcome{}, err
	}
	if err := guardItemChange(s); err != nil {
		return Outcome{}, err
	}
	idx := s.itemIndex(itemID)
	if idx < 0 {
		return Outcome{}, models.NotFoundErrorf("item %s", itemID)
	}
	next := s.clone()
	removed := next.Items[idx]
	next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	if removed.ItemNumber > next.PR.LastItemNumber {
		next.PR.LastItemNumber = removed.ItemNumber
	}
	touch(&next.PR, actor, now)
	return emit(next, actor, now, dbmodels.ItemRemovedPayload{
		ItemNumber:  removed.ItemNumber,
		Description: removed.Description,
	}), nil
}

// UpdateItemStatus moves an item between any two item statuses, whatever the PR status.
func UpdateItemStatus(s State, itemID string, status models.ItemStatus, actor string, now time.Time) (Outcome, error) {
	if err := requireActor(actor); err != nil {
		return Outcome{}, err
	}
	if err := status.Validate(); err != nil {
		return Outcome{}, err
	}
	idx := s.itemIndex(itemID)
	if idx < 0 {
		return Outcome{}, models.NotFoundErrorf("item %s", itemID)
	}
	next := s.clone()
	item := next.Items[idx]
	change := dbmodels.FieldChange{
		Field:  "status",
		Before: fmt.Sprint(item.Status),
		After:  fmt.Sprint(status),
	}
	item.Status = status
	item.LastModifiedBy = actor
	item.UpdatedAt = now
	next.Items[idx] = item
	touch(&next.PR, actor, now)
	return emit(next, actor, now, dbmodels.ItemUpdatedPayload{
		ItemNumber:  item.ItemNumber,
		Description: item.Description,
		Changes:     []dbmodels.FieldChange{change},
	}), nil
}
