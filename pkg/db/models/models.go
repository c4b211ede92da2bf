package models

// All lists every persisted model, in dependency order, for SQLite AutoMigrate.
func All() []any {
	return []any{
		&InventoryRecord{},
		&CartLineItem{},
		&DeliveryOption{},
		&OutboxEvent{},
	}
}
