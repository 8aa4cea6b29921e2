package avro

// SnapshotVersion is written into every snapshot record.
const SnapshotVersion = 1

// CartSnapshotSchema describes the whole-cart snapshot: the ordered lines.
const CartSnapshotSchema = `{
	"type": "record",
	"name": "CartSnapshot",
	"namespace": "shopcart.snapshot",
	"fields": [
		{"name": "version", "type": "int"},
		{"name": "saved_at", "type": "long"},
		{"name": "lines", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "CartLine",
				"fields": [
					{"name": "product_id", "type": "string"},
					{"name": "quantity", "type": "int"}
				]
			}
		}}
	]
}`

// LedgerSnapshotSchema describes the whole-ledger snapshot. Prices are decimal
// strings so no precision is lost; placed_at is unix milliseconds.
const LedgerSnapshotSchema = `{
	"type": "record",
	"name": "LedgerSnapshot",
	"namespace": "shopcart.snapshot",
	"fields": [
		{"name": "version", "type": "int"},
		{"name": "saved_at", "type": "long"},
		{"name": "orders", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "Order",
				"fields": [
					{"name": "id", "type": "string"},
					{"name": "buyer", "type": "string"},
					{"name": "placed_at", "type": "long"},
					{"name": "items", "type": {
						"type": "array",
						"items": {
							"type": "record",
							"name": "OrderItem",
							"fields": [
								{"name": "product_id", "type": "string"},
								{"name": "name", "type": "string"},
								{"name": "quantity", "type": "int"},
								{"name": "unit_price", "type": "string"}
							]
						}
					}}
				]
			}
		}}
	]
}`
