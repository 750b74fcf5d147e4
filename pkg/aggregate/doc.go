// Package aggregate defines the contract shared by tenant-scoped repositories:
// the embeddable Root carrying identity, tenant, version and pending events, the
// generic Repository interface, and the Filter used for collection queries.
//
//	type StockItem struct {
//		aggregate.Root
//		SKU      string `json:"sku"`
//		Quantity int    `json:"quantity"`
//	}
//
// *StockItem satisfies Aggregate through the embedded Root.
package aggregate
