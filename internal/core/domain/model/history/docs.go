// Package history models the append-only status ledger of an order.
//
// An Entry is created once, persisted once and never changed afterwards.
// Entries of one order form a total order by their ledger sequence number,
// which the store assigns on append.
package history
