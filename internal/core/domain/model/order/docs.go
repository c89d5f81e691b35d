// Package order provides the Order aggregate of the tracking core.
//
// The package includes:
//   - Order: identity, parties, delivery details and the cached current stage
//   - DeliveryDetails: destination address, contact and preferred time window
//   - DisputeState: the dispute lifecycle flag carried by every order
//
// Key business rules:
//   - Buyer and seller are different users; the amount is positive
//   - Only the seller or the external courier system may transition an order
//   - CurrentStageCode is a cache of the newest ledger entry and changes only through ApplyStage
//   - Every persisted change bumps Version, which guards concurrent writers
package order
