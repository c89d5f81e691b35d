// Package services provides domain services that combine the stage registry
// with the order ledger.
//
// The package includes:
//   - OrderStateProjector: derives the current stage and progress from the newest ledger entry
//   - TransitionPolicy: decides which stage moves are allowed (permissive or forward-only)
package services
