// Package kernel provides the value objects shared by every aggregate of the
// order tracking domain.
//
// The package includes:
//   - UUID: identifier of orders, users and products
//   - GeoPoint: an optional WGS84 coordinate attached to a status history entry
//
// Both types are immutable and their zero values fail Validate, so a value
// read from an untrusted source must go through a constructor first.
package kernel
