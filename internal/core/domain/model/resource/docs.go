// Package resource models Resource Registry entries: one per driver and one
// per vehicle (truck or trailer), tracking whether the resource can be offered
// on a new load.
//
// Availability follows the three-phase holding protocol:
//
//	AVAILABLE ──TryReserve──> RESERVED ──Commit──> COMMITTED
//	    ^                        │                    │
//	    └────────Release─────────┴────────────────────┘
//
// plus AVAILABLE <──> UNAVAILABLE for drivers off duty or vehicles in the shop.
// holderLoadID is set exactly while the resource is RESERVED or COMMITTED.
package resource
