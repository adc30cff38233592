// Package load provides the Load aggregate: a shipment moving from an origin
// to a destination, together with its delivery-stage state machine and the
// append-only stage history.
//
// The package includes:
//   - Load: the aggregate root holding identity, route, schedule, financial
//     terms, the current stage and the resources bound to it
//   - Stage: the closed delivery-stage enum and its reachability rules
//   - HistoryEntry: one audit record per stage transition
//   - Terms and Completion: the financial inputs and the delivery stamp
//     computed from them
//
// Key business rules:
//   - Every transition appends a HistoryEntry with actor and timestamp
//   - The assigned driver is set iff the stage is ASSIGNED..COMPLETED
//   - ASSIGNED -> CREATED (bounce back) is the only backward move
//   - CANCELLED is reachable from every non-terminal stage
//   - Reaching DELIVERED stamps total distance and driver pay when the
//     inputs are known
//
// A Load references drivers, vehicles and assignments by identifier only.
package load
