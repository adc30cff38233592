// Package services provides domain services that orchestrate business operations
// across multiple domain entities in the fleet system. It implements
// workflows that don't naturally belong to a single aggregate root.
//
// The package includes:
//   - Dispatcher: reserves, commits and releases registry entries for an
//     assignment and moves the load and assignment records in step
//
// Domain services are pure: they mutate the aggregates handed to them and
// leave persistence to the caller's unit of work.
package services
