// Package ports defines the contracts between the workflow core and its
// infrastructure: repositories bound to a UnitOfWork, the clock and the event
// sink. Adapters under internal/adapters implement them; tests substitute
// in-memory fakes.
package ports
