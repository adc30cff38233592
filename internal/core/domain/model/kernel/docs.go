// Package kernel holds the value objects shared by every fleet aggregate.
//
//   - UUID: identifiers for loads, assignments, resources, organisations and actors
//   - Place: origin and destination descriptors of a load
//   - Money: amounts in minor units, used for load terms and computed driver pay
//   - TimeWindow: the pickup/delivery schedule of a load
//
// Values are immutable and are only valid when built through their
// constructors; zero values fail Validate.
package kernel
