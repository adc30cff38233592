package memory

import (
	"context"
	"fmt"
	"time"

	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/domain/model/notification"
	"fleet/internal/core/domain/model/resource"
	"fleet/internal/pkg/errs"
)

func staleVersion(entity string, id any, stored, got int) error {
	return errs.NewConflictError(entity, id, fmt.Sprintf("stale version: stored %d, got %d", stored, got))
}

type LoadRepository struct{ uow *UnitOfWork }

func (r *LoadRepository) Add(ctx context.Context, aggregate *load.Load) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.do(ctx, func(v *view) error {
		if _, ok := v.load(aggregate.ID()); ok {
			return errs.NewConflictError("load", aggregate.ID(), "already exists")
		}
		for _, other := range v.allLoads() {
			if other.Number == aggregate.Number() {
				return errs.NewConflictError("load", aggregate.ID(), "number "+other.Number+" is taken")
			}
		}
		v.loads[aggregate.ID()] = aggregate.Snapshot()
		return nil
	})
}

func (r *LoadRepository) Update(ctx context.Context, aggregate *load.Load) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.do(ctx, func(v *view) error {
		stored, ok := v.load(aggregate.ID())
		if !ok {
			return errs.NewObjectNotFoundError("load", aggregate.ID().String())
		}
		if stored.Version != aggregate.Version() {
			return staleVersion("load", aggregate.ID(), stored.Version, aggregate.Version())
		}
		s := aggregate.Snapshot()
		s.Version++
		v.loads[aggregate.ID()] = s
		return nil
	})
}

func (r *LoadRepository) Get(ctx context.Context, id kernel.UUID) (*load.Load, error) {
	var found *load.Load
	err := r.uow.do(ctx, func(v *view) error {
		s, ok := v.load(id)
		if !ok {
			return errs.NewObjectNotFoundError("load", id.String())
		}
		var err error
		found, err = load.RestoreLoad(s)
		return err
	})
	return found, err
}

type AssignmentRepository struct{ uow *UnitOfWork }

func (r *AssignmentRepository) Add(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.do(ctx, func(v *view) error {
		if _, ok := v.assignment(aggregate.ID()); ok {
			return errs.NewConflictError("assignment", aggregate.ID(), "already exists")
		}
		if aggregate.State() == assignment.Pending {
			for _, other := range v.allAssignments() {
				if other.State == assignment.Pending && other.LoadID.IsEqual(aggregate.LoadID()) {
					return errs.NewConflictError("load", aggregate.LoadID(), "already has a pending assignment")
				}
			}
		}
		v.assignments[aggregate.ID()] = aggregate.Snapshot()
		return nil
	})
}

func (r *AssignmentRepository) Update(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.do(ctx, func(v *view) error {
		stored, ok := v.assignment(aggregate.ID())
		if !ok {
			return errs.NewObjectNotFoundError("assignment", aggregate.ID().String())
		}
		if stored.Version != aggregate.Version() {
			return staleVersion("assignment", aggregate.ID(), stored.Version, aggregate.Version())
		}
		s := aggregate.Snapshot()
		s.Version++
		v.assignments[aggregate.ID()] = s
		return nil
	})
}

func (r *AssignmentRepository) Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	var found *assignment.Assignment
	err := r.uow.do(ctx, func(v *view) error {
		s, ok := v.assignment(id)
		if !ok {
			return errs.NewObjectNotFoundError("assignment", id.String())
		}
		var err error
		found, err = assignment.RestoreAssignment(s)
		return err
	})
	return found, err
}

func (r *AssignmentRepository) GetPendingByLoad(ctx context.Context, loadID kernel.UUID) (*assignment.Assignment, error) {
	var found *assignment.Assignment
	err := r.uow.do(ctx, func(v *view) error {
		for _, s := range v.allAssignments() {
			if s.State == assignment.Pending && s.LoadID.IsEqual(loadID) {
				var err error
				found, err = assignment.RestoreAssignment(s)
				return err
			}
		}
		return errs.NewObjectNotFoundError("pending assignment of load", loadID.String())
	})
	return found, err
}

func (r *AssignmentRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*assignment.Assignment, error) {
	var found []*assignment.Assignment
	err := r.uow.do(ctx, func(v *view) error {
		expired := make([]assignment.Snapshot, 0)
		for _, s := range v.allAssignments() {
			if isExpired(s, now) {
				expired = append(expired, s)
			}
		}
		sortByExpiry(expired)
		if limit > 0 && len(expired) > limit {
			expired = expired[:limit]
		}

		found = make([]*assignment.Assignment, 0, len(expired))
		for _, s := range expired {
			a, err := assignment.RestoreAssignment(s)
			if err != nil {
				return err
			}
			found = append(found, a)
		}
		return nil
	})
	return found, err
}

type ResourceRepository struct{ uow *UnitOfWork }

func (r *ResourceRepository) Add(ctx context.Context, aggregate *resource.Resource) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.do(ctx, func(v *view) error {
		if _, ok := v.resource(aggregate.ID()); ok {
			return errs.NewConflictError("resource", aggregate.ID(), "already registered")
		}
		v.resources[aggregate.ID()] = aggregate.Snapshot()
		return nil
	})
}

func (r *ResourceRepository) Update(ctx context.Context, aggregate *resource.Resource) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.do(ctx, func(v *view) error {
		stored, ok := v.resource(aggregate.ID())
		if !ok {
			return errs.NewObjectNotFoundError("resource", aggregate.ID().String())
		}
		if stored.Version != aggregate.Version() {
			return staleVersion("resource", aggregate.ID(), stored.Version, aggregate.Version())
		}
		s := aggregate.Snapshot()
		s.Version++
		v.resources[aggregate.ID()] = s
		return nil
	})
}

func (r *ResourceRepository) Get(ctx context.Context, id kernel.UUID) (*resource.Resource, error) {
	found, err := r.GetMany(ctx, []kernel.UUID{id})
	if err != nil {
		return nil, err
	}
	return found[0], nil
}

func (r *ResourceRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*resource.Resource, error) {
	var found []*resource.Resource
	err := r.uow.do(ctx, func(v *view) error {
		found = make([]*resource.Resource, 0, len(ids))
		for _, id := range ids {
			s, ok := v.resource(id)
			if !ok {
				return errs.NewObjectNotFoundError("resource", id.String())
			}
			res, err := resource.RestoreResourceSnapshot(s)
			if err != nil {
				return err
			}
			found = append(found, res)
		}
		return nil
	})
	return found, err
}

func (r *ResourceRepository) ListHeldBy(ctx context.Context, loadID kernel.UUID) ([]*resource.Resource, error) {
	var found []*resource.Resource
	err := r.uow.do(ctx, func(v *view) error {
		for _, s := range v.allResources() {
			if s.HolderLoadID == nil || !s.HolderLoadID.IsEqual(loadID) {
				continue
			}
			res, err := resource.RestoreResourceSnapshot(s)
			if err != nil {
				return err
			}
			found = append(found, res)
		}
		return nil
	})
	return found, err
}

type NotificationRepository struct{ uow *UnitOfWork }

func (r *NotificationRepository) Add(ctx context.Context, mirror *notification.Mirror) error {
	if err := mirror.Validate(); err != nil {
		return err
	}
	return r.uow.do(ctx, func(v *view) error {
		if _, ok := v.mirror(mirror.Key()); ok {
			return errs.NewConflictError("notification", mirror.Key(), "mirror already exists")
		}
		v.mirrors[mirror.Key()] = mirror.Snapshot()
		return nil
	})
}

func (r *NotificationRepository) Update(ctx context.Context, mirror *notification.Mirror) error {
	if err := mirror.Validate(); err != nil {
		return err
	}
	return r.uow.do(ctx, func(v *view) error {
		stored, ok := v.mirror(mirror.Key())
		if !ok {
			return errs.NewObjectNotFoundError("notification", mirror.Key().String())
		}
		if stored.Version != mirror.Version() {
			return staleVersion("notification", mirror.Key(), stored.Version, mirror.Version())
		}
		s := mirror.Snapshot()
		s.Version++
		v.mirrors[mirror.Key()] = s
		return nil
	})
}

func (r *NotificationRepository) GetByKey(ctx context.Context, key notification.Key) (*notification.Mirror, error) {
	var found *notification.Mirror
	err := r.uow.do(ctx, func(v *view) error {
		s, ok := v.mirror(key)
		if !ok {
			return errs.NewObjectNotFoundError("notification", key.String())
		}
		var err error
		found, err = notification.RestoreMirror(s)
		return err
	})
	return found, err
}
