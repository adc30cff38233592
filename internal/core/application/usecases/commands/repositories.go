// Package commands contains the operations that change workflow state.
// Every command is built through a validating constructor and handled in
// one transaction: validate, begin, mutate aggregates, persist, commit.
package commands

import (
	"context"

	"fleet/internal/core/ports"
)

// Narrow Unit of Work views for handlers that touch a single aggregate type.
// The assignment workflow itself works on the full ports.UnitOfWork.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// LoadRepoFactory provides the load repository within a transaction.
	LoadRepoFactory interface {
		LoadRepository() ports.LoadRepository
	}

	// ResourceRepoFactory provides the registry within a transaction.
	ResourceRepoFactory interface {
		ResourceRepository() ports.ResourceRepository
	}

	// LoadUoW manages transactions for load-only operations.
	LoadUoW interface {
		TxManager
		LoadRepoFactory
	}

	// LoadUoWFactory creates new load unit of work instances.
	LoadUoWFactory interface {
		Create() LoadUoW
	}

	// ResourceUoW manages transactions for registry-only operations.
	ResourceUoW interface {
		TxManager
		ResourceRepoFactory
	}

	// ResourceUoWFactory creates new registry unit of work instances.
	ResourceUoWFactory interface {
		Create() ResourceUoW
	}
)
