package jwtauth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Secrets() Secrets
	Consumers() Consumers
}

type mngr struct {
	db        *bun.DB
	secrets   Secrets
	consumers Consumers
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:        db,
		secrets:   NewSecretsRepository(db),
		consumers: NewConsumersRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.secrets == nil {
		return errors.New("repository secrets should be initialized")
	}

	if m.consumers == nil {
		return errors.New("repository consumers should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Secrets() Secrets {
	return m.secrets
}

func (m mngr) Consumers() Consumers {
	return m.consumers
}
