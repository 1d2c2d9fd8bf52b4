package jwtauth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Secrets is the jwt_secrets repository. GetByKey implements the resolver
// loading contract: a missing record is (nil, nil), never an error.
type Secrets interface {
	repository.Repository[*JWTSecret]

	GetByKey(ctx context.Context, key string) (*JWTSecret, error)
	GetByKeyTx(ctx context.Context, tx bun.IDB, key string) (*JWTSecret, error)
	Provision(ctx context.Context, record *JWTSecret) (*JWTSecret, error)
	ProvisionTx(ctx context.Context, tx bun.IDB, record *JWTSecret) (*JWTSecret, error)
}

type secrets struct {
	repository.Repository[*JWTSecret]
	db *bun.DB
}

var _ Secrets = (*secrets)(nil)

func NewSecretsRepository(db *bun.DB) Secrets {
	repo := repository.NewRepository[*JWTSecret](db, repository.ModelHandlers[*JWTSecret]{
		NewRecord: func() *JWTSecret { return &JWTSecret{} },
		GetID: func(s *JWTSecret) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			return s.ID
		},
		SetID: func(s *JWTSecret, id uuid.UUID) {
			if s != nil {
				s.ID = id
			}
		},
		GetIdentifier: func() string {
			return "key"
		},
	})

	return &secrets{
		Repository: repo,
		db:         db,
	}
}

func (s *secrets) GetByKey(ctx context.Context, key string) (*JWTSecret, error) {
	return s.GetByKeyTx(ctx, s.db, key)
}

func (s *secrets) GetByKeyTx(ctx context.Context, tx bun.IDB, key string) (*JWTSecret, error) {
	record := &JWTSecret{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func (s *secrets) Provision(ctx context.Context, record *JWTSecret) (*JWTSecret, error) {
	return s.ProvisionTx(ctx, s.db, record)
}

// ProvisionTx inserts a credential, deriving the deterministic ID and default
// algorithm when unset.
func (s *secrets) ProvisionTx(ctx context.Context, tx bun.IDB, record *JWTSecret) (*JWTSecret, error) {
	if record.ID == uuid.Nil {
		seeded := NewJWTSecret(record.Key, record.ConsumerID)
		record.ID = seeded.ID
		record.Key = seeded.Key
	}
	if record.Algorithm == "" {
		record.Algorithm = DefaultAlgorithm
	}
	return s.CreateTx(ctx, tx, record)
}
