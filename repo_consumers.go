package jwtauth

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Consumers is the consumers repository. Identifiers may be a consumer id or
// a username; a missing record is (nil, nil).
type Consumers interface {
	repository.Repository[*Consumer]

	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Consumer, error)
	GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*Consumer, error)
}

type consumers struct {
	repository.Repository[*Consumer]
	db *bun.DB
}

var _ Consumers = (*consumers)(nil)

func NewConsumersRepository(db *bun.DB) Consumers {
	repo := repository.NewRepository[*Consumer](db, repository.ModelHandlers[*Consumer]{
		NewRecord: func() *Consumer { return &Consumer{} },
		GetID: func(c *Consumer) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Consumer, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &consumers{
		Repository: repo,
		db:         db,
	}
}

func (c *consumers) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Consumer, error) {
	return c.GetByIdentifierTx(ctx, c.db, identifier, criteria...)
}

func (c *consumers) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, _ ...repository.SelectCriteria) (*Consumer, error) {
	identifier = strings.TrimSpace(identifier)

	columns := []string{"username"}
	if _, err := uuid.Parse(identifier); err == nil {
		columns = []string{"id", "username"}
	}

	for _, column := range columns {
		record := &Consumer{}
		err := tx.NewSelect().
			Model(record).
			Where("?TableAlias."+column+" = ?", identifier).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}
		return record, nil
	}

	return nil, nil
}
