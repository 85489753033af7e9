package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Store предоставляет все методы запросов и выполнение их в транзакции.
type Store interface {
	Querier
	ExecTx(ctx context.Context, fn func(*Queries) error) error
}

// SQLStore — реализация Store поверх database/sql.
type SQLStore struct {
	db *sql.DB
	*Queries
}

// NewStore создаёт Store поверх открытого соединения с БД.
func NewStore(db *sql.DB) Store {
	return &SQLStore{
		db:      db,
		Queries: New(db),
	}
}

// ExecTx выполняет fn внутри одной транзакции базы данных.
// При ошибке fn транзакция откатывается целиком.
func (store *SQLStore) ExecTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	q := New(tx)
	if err := fn(q); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rollback err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}
