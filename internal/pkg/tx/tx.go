package tx

import (
	"context"
	"fmt"
)

type key string

const KeyTx = key("tx")

type DbRepo interface {
	WithTx(ctx context.Context, cb func(ctx context.Context) error) error
}

type Tx struct {
	DbRepo DbRepo
}

// WithRepo binds repo to ctx so TxExecute can open transactions on it.
func WithRepo(ctx context.Context, repo DbRepo) context.Context {
	return context.WithValue(ctx, KeyTx, Tx{DbRepo: repo})
}

func TxExecute(ctx context.Context, cb func(ctx context.Context) error) error {
	t, ok := ctx.Value(KeyTx).(Tx)
	if !ok || t.DbRepo == nil {
		return fmt.Errorf("failed to get transaction repo from context")
	}
	return t.DbRepo.WithTx(ctx, cb)
}
