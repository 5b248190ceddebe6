package accounts

import "context"

type Repository interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	GetByName(ctx context.Context, name string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	BumpDataVersion(ctx context.Context, id string) (int64, error)
}
