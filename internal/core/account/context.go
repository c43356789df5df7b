package account

import "context"

type ctxKey string

const contextAccountKey ctxKey = "account"

func WithContext(ctx context.Context, a *Account) context.Context {
	return context.WithValue(ctx, contextAccountKey, a)
}

func FromContext(ctx context.Context) (*Account, bool) {
	a, ok := ctx.Value(contextAccountKey).(*Account)
	return a, ok && a != nil
}
