// Package authz は呼び出し元(Caller)と、注文・店舗へのアクセス可否を扱う。
package authz

import (
	"context"

	"marketplace/internal/domain/model"
)

// 検証済みの呼び出し元。UserIDが0なら匿名。
type Caller struct {
	UserID int64
	Role   model.Role
}

var Anonymous = Caller{}

func (c Caller) IsAnonymous() bool {
	return c.UserID <= 0 || !c.Role.Valid()
}

func (c Caller) Is(role model.Role) bool {
	return !c.IsAnonymous() && c.Role == role
}

type callerKey struct{}

// HTTP境界で一度だけ載せる
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// 無ければAnonymous
func FromContext(ctx context.Context) Caller {
	if c, ok := ctx.Value(callerKey{}).(Caller); ok {
		return c
	}
	return Anonymous
}
