// Package dbtest はテスト用のインメモリDBを用意する。
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"marketplace/internal/infra/db"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// New はテストごとに独立したSQLiteを作ってマイグレーションする
func New(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)

	gdb, err := db.OpenSQLite(dsn, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return gdb
}
