// Package ordernumber は人が読める注文番号を作る。
package ordernumber

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// 接頭辞のあとに続く英数字の長さ
const SuffixLen = 16

type Generator struct {
	prefix string
}

func New(prefix string) *Generator {
	return &Generator{prefix: strings.ToUpper(prefix)}
}

// 例: ORD3F9A0C17B2D4E6A8
// UUIDv4のバージョン/バリアントのビットを除いた8バイトを使う。
func (g *Generator) NewOrderNo() string {
	u := uuid.New()
	b := make([]byte, 0, 8)
	b = append(b, u[0:6]...)
	b = append(b, u[7], u[9])
	return g.prefix + strings.ToUpper(hex.EncodeToString(b))
}
