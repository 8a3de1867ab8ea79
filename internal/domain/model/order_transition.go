package model

import "time"

// 名前付き遷移で許可する組み合わせ。
// 管理者の直接変更(override)はこの表を通らない。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPendingPayment: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:           {OrderStatusShipped},
	OrderStatusShipped:        {OrderStatusCompleted},
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// 終端状態（これ以上名前付き遷移が無い）
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// ステータス変更と同時に書くタイムスタンプ（nilは書かない）
type StatusStamps struct {
	PaidAt    *time.Time
	ShippedAt *time.Time
}

// 支払い→paid_at、発送→shipped_at。それ以外の遷移は何も書かない。
// 管理者の直接変更でも同じ規則を使う。
func StampsFor(to OrderStatus, now time.Time) StatusStamps {
	var st StatusStamps
	switch to {
	case OrderStatusPaid:
		st.PaidAt = &now
	case OrderStatusShipped:
		st.ShippedAt = &now
	}
	return st
}
