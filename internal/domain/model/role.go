package model

// 呼び出し元のロール（JWTのroleクレームと一致させる）
type Role string

const (
	RoleBuyer    Role = "BUYER"
	RoleMerchant Role = "MERCHANT"
	RoleAdmin    Role = "ADMIN"
)

// 既知のロールかどうか
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleMerchant, RoleAdmin:
		return true
	default:
		return false
	}
}
