package usecase

import (
	"context"
	"strings"
	"time"

	"marketplace/internal/apperr"
	"marketplace/internal/authz"
	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

type AddressDTO struct {
	ID         int64     `json:"id"`
	Recipient  string    `json:"recipient"`
	Phone      string    `json:"phone"`
	PostalCode string    `json:"postal_code"`
	Region     string    `json:"region"`
	City       string    `json:"city"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2"`
	IsDefault  bool      `json:"is_default"`
	Formatted  string    `json:"formatted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type AddressInput struct {
	Recipient  string
	Phone      string
	PostalCode string
	Region     string
	City       string
	Line1      string
	Line2      string
}

func (in AddressInput) trimmed() AddressInput {
	return AddressInput{
		Recipient:  strings.TrimSpace(in.Recipient),
		Phone:      strings.TrimSpace(in.Phone),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Region:     strings.TrimSpace(in.Region),
		City:       strings.TrimSpace(in.City),
		Line1:      strings.TrimSpace(in.Line1),
		Line2:      strings.TrimSpace(in.Line2),
	}
}

func (in AddressInput) validate() error {
	if in.Recipient == "" || in.PostalCode == "" || in.Region == "" || in.City == "" || in.Line1 == "" {
		return apperr.Validation("recipient, postal_code, region, city and line1 are required")
	}
	return nil
}

// 購入者の住所帳
type AddressUsecase struct {
	tx        repo.TransactionManager
	addresses repo.AddressRepository
	clock     Clock
}

func NewAddressUsecase(tx repo.TransactionManager, addresses repo.AddressRepository, clock Clock) *AddressUsecase {
	return &AddressUsecase{tx: tx, addresses: addresses, clock: clock}
}

func (u *AddressUsecase) List(ctx context.Context, caller authz.Caller) ([]AddressDTO, error) {
	if err := authz.RequireRole(caller, model.RoleBuyer); err != nil {
		return nil, err
	}

	list, err := u.addresses.ListByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, errDB
	}
	out := make([]AddressDTO, 0, len(list))
	for _, a := range list {
		out = append(out, toAddressDTO(a))
	}
	return out, nil
}

// 最初の住所は自動でdefault
func (u *AddressUsecase) Create(ctx context.Context, caller authz.Caller, in AddressInput) (AddressDTO, error) {
	if err := authz.RequireRole(caller, model.RoleBuyer); err != nil {
		return AddressDTO{}, err
	}
	in = in.trimmed()
	if err := in.validate(); err != nil {
		return AddressDTO{}, err
	}

	existing, err := u.addresses.ListByUserID(ctx, caller.UserID)
	if err != nil {
		return AddressDTO{}, errDB
	}

	now := u.clock.Now()
	created, err := u.addresses.Create(ctx, model.Address{
		UserID:     caller.UserID,
		Recipient:  in.Recipient,
		Phone:      in.Phone,
		PostalCode: in.PostalCode,
		Region:     in.Region,
		City:       in.City,
		Line1:      in.Line1,
		Line2:      in.Line2,
		IsDefault:  len(existing) == 0,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return AddressDTO{}, errDB
	}
	return toAddressDTO(created), nil
}

func (u *AddressUsecase) Update(ctx context.Context, caller authz.Caller, addressID int64, in AddressInput) (AddressDTO, error) {
	a, err := u.owned(ctx, caller, addressID)
	if err != nil {
		return AddressDTO{}, err
	}
	in = in.trimmed()
	if err := in.validate(); err != nil {
		return AddressDTO{}, err
	}

	a.Recipient, a.Phone, a.PostalCode = in.Recipient, in.Phone, in.PostalCode
	a.Region, a.City, a.Line1, a.Line2 = in.Region, in.City, in.Line1, in.Line2
	a.UpdatedAt = u.clock.Now()

	if err := u.addresses.Update(ctx, a); err != nil {
		return AddressDTO{}, lookupErr(err, "address")
	}
	return toAddressDTO(a), nil
}

// 注文は住所の文字列をコピー済みなので消しても影響しない
func (u *AddressUsecase) Delete(ctx context.Context, caller authz.Caller, addressID int64) error {
	if _, err := u.owned(ctx, caller, addressID); err != nil {
		return err
	}
	if err := u.addresses.Delete(ctx, addressID); err != nil {
		return lookupErr(err, "address")
	}
	return nil
}

func (u *AddressUsecase) SetDefault(ctx context.Context, caller authz.Caller, addressID int64) error {
	if _, err := u.owned(ctx, caller, addressID); err != nil {
		return err
	}

	//user内でdefaultは1つ
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Addresses().SetDefault(ctx, caller.UserID, addressID); err != nil {
			return lookupErr(err, "address")
		}
		return nil
	})
	return asAppErr(err)
}

//所有チェック（他人の住所なら403）
func (u *AddressUsecase) owned(ctx context.Context, caller authz.Caller, addressID int64) (model.Address, error) {
	if err := authz.RequireRole(caller, model.RoleBuyer); err != nil {
		return model.Address{}, err
	}
	if addressID <= 0 {
		return model.Address{}, apperr.Validation("invalid id")
	}
	a, err := u.addresses.FindByID(ctx, addressID)
	if err != nil {
		return model.Address{}, lookupErr(err, "address")
	}
	if a.UserID != caller.UserID {
		return model.Address{}, apperr.Forbidden("address belongs to another user")
	}
	return a, nil
}

func toAddressDTO(a model.Address) AddressDTO {
	return AddressDTO{
		ID:         a.ID,
		Recipient:  a.Recipient,
		Phone:      a.Phone,
		PostalCode: a.PostalCode,
		Region:     a.Region,
		City:       a.City,
		Line1:      a.Line1,
		Line2:      a.Line2,
		IsDefault:  a.IsDefault,
		Formatted:  a.Format(),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}
