package domain

import (
	"context"
	"time"
)

type AddressLabel string

const (
	LabelHome  AddressLabel = "home"
	LabelWork  AddressLabel = "work"
	LabelOther AddressLabel = "other"
)

func (l AddressLabel) IsValid() bool {
	switch l {
	case LabelHome, LabelWork, LabelOther:
		return true
	default:
		return false
	}
}

type Address struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"-"`
	FullName   string       `json:"full_name"`
	Label      AddressLabel `json:"label"`
	Street     string       `json:"street"`
	City       string       `json:"city"`
	PostalCode string       `json:"postal_code"`
	Country    string       `json:"country"`
	Phone      string       `json:"phone"`
	IsDefault  bool         `json:"is_default"`
	CreatedAt  time.Time    `json:"created_at"`
}

type AddressPatch struct {
	FullName   *string       `json:"full_name"`
	Label      *AddressLabel `json:"label"`
	Street     *string       `json:"street"`
	City       *string       `json:"city"`
	PostalCode *string       `json:"postal_code"`
	Country    *string       `json:"country"`
	Phone      *string       `json:"phone"`
	IsDefault  *bool         `json:"is_default"`
}

// Apply copies the set fields of p onto a.
func (p AddressPatch) Apply(a *Address) {
	if p.FullName != nil {
		a.FullName = *p.FullName
	}
	if p.Label != nil {
		a.Label = *p.Label
	}
	if p.Street != nil {
		a.Street = *p.Street
	}
	if p.City != nil {
		a.City = *p.City
	}
	if p.PostalCode != nil {
		a.PostalCode = *p.PostalCode
	}
	if p.Country != nil {
		a.Country = *p.Country
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
	if p.IsDefault != nil {
		a.IsDefault = *p.IsDefault
	}
}

// AddressRepository implementations must keep at most one default address
// per user: SaveAddress and SetDefaultAddress clear the flag on the user's
// other addresses in the same transaction that sets it.
type AddressRepository interface {
	SaveAddress(ctx context.Context, address *Address) (*Address, error)
	GetAddress(ctx context.Context, userID, id int64) (*Address, error)
	ListAddresses(ctx context.Context, userID int64) ([]Address, error)
	DeleteAddress(ctx context.Context, userID, id int64) error
	SetDefaultAddress(ctx context.Context, userID, id int64) (*Address, error)
}
