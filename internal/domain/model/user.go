package model

import "time"

type Role string

const (
	RoleBuyer  Role = "Buyer"
	RoleSeller Role = "Seller"
	RoleAdmin  Role = "Admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// 登録ユーザー。匿名セッションは行を持たない。
type User struct {
	ID           string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'Buyer'" json:"role"`
	TokenVersion int    `gorm:"not null;default:0" json:"-"`

	//プロフィール
	Name     string `gorm:"type:varchar(255)" json:"name"`
	Phone    string `gorm:"type:varchar(30)" json:"phone"`
	Address  string `gorm:"type:text" json:"address"`
	Course   string `gorm:"type:varchar(255)" json:"course"`
	City     string `gorm:"type:varchar(100)" json:"city"`
	Postcode string `gorm:"type:varchar(20)" json:"postcode"`
	State    string `gorm:"type:varchar(100)" json:"state"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Identity はリクエストごとに解決された呼び出し元。
// 匿名のときは Email が空で Role も持たない。
type Identity struct {
	UserID    string
	Email     string
	Role      Role
	Anonymous bool
}

func (i *Identity) HasEmail() bool {
	return i != nil && !i.Anonymous && i.Email != ""
}
