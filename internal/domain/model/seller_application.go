package model

import "time"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationApproved || s == ApplicationRejected
}

// 出品者申請。承認されたときだけ申請者のroleがSellerになる。
type SellerApplication struct {
	ID     string `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID string `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Email  string `gorm:"type:varchar(255);not null" json:"email"`

	Phone         string `gorm:"type:varchar(30);not null" json:"phone"`
	Address       string `gorm:"type:text;not null" json:"address"`
	AccountNumber string `gorm:"type:varchar(50)" json:"account_number"`
	Description   string `gorm:"type:text" json:"description"`

	Status    ApplicationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	DecidedBy *string           `gorm:"type:varchar(36)" json:"decided_by,omitempty"`
	DecidedAt *time.Time        `json:"decided_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
