package model

import "time"

type AuditAction string

const (
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//出品者申請を承認/却下した操作。
	AuditActionDecideApplication AuditAction = "DECIDE_SELLER_APPLICATION"
	//出品を削除した操作。
	AuditActionDeleteItem AuditAction = "DELETE_ITEM"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder       AuditResourceType = "order"
	AuditResourceApplication AuditResourceType = "seller_application"
	AuditResourceItem        AuditResourceType = "item"
)

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  string            `gorm:"type:varchar(36);not null;index" json:"actor_user_id"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   string            `gorm:"type:varchar(36);not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
