package domain

import (
	"encoding/json"
	"time"
)

type NotificationType string

const (
	NotifBookingRequested NotificationType = "booking_requested" // Owner: новый запрос на аренду
	NotifBookingApproved  NotificationType = "booking_approved"  // Borrower: запрос одобрен
	NotifBookingRejected  NotificationType = "booking_rejected"  // Borrower: запрос отклонён
	NotifBookingExpired   NotificationType = "booking_expired"   // Borrower: запрос истёк
	NotifBookingConfirmed NotificationType = "booking_confirmed" // Owner: оплата получена
	NotifBookingDisputed  NotificationType = "booking_disputed"  // Counterparty: открыт спор
	NotifRefundIssued     NotificationType = "refund_issued"     // Borrower: возврат оформлен
	NotifNewMessage       NotificationType = "new_message"       // Both: новое сообщение
)

type Notification struct {
	ID        int64            `json:"id" gorm:"primaryKey"`
	UserID    int64            `json:"user_id" gorm:"index;not null"`
	Type      NotificationType `json:"type" gorm:"type:varchar(40)"`
	Title     string           `json:"title"`
	Message   string           `json:"message" gorm:"type:text"`
	Data      json.RawMessage  `json:"data,omitempty" gorm:"type:text"`
	IsRead    bool             `json:"is_read" gorm:"index"`
	CreatedAt time.Time        `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
