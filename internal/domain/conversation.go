package domain

import "time"

// Conversation pairs the borrower and the owner for one booking. Created in
// the same transaction as the booking, never deleted.
type Conversation struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	BookingID int64     `json:"booking_id" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Conversation) TableName() string { return "conversations" }

type ConversationParticipant struct {
	ConversationID int64 `json:"conversation_id" gorm:"primaryKey"`
	UserID         int64 `json:"user_id" gorm:"primaryKey;index"`
}

func (ConversationParticipant) TableName() string { return "conversation_participants" }

type Message struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	ConversationID int64     `json:"conversation_id" gorm:"index;not null"`
	SenderID       int64     `json:"sender_id" gorm:"index"`
	Body           string    `json:"body" gorm:"type:text"`
	System         bool      `json:"system"` // emitted by the engine, not typed by a user
	CreatedAt      time.Time `json:"created_at"`
}

func (Message) TableName() string { return "messages" }
