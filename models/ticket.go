package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketStatus string

const (
	TicketOpen   TicketStatus = "open"
	TicketClosed TicketStatus = "closed"
)

// Ticket is one conversation with an external contact. Once closed it is only
// ever read.
type Ticket struct {
	ID                string       `json:"id" gorm:"primaryKey;size:36"`
	Contact           string       `json:"contact" gorm:"not null;index"`
	Status            TicketStatus `json:"status" gorm:"not null;default:'open';index"`
	CreatedAt         time.Time    `json:"created_at"`
	LastInteractionAt time.Time    `json:"last_interaction_at" gorm:"not null"`
	ClosedAt          *time.Time   `json:"closed_at,omitempty"`
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
