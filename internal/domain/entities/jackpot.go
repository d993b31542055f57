package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JackpotStatus is the sales state of a jackpot
type JackpotStatus string

const (
	JackpotStatusActive JackpotStatus = "active"
	JackpotStatusClosed JackpotStatus = "closed"
	JackpotStatusDrawn  JackpotStatus = "drawn"
)

// Jackpot is a draw that tickets are sold for
type Jackpot struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	TicketPrice      decimal.Decimal `json:"ticketPrice"`
	Status           JackpotStatus   `json:"status"`
	DrawAt           time.Time       `json:"drawAt"`
	TotalTicketsSold int64           `json:"totalTicketsSold"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// AcceptsTickets reports whether tickets can still be bought at now
func (j *Jackpot) AcceptsTickets(now time.Time) bool {
	return j.Status == JackpotStatusActive && now.Before(j.DrawAt)
}

// TicketStatus is set by the draw process
type TicketStatus string

const (
	TicketStatusActive TicketStatus = "active"
	TicketStatusWon    TicketStatus = "won"
	TicketStatusLost   TicketStatus = "lost"
)

// Ticket is one number a user holds in a jackpot
type Ticket struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	JackpotID      uuid.UUID       `json:"jackpotId"`
	TransactionID  uuid.UUID       `json:"transactionId"`
	TicketNumber   string          `json:"ticketNumber"`
	PurchaseAmount decimal.Decimal `json:"purchaseAmount"`
	Status         TicketStatus    `json:"status"`
	IsWinner       bool            `json:"isWinner"`
	WinningAmount  decimal.Decimal `json:"winningAmount"`
	CreatedAt      time.Time       `json:"createdAt"`
}
