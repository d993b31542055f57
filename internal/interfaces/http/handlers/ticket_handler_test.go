package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/usecases"
)

type ticketServiceStub struct {
	err      error
	numbers  []string
	category entities.WalletCategory
}

func (s *ticketServiceStub) PurchaseTickets(_ context.Context, _, _ uuid.UUID, numbers []string, category entities.WalletCategory) (*usecases.TicketPurchase, error) {
	s.numbers, s.category = numbers, category
	if s.err != nil {
		return nil, s.err
	}
	tickets := make([]*entities.Ticket, 0, len(numbers))
	for _, n := range numbers {
		tickets = append(tickets, &entities.Ticket{TicketNumber: n})
	}
	return &usecases.TicketPurchase{Tickets: tickets}, nil
}

func (s *ticketServiceStub) ListTickets(_ context.Context, _, _ uuid.UUID) ([]*entities.Ticket, error) {
	return []*entities.Ticket{{TicketNumber: "007"}}, s.err
}

type walletServiceStub struct {
	erased uuid.UUID
	err    error
}

func (s *walletServiceStub) EnsureWallets(_ context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	return []*entities.Wallet{
		{UserID: userID, Category: entities.WalletCategoryDeposit},
		{UserID: userID, Category: entities.WalletCategoryWinnings},
		{UserID: userID, Category: entities.WalletCategoryTicketBonus},
	}, s.err
}

func (s *walletServiceStub) EraseAccount(_ context.Context, userID uuid.UUID) error {
	s.erased = userID
	return s.err
}

func TestPurchaseTickets(t *testing.T) {
	svc := &ticketServiceStub{}
	h := &TicketHandler{ticketUsecase: svc}
	r := newRouter(false)
	r.POST("/jackpots/:id/tickets", h.PurchaseTickets)
	r.GET("/jackpots/:id/tickets", h.ListTickets)
	path := "/jackpots/" + uuid.New().String() + "/tickets"

	w := doJSON(r, http.MethodPost, path, `{"numbers":["007","042"],"walletCategory":"ticket_bonus"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, []string{"007", "042"}, svc.numbers)
	assert.Equal(t, entities.WalletCategoryTicketBonus, svc.category)

	w = doJSON(r, http.MethodPost, path, `{"numbers":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = fmt.Errorf("%w: 042", domainerrors.ErrTicketsAlreadyTaken)
	w = doJSON(r, http.MethodPost, path, `{"numbers":["042"]}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "042")

	svc.err = domainerrors.ErrJackpotClosed
	w = doJSON(r, http.MethodPost, path, `{"numbers":["043"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = nil
	w = doJSON(r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "007")
}

func TestWallets(t *testing.T) {
	svc := &walletServiceStub{}
	h := &WalletHandler{walletUsecase: svc}
	r := newRouter(false)
	r.GET("/wallets", h.ListWallets)
	r.DELETE("/admin/users/:id", h.EraseAccount)

	w := doJSON(r, http.MethodGet, "/wallets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["items"], 3)

	target := uuid.New()
	w = doJSON(r, http.MethodDelete, "/admin/users/"+target.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, target, svc.erased)

	svc.err = domainerrors.ErrNotFound
	w = doJSON(r, http.MethodDelete, "/admin/users/"+target.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
