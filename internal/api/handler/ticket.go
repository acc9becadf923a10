package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-escrow/internal/api"
	"github.com/sanosuguru/go-ticket-escrow/internal/application"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/ticket"
)

type TicketHandler struct {
	service TicketServiceInterface
}

func NewTicketHandler(s TicketServiceInterface) *TicketHandler {
	return &TicketHandler{service: s}
}

type BuyTicketRequest struct {
	Tier      string `json:"tier" validate:"required" example:"regular"`
	PaidValue int64  `json:"paid_value" validate:"gte=0" example:"100"`
}

type TicketResponse struct {
	ID               int64     `json:"id" example:"0"`
	EventID          int64     `json:"event_id" example:"0"`
	Owner            string    `json:"owner" example:"0x2222222222222222222222222222222222222222"`
	Tier             string    `json:"tier" example:"regular"`
	Price            int64     `json:"price" example:"100"`
	PaidValue        int64     `json:"paid_value" example:"100"`
	PurchasedAt      time.Time `json:"purchased_at"`
	Refunded         bool      `json:"refunded"`
	CredentialMinted bool      `json:"credential_minted"`
	CredentialID     *uint64   `json:"credential_id,omitempty"`
}

func toTicketResponse(t *ticket.Ticket) TicketResponse {
	resp := TicketResponse{
		ID: t.ID, EventID: t.EventID, Owner: t.Owner.Hex(),
		Tier: t.Tier.String(), Price: t.Price, PaidValue: t.PaidValue,
		PurchasedAt: t.PurchasedAt, Refunded: t.Refunded, CredentialMinted: t.CredentialMinted,
	}
	if t.CredentialMinted {
		id := t.CredentialID
		resp.CredentialID = &id
	}
	return resp
}

type AvailableCountResponse struct {
	EventID   int64 `json:"event_id" example:"0"`
	Available int   `json:"available" example:"42"`
}

// Buy godoc
// @Summary チケットを購入
// @Description 支払い金額は全額預かり残高に加算されます
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path int true "イベントID"
// @Param request body BuyTicketRequest true "購入情報"
// @Success 201 {object} TicketResponse
// @Failure 400 {object} api.ErrorResponse "支払い不足・不正なティア"
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "完売・精算済み"
// @Router /events/{id}/tickets [post]
func (h *TicketHandler) Buy(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	var req BuyTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	tier, err := ticket.ParseTier(req.Tier)
	if err != nil {
		return api.ToHTTPError(err)
	}
	t, err := h.service.BuyTicket(c.Request().Context(), application.BuyTicketInput{
		EventID: eventID, Tier: tier, PaidValue: req.PaidValue, Caller: caller,
	})
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toTicketResponse(t))
}

// ListByEvent godoc
// @Summary イベントのチケット一覧を取得
// @Description 存在しないイベントの場合は空の一覧を返します
// @Tags tickets
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {array} TicketResponse
// @Router /events/{id}/tickets [get]
func (h *TicketHandler) ListByEvent(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.Request().Context(), eventID)
	if err != nil {
		return api.ToHTTPError(err)
	}
	resp := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = toTicketResponse(t)
	}
	return c.JSON(http.StatusOK, resp)
}

// CountAvailable godoc
// @Summary 残り枚数を取得
// @Tags tickets
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {object} AvailableCountResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id}/tickets/available/count [get]
func (h *TicketHandler) CountAvailable(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}
	count, err := h.service.CountAvailable(c.Request().Context(), eventID)
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, AvailableCountResponse{EventID: eventID, Available: count})
}

// ListPurchasedEvents godoc
// @Summary 呼び出し元がチケットを購入したイベントを取得
// @Description 削除済みのイベントも含みます
// @Tags tickets
// @Produce json
// @Success 200 {array} EventResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /me/purchased-events [get]
func (h *TicketHandler) ListPurchasedEvents(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	events, err := h.service.ListPurchasedEvents(c.Request().Context(), caller)
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}
