package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-escrow/internal/api"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/escrow"
)

type EscrowHandler struct {
	service EscrowServiceInterface
}

func NewEscrowHandler(s EscrowServiceInterface) *EscrowHandler {
	return &EscrowHandler{service: s}
}

type EscrowResponse struct {
	Balance       int64  `json:"balance" example:"1200"`
	CommissionPct int    `json:"commission_pct" example:"5"`
	Admin         string `json:"admin" example:"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"`
}

type TransferResponse struct {
	ID        int64     `json:"id"`
	Recipient string    `json:"recipient"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason" example:"payout_owner"`
	EventID   int64     `json:"event_id"`
	TicketID  *int64    `json:"ticket_id,omitempty"`
	Status    string    `json:"status" example:"pending"`
	TxHash    string    `json:"tx_hash,omitempty"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toTransferResponses(transfers []*escrow.Transfer) []TransferResponse {
	resp := make([]TransferResponse, len(transfers))
	for i, t := range transfers {
		resp[i] = TransferResponse{
			ID: t.ID, Recipient: t.Recipient.Hex(), Amount: t.Amount,
			Reason: string(t.Reason), EventID: t.EventID, TicketID: t.TicketID,
			Status: string(t.Status), TxHash: t.TxHash, Attempts: t.Attempts,
			LastError: t.LastError, CreatedAt: t.CreatedAt,
		}
	}
	return resp
}

type PayoutResponse struct {
	Event         *EventResponse     `json:"event"`
	Revenue       int64              `json:"revenue" example:"1000"`
	OwnerShare    int64              `json:"owner_share" example:"950"`
	Fee           int64              `json:"fee" example:"50"`
	Balance       int64              `json:"balance" example:"200"`
	CredentialIDs []string           `json:"credential_ids"`
	Transfers     []TransferResponse `json:"transfers"`
}

// Payout godoc
// @Summary 終了したイベントの売上を支払う
// @Description チケットごとにクレデンシャルを発行し、オーナーと管理者に送金します
// @Tags escrow
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {object} PayoutResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "開催中・精算済み"
// @Router /events/{id}/payout [post]
func (h *EscrowHandler) Payout(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	result, err := h.service.Payout(c.Request().Context(), eventID, caller)
	if err != nil {
		return api.ToHTTPError(err)
	}

	ids := make([]string, len(result.CredentialIDs))
	for i, id := range result.CredentialIDs {
		ids[i] = formatUID(id)
	}
	return c.JSON(http.StatusOK, PayoutResponse{
		Event:         toEventResponse(result.Event),
		Revenue:       result.Revenue,
		OwnerShare:    result.OwnerShare,
		Fee:           result.Fee,
		Balance:       result.Balance,
		CredentialIDs: ids,
		Transfers:     toTransferResponses(result.Transfers),
	})
}

// Get godoc
// @Summary 預かり残高と手数料率を取得
// @Tags escrow
// @Produce json
// @Success 200 {object} EscrowResponse
// @Router /escrow [get]
func (h *EscrowHandler) Get(c echo.Context) error {
	st, err := h.service.Balance(c.Request().Context())
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, EscrowResponse{
		Balance:       st.Balance,
		CommissionPct: st.CommissionPct,
		Admin:         h.service.Admin().Hex(),
	})
}

// ListTransfers godoc
// @Summary イベントの送金履歴を取得
// @Tags escrow
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {array} TransferResponse
// @Router /events/{id}/transfers [get]
func (h *EscrowHandler) ListTransfers(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}
	transfers, err := h.service.ListTransfers(c.Request().Context(), eventID)
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toTransferResponses(transfers))
}

func formatUID(v uint64) string {
	return strconv.FormatUint(v, 10)
}
