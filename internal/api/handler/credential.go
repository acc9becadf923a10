package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-escrow/internal/api"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/credential"
)

type CredentialHandler struct {
	service CredentialServiceInterface
}

func NewCredentialHandler(s CredentialServiceInterface) *CredentialHandler {
	return &CredentialHandler{service: s}
}

type CredentialResponse struct {
	ID       string    `json:"id" example:"1"`
	Owner    string    `json:"owner"`
	EventID  int64     `json:"event_id"`
	TicketID int64     `json:"ticket_id"`
	IssuedAt time.Time `json:"issued_at"`
}

// ListMine godoc
// @Summary 呼び出し元が保有するクレデンシャルを取得
// @Tags credentials
// @Produce json
// @Success 200 {array} CredentialResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /me/credentials [get]
func (h *CredentialHandler) ListMine(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	creds, err := h.service.ListOwnedBy(c.Request().Context(), caller)
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toCredentialResponses(creds))
}

func toCredentialResponses(creds []*credential.Credential) []CredentialResponse {
	resp := make([]CredentialResponse, len(creds))
	for i, cr := range creds {
		resp[i] = CredentialResponse{
			ID:       formatUID(cr.ID),
			Owner:    cr.Owner.Hex(),
			EventID:  cr.EventID,
			TicketID: cr.TicketID,
			IssuedAt: cr.IssuedAt,
		}
	}
	return resp
}
