package handler

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-escrow/internal/api"
	"github.com/sanosuguru/go-ticket-escrow/internal/application"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/identity"
)

type IdentityHandler struct {
	service IdentityServiceInterface
}

func NewIdentityHandler(s IdentityServiceInterface) *IdentityHandler {
	return &IdentityHandler{service: s}
}

type SetIdentityRequest struct {
	Name   string `json:"name" example:"Alice"`
	Bio    string `json:"bio" example:"ライブ好き"`
	Handle string `json:"handle" example:"@alice"`
}

type IdentityResponse struct {
	Address   string    `json:"address" example:"0x1111111111111111111111111111111111111111"`
	UID       string    `json:"uid" example:"1234567890123456789"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	Handle    string    `json:"handle"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toIdentityResponse(i *identity.Identity) IdentityResponse {
	return IdentityResponse{
		Address: i.Address.Hex(),
		// uint64 は JSON の数値精度を超えるため文字列で返す
		UID:       formatUID(i.UID),
		Name:      i.Name,
		Bio:       i.Bio,
		Handle:    i.Handle,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// Set godoc
// @Summary アイデンティティを登録・更新
// @Description 初回は登録、以降はプロフィールを上書きします
// @Tags identities
// @Accept json
// @Produce json
// @Param request body SetIdentityRequest true "プロフィール"
// @Success 200 {object} IdentityResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /identity [put]
func (h *IdentityHandler) Set(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	var req SetIdentityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	id, err := h.service.SetIdentity(c.Request().Context(), application.SetIdentityInput{
		Caller: caller, Name: req.Name, Bio: req.Bio, Handle: req.Handle,
	})
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toIdentityResponse(id))
}

// Get godoc
// @Summary アイデンティティを取得
// @Tags identities
// @Produce json
// @Param address path string true "アドレス"
// @Success 200 {object} IdentityResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /identities/{address} [get]
func (h *IdentityHandler) Get(c echo.Context) error {
	raw := c.Param("address")
	if !common.IsHexAddress(raw) {
		return echo.NewHTTPError(http.StatusBadRequest, "アドレスの形式が不正です")
	}
	id, err := h.service.GetIdentity(c.Request().Context(), common.HexToAddress(raw))
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toIdentityResponse(id))
}
