package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-escrow/internal/api"
	"github.com/sanosuguru/go-ticket-escrow/internal/application"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/event"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// EventRequest はイベント作成・更新の共通リクエスト
// 必須項目や価格の検証はドメインで行う
type EventRequest struct {
	Name         string `json:"name" example:"Tokyo Dome Live 2026"`
	Description  string `json:"description" example:"年末スペシャルライブ"`
	ImageURL     string `json:"image_url" example:"https://example.com/live.png"`
	StartDate    string `json:"start_date" example:"2026-12-31 18:00"`
	FreePrice    int64  `json:"free_price" example:"0"`
	RegularPrice int64  `json:"regular_price" example:"100"`
	VIPPrice     int64  `json:"vip_price" example:"300"`
	EndAt        string `json:"end_at" validate:"required" example:"2026-12-31T21:00:00+09:00"`
	Capacity     int    `json:"capacity" example:"500"`
}

func (r *EventRequest) toInput(c echo.Context) (application.CreateEventInput, error) {
	caller, err := callerOf(c)
	if err != nil {
		return application.CreateEventInput{}, err
	}
	endAt, err := time.Parse(time.RFC3339, r.EndAt)
	if err != nil {
		return application.CreateEventInput{}, echo.NewHTTPError(http.StatusBadRequest, "終了時刻の形式が不正です")
	}
	return application.CreateEventInput{
		Caller:       caller,
		Name:         r.Name,
		Description:  r.Description,
		ImageURL:     r.ImageURL,
		StartDate:    r.StartDate,
		FreePrice:    r.FreePrice,
		RegularPrice: r.RegularPrice,
		VIPPrice:     r.VIPPrice,
		EndAt:        endAt,
		Capacity:     r.Capacity,
	}, nil
}

type EventResponse struct {
	ID            int64  `json:"id" example:"0"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ImageURL      string `json:"image_url"`
	StartDate     string `json:"start_date"`
	Owner         string `json:"owner" example:"0x1111111111111111111111111111111111111111"`
	FreePrice     int64  `json:"free_price"`
	RegularPrice  int64  `json:"regular_price"`
	VIPPrice      int64  `json:"vip_price"`
	EndAt         string `json:"end_at"`
	Capacity      int    `json:"capacity"`
	SoldCount     int    `json:"sold_count"`
	CreatedAt     string `json:"created_at"`
	Deleted       bool   `json:"deleted"`
	PaidOut       bool   `json:"paid_out"`
	Refunded      bool   `json:"refunded"`
	TicketsMinted bool   `json:"tickets_minted"`
	PublicDisplay bool   `json:"public_display"`
}

func toEventResponse(e *event.Event) *EventResponse {
	return &EventResponse{
		ID:            e.ID,
		Name:          e.Name,
		Description:   e.Description,
		ImageURL:      e.ImageURL,
		StartDate:     e.StartDate,
		Owner:         e.Owner.Hex(),
		FreePrice:     e.FreePrice,
		RegularPrice:  e.RegularPrice,
		VIPPrice:      e.VIPPrice,
		EndAt:         e.EndAt.Format(time.RFC3339),
		Capacity:      e.Capacity,
		SoldCount:     e.SoldCount,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		Deleted:       e.Deleted,
		PaidOut:       e.PaidOut,
		Refunded:      e.Refunded,
		TicketsMinted: e.TicketsMinted,
		PublicDisplay: e.PublicDisplay,
	}
}

func toEventResponses(events []*event.Event) []*EventResponse {
	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = toEventResponse(e)
	}
	return responses
}

func (h *EventHandler) bind(c echo.Context) (application.CreateEventInput, error) {
	var req EventRequest
	if err := c.Bind(&req); err != nil {
		return application.CreateEventInput{}, echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return application.CreateEventInput{}, err
	}
	return req.toInput(c)
}

// Create godoc
// @Summary イベントを作成
// @Description 登録済みの呼び出し元をオーナーとしてイベントを作成します
// @Tags events
// @Accept json
// @Produce json
// @Param request body EventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 403 {object} api.ErrorResponse "アイデンティティ未登録"
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	input, err := h.bind(c)
	if err != nil {
		return err
	}
	e, err := h.eventService.CreateEvent(c.Request().Context(), input)
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetByID godoc
// @Summary イベントを取得
// @Tags events
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return err
	}
	e, err := h.eventService.GetEvent(c.Request().Context(), id)
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// List godoc
// @Summary 削除されていない全イベントを取得
// @Tags events
// @Produce json
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.eventService.ListEvents(c.Request().Context())
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

// ListPublic godoc
// @Summary 公開中のイベントを取得
// @Tags events
// @Produce json
// @Success 200 {array} EventResponse
// @Router /events/public [get]
func (h *EventHandler) ListPublic(c echo.Context) error {
	events, err := h.eventService.ListPublicEvents(c.Request().Context())
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

// ListMine godoc
// @Summary 呼び出し元が所有するイベントを取得
// @Tags events
// @Produce json
// @Success 200 {array} EventResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /me/events [get]
func (h *EventHandler) ListMine(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	events, err := h.eventService.ListOwnedBy(c.Request().Context(), caller)
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

// Update godoc
// @Summary イベントを更新
// @Description オーナーのみが説明・価格・日時・定員を更新できます
// @Tags events
// @Accept json
// @Produce json
// @Param id path int true "イベントID"
// @Param request body EventRequest true "イベント情報"
// @Success 200 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return err
	}
	input, err := h.bind(c)
	if err != nil {
		return err
	}
	e, err := h.eventService.UpdateEvent(c.Request().Context(), application.UpdateEventInput{
		ID:               id,
		CreateEventInput: input,
	})
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Delete godoc
// @Summary イベントを削除
// @Description 全チケットを返金してからイベントを削除します（オーナーまたは管理者）
// @Tags events
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "精算済み"
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return err
	}
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	e, err := h.eventService.DeleteEvent(c.Request().Context(), id, caller)
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// ToggleVisibility godoc
// @Summary 公開状態を切り替え
// @Tags events
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id}/visibility [post]
func (h *EventHandler) ToggleVisibility(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return err
	}
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	e, err := h.eventService.ToggleVisibility(c.Request().Context(), id, caller)
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}
