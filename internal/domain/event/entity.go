package event

import (
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Event はイベントエンティティを表す
type Event struct {
	ID            int64
	Name          string
	Description   string
	ImageURL      string
	StartDate     string // 表示用の文字列
	Owner         common.Address
	FreePrice     int64
	RegularPrice  int64
	VIPPrice      int64
	EndAt         time.Time
	Capacity      int
	SoldCount     int
	CreatedAt     time.Time
	Deleted       bool
	PaidOut       bool
	Refunded      bool
	TicketsMinted bool
	PublicDisplay bool
}

// Details はイベントの更新可能な項目
type Details struct {
	Name         string
	Description  string
	ImageURL     string
	StartDate    string
	FreePrice    int64
	RegularPrice int64
	VIPPrice     int64
	EndAt        time.Time
	Capacity     int
}

// NewEvent は新しいイベントを作成する
func NewEvent(owner common.Address, d Details, now time.Time) *Event {
	e := &Event{
		Owner:         owner,
		CreatedAt:     now,
		PublicDisplay: true,
	}
	e.apply(d)
	return e
}

// Validate は作成・更新時の入力を検証する
func (d Details) Validate(now time.Time) error {
	if d.Name == "" {
		return ErrEventNameRequired
	}
	if d.Description == "" {
		return ErrDescriptionRequired
	}
	if d.ImageURL == "" {
		return ErrImageURLRequired
	}
	if d.StartDate == "" {
		return ErrStartDateRequired
	}
	if d.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if d.FreePrice < 0 || d.RegularPrice < 0 || d.VIPPrice < 0 {
		return ErrNegativePrice
	}
	if d.FreePrice == 0 && d.RegularPrice == 0 && d.VIPPrice == 0 {
		return ErrPriceRequired
	}
	if !d.EndAt.After(now) {
		return ErrInvalidEndTime
	}
	return nil
}

// Update は説明・価格・日時・定員を上書きする。販売数とフラグは変更しない
func (e *Event) Update(d Details, now time.Time) error {
	if e.PaidOut {
		return ErrAlreadyPaidOut
	}
	if err := d.Validate(now); err != nil {
		return err
	}
	if d.Capacity < e.SoldCount {
		return ErrCapacityBelowSold
	}
	e.apply(d)
	return nil
}

func (e *Event) apply(d Details) {
	e.Name = d.Name
	e.Description = d.Description
	e.ImageURL = d.ImageURL
	e.StartDate = d.StartDate
	e.FreePrice = d.FreePrice
	e.RegularPrice = d.RegularPrice
	e.VIPPrice = d.VIPPrice
	e.EndAt = d.EndAt
	e.Capacity = d.Capacity
}

// IsOwner は呼び出し元がオーナーかを返す
func (e *Event) IsOwner(caller common.Address) bool {
	return e.Owner == caller
}

// IsSettled は返金または支払いが完了しているかを返す
func (e *Event) IsSettled() bool {
	return e.PaidOut || e.Refunded
}

// IsSoldOut は定員に達しているかを返す
func (e *Event) IsSoldOut() bool {
	return e.SoldCount >= e.Capacity
}

// Available は残りのチケット数を返す
func (e *Event) Available() int {
	if e.IsSoldOut() {
		return 0
	}
	return e.Capacity - e.SoldCount
}

// HasEnded は終了時刻を過ぎているかを返す
func (e *Event) HasEnded(now time.Time) bool {
	return now.After(e.EndAt)
}

// ToggleVisibility は公開状態を反転する
func (e *Event) ToggleVisibility() {
	e.PublicDisplay = !e.PublicDisplay
}

// RecordSale は販売数を1増やす
func (e *Event) RecordSale() error {
	if e.IsSettled() {
		return e.settledError()
	}
	if e.IsSoldOut() {
		return ErrSoldOut
	}
	e.SoldCount++
	return nil
}

// CheckDeletable は削除（返金）可能かを検証する
func (e *Event) CheckDeletable() error {
	switch {
	case e.PaidOut:
		return ErrAlreadyPaidOut
	case e.Refunded:
		return ErrAlreadyRefunded
	case e.Deleted:
		return ErrAlreadyDeleted
	}
	return nil
}

// MarkRefunded は返金済みにする
func (e *Event) MarkRefunded() error {
	if e.IsSettled() {
		return e.settledError()
	}
	e.Refunded = true
	return nil
}

// MarkDeleted は論理削除する。返金済みであることが前提
func (e *Event) MarkDeleted() error {
	if !e.Refunded {
		return ErrNotRefunded
	}
	e.Deleted = true
	return nil
}

// MarkTicketsMinted はクレデンシャル発行済みにする
func (e *Event) MarkTicketsMinted() {
	e.TicketsMinted = true
}

// MarkPaidOut は支払い済みにする
func (e *Event) MarkPaidOut() error {
	if e.IsSettled() {
		return e.settledError()
	}
	if !e.TicketsMinted {
		return ErrTicketsNotMinted
	}
	e.PaidOut = true
	return nil
}

func (e *Event) settledError() error {
	if e.PaidOut {
		return ErrAlreadyPaidOut
	}
	return ErrAlreadyRefunded
}

// Revenue は支払い対象の売上を返す
// 通常価格 × 販売数で計算する（ティア別の実売価格は使わない）
func (e *Event) Revenue() (int64, error) {
	if e.SoldCount > 0 && e.RegularPrice > math.MaxInt64/int64(e.SoldCount) {
		return 0, ErrRevenueOverflow
	}
	return e.RegularPrice * int64(e.SoldCount), nil
}
