package ticket

import (
	"strings"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/event"
)

// Tier はチケットの種別を表す
type Tier uint8

const (
	TierFree Tier = iota + 1
	TierRegular
	TierVIP
)

// ParseTier は文字列からティアを取得する
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(s) {
	case "free":
		return TierFree, nil
	case "regular":
		return TierRegular, nil
	case "vip":
		return TierVIP, nil
	}
	return 0, ErrInvalidTier
}

func (t Tier) String() string {
	switch t {
	case TierFree:
		return "free"
	case TierRegular:
		return "regular"
	case TierVIP:
		return "vip"
	}
	return "unknown"
}

// IsValid は定義済みのティアかを返す
func (t Tier) IsValid() bool {
	return t >= TierFree && t <= TierVIP
}

// Charge は支払い金額を検証し、チケットに記録する価格を返す
// 無料ティアは支払い金額に関係なくイベントの無料価格を記録する
func (t Tier) Charge(e *event.Event, paidValue int64) (int64, error) {
	if paidValue < 0 {
		return 0, ErrNegativePayment
	}
	switch t {
	case TierFree:
		return e.FreePrice, nil
	case TierRegular:
		if paidValue < e.RegularPrice {
			return 0, ErrInsufficientPayment
		}
		return e.RegularPrice, nil
	case TierVIP:
		if paidValue < e.VIPPrice {
			return 0, ErrInsufficientPayment
		}
		return e.VIPPrice, nil
	}
	return 0, ErrInvalidTier
}
