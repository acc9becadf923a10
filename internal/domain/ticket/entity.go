package ticket

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Ticket はチケットエンティティを表す
type Ticket struct {
	ID               int64 // イベント内で0から採番
	EventID          int64
	Owner            common.Address
	Tier             Tier
	Price            int64 // 購入時のティア価格
	PaidValue        int64 // 実際に支払われた金額
	PurchasedAt      time.Time
	Refunded         bool
	CredentialMinted bool
	CredentialID     uint64
}

// NewTicket は新しいチケットを作成する
func NewTicket(eventID, id int64, owner common.Address, tier Tier, price, paidValue int64, now time.Time) *Ticket {
	return &Ticket{
		ID:          id,
		EventID:     eventID,
		Owner:       owner,
		Tier:        tier,
		Price:       price,
		PaidValue:   paidValue,
		PurchasedAt: now,
	}
}

// MarkRefunded は返金済みにする
func (t *Ticket) MarkRefunded() error {
	if t.Refunded {
		return ErrAlreadyRefunded
	}
	t.Refunded = true
	return nil
}

// MarkCredentialMinted はクレデンシャル発行済みにする
func (t *Ticket) MarkCredentialMinted(credentialID uint64) error {
	if t.CredentialMinted {
		return ErrCredentialAlreadyMinted
	}
	t.CredentialMinted = true
	t.CredentialID = credentialID
	return nil
}
