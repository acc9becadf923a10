package escrow

import (
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// State はプラットフォーム全体の預かり残高と手数料率を表す
type State struct {
	Balance       int64
	CommissionPct int // 0〜100、作成後は変更しない
}

// NewState は残高0の状態を作成する
func NewState(commissionPct int) (*State, error) {
	if err := ValidateCommission(commissionPct); err != nil {
		return nil, err
	}
	return &State{CommissionPct: commissionPct}, nil
}

// ValidateCommission は手数料率を検証する
func ValidateCommission(pct int) error {
	if pct < 0 || pct > 100 {
		return ErrInvalidCommission
	}
	return nil
}

// Credit は残高を増やす。残高が int64 を超える場合はエラー
func (s *State) Credit(amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if amount > math.MaxInt64-s.Balance {
		return ErrBalanceOverflow
	}
	s.Balance += amount
	return nil
}

// Debit は残高を減らす。残高不足の場合はエラー
func (s *State) Debit(amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if amount > s.Balance {
		return ErrInsufficientBalance
	}
	s.Balance -= amount
	return nil
}

// Split は売上をオーナー受取額と手数料に分割する
func (s *State) Split(revenue int64) (ownerShare, fee int64) {
	// revenue * pct / 100 を桁あふれさせずに切り捨てで計算する
	pct := int64(s.CommissionPct)
	fee = revenue/100*pct + revenue%100*pct/100
	return revenue - fee, fee
}

// Reason は送金の理由
type Reason string

const (
	ReasonRefund      Reason = "refund"
	ReasonPayoutOwner Reason = "payout_owner"
	ReasonPayoutFee   Reason = "payout_fee"
)

// TransferStatus は送金の配信状態
type TransferStatus string

const (
	TransferStatusPending TransferStatus = "pending"
	TransferStatusSent    TransferStatus = "sent"
	TransferStatusFailed  TransferStatus = "failed"
)

// Transfer は精算で発生した送金を表す
// 精算と同じトランザクションで記録され、配信はワーカーが行う
type Transfer struct {
	ID        int64
	Recipient common.Address
	Amount    int64
	Reason    Reason
	EventID   int64
	TicketID  *int64
	Status    TransferStatus
	TxHash    string
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTransfer は配信待ちの送金を作成する
func NewTransfer(recipient common.Address, amount int64, reason Reason, eventID int64, ticketID *int64, now time.Time) (*Transfer, error) {
	if recipient == (common.Address{}) {
		return nil, ErrInvalidRecipient
	}
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	return &Transfer{
		Recipient: recipient,
		Amount:    amount,
		Reason:    reason,
		EventID:   eventID,
		TicketID:  ticketID,
		Status:    TransferStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MarkSent は配信済みにする
func (t *Transfer) MarkSent(txHash string, now time.Time) {
	t.Status = TransferStatusSent
	t.TxHash = txHash
	t.Attempts++
	t.LastError = ""
	t.UpdatedAt = now
}

// MarkAttemptFailed は配信失敗を記録する。maxAttempts に達したら failed にする
func (t *Transfer) MarkAttemptFailed(cause error, maxAttempts int, now time.Time) {
	t.Attempts++
	t.LastError = cause.Error()
	if t.Attempts >= maxAttempts {
		t.Status = TransferStatusFailed
	}
	t.UpdatedAt = now
}
