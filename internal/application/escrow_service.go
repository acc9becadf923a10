package application

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/apperror"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/credential"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/event"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/transaction"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/clock"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/metrics"
)

// EscrowService は預かり残高の管理と返金・支払いの精算を行う
type EscrowService struct {
	runner     operationRunner
	escrowRepo escrow.Repository
	eventRepo  event.Repository
	ticketRepo ticket.Repository
	issuer     credential.Issuer
	admin      common.Address
	clock      clock.Clock
}

// NewEscrowService は EscrowService を作成する
func NewEscrowService(
	tm transaction.Manager,
	locker Locker,
	er escrow.Repository,
	evr event.Repository,
	tr ticket.Repository,
	issuer credential.Issuer,
	admin common.Address,
	clk clock.Clock,
) *EscrowService {
	return &EscrowService{
		runner:     operationRunner{txManager: tm, locker: locker},
		escrowRepo: er,
		eventRepo:  evr,
		ticketRepo: tr,
		issuer:     issuer,
		admin:      admin,
		clock:      clk,
	}
}

// Init はエスクロー状態を作成する。既に作成済みなら既存の手数料率を維持する
func (s *EscrowService) Init(ctx context.Context, commissionPct int) (*escrow.State, error) {
	st, err := escrow.NewState(commissionPct)
	if err != nil {
		return nil, err
	}
	current, err := s.escrowRepo.Init(ctx, st)
	if err != nil {
		return nil, err
	}
	if current.CommissionPct != commissionPct {
		logger.Warn("手数料率は初回の設定値が使われます",
			zap.Int("configured", commissionPct),
			zap.Int("stored", current.CommissionPct),
		)
	}
	metrics.Get().SetEscrowBalance(current.Balance)
	return current, nil
}

// Admin はプラットフォーム管理者のアドレスを返す
func (s *EscrowService) Admin() common.Address {
	return s.admin
}

// Balance は現在の預かり残高と手数料率を返す
func (s *EscrowService) Balance(ctx context.Context) (*escrow.State, error) {
	return s.escrowRepo.GetState(ctx)
}

// ListTransfers はイベントで発生した送金を返す
func (s *EscrowService) ListTransfers(ctx context.Context, eventID int64) ([]*escrow.Transfer, error) {
	return s.escrowRepo.ListTransfersByEventID(ctx, eventID)
}

// PayTo は送金を記録する。呼び出し元のトランザクションがロールバックされると送金も取り消される
// 失敗は必ず TransferFailed 種別のエラーとして返す
func (s *EscrowService) PayTo(ctx context.Context, recipient common.Address, amount int64, reason escrow.Reason, eventID int64, ticketID *int64) (*escrow.Transfer, error) {
	t, err := escrow.NewTransfer(recipient, amount, reason, eventID, ticketID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.escrowRepo.EnqueueTransfer(ctx, t); err != nil {
		return nil, apperror.Wrap(apperror.ErrTransferFailed, err)
	}
	return t, nil
}

// RefundResult は返金の結果
type RefundResult struct {
	Event     *event.Event
	Refunded  int64
	Balance   int64 // 返金後の預かり残高
	Transfers []*escrow.Transfer
}

// Serialize はエスクロー状態を読み、トランザクション終了までエスクロー行をロックする
func (s *EscrowService) Serialize(ctx context.Context) error {
	_, err := s.escrowRepo.GetState(ctx)
	return err
}

// Refund はイベントの未返金チケットを全て返金し、イベントを返金済みにする
// イベント削除のトランザクション内から呼ばれる前提で、操作ロックは取らない。
// 途中で失敗した場合は呼び出し元のトランザクションごと取り消される
func (s *EscrowService) Refund(ctx context.Context, eventID int64) (*RefundResult, error) {
	st, err := s.escrowRepo.GetState(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.IsSettled() {
		return nil, e.CheckDeletable()
	}

	tickets, err := s.ticketRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}

	result := &RefundResult{Event: e}
	for _, t := range tickets {
		if t.Refunded {
			continue
		}
		ticketID := t.ID
		transfer, err := s.PayTo(ctx, t.Owner, t.Price, escrow.ReasonRefund, eventID, &ticketID)
		if err != nil {
			return nil, err
		}
		if err := st.Debit(t.Price); err != nil {
			return nil, err
		}
		if err := t.MarkRefunded(); err != nil {
			return nil, err
		}
		if err := s.ticketRepo.Update(ctx, t); err != nil {
			return nil, err
		}
		result.Refunded += t.Price
		result.Transfers = append(result.Transfers, transfer)
	}

	if err := e.MarkRefunded(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	if err := s.escrowRepo.SaveBalance(ctx, st.Balance); err != nil {
		return nil, err
	}
	result.Balance = st.Balance
	return result, nil
}

// PayoutResult は支払いの結果
type PayoutResult struct {
	Event         *event.Event
	Revenue       int64
	OwnerShare    int64
	Fee           int64
	Balance       int64 // 支払い後の預かり残高
	CredentialIDs []uint64
	Transfers     []*escrow.Transfer
}

// Payout は終了したイベントの売上をオーナーと管理者に支払い、チケットごとにクレデンシャルを発行する
func (s *EscrowService) Payout(ctx context.Context, eventID int64, caller common.Address) (*PayoutResult, error) {
	var result *PayoutResult
	err := s.runner.run(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.payout(ctx, eventID, caller)
		return err
	})
	if err != nil {
		metrics.Get().Settlement("payout", "failed")
		logger.Warn("支払いに失敗しました", zap.Int64("event_id", eventID), zap.Error(err))
		return nil, err
	}

	metrics.Get().Settlement("payout", "success")
	metrics.Get().SetEscrowBalance(result.Balance)
	logger.Info("支払いが完了しました",
		zap.Int64("event_id", eventID),
		zap.Int64("revenue", result.Revenue),
		zap.Int64("owner_share", result.OwnerShare),
		zap.Int64("fee", result.Fee),
		zap.Int("credentials", len(result.CredentialIDs)),
	)
	return result, nil
}

func (s *EscrowService) payout(ctx context.Context, eventID int64, caller common.Address) (*PayoutResult, error) {
	st, err := s.escrowRepo.GetState(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	switch {
	case e.PaidOut:
		return nil, event.ErrAlreadyPaidOut
	case e.Refunded:
		return nil, event.ErrAlreadyRefunded
	case !e.HasEnded(now):
		return nil, event.ErrEventOngoing
	case !e.IsOwner(caller) && caller != s.admin:
		return nil, event.ErrNotOwnerOrAdmin
	}

	tickets, err := s.ticketRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}

	result := &PayoutResult{Event: e}
	for _, t := range tickets {
		id, err := s.issuer.Issue(ctx, t.Owner, eventID, t.ID, now)
		if err != nil {
			return nil, fmt.Errorf("クレデンシャル発行に失敗: %w", err)
		}
		if err := t.MarkCredentialMinted(id); err != nil {
			return nil, err
		}
		if err := s.ticketRepo.Update(ctx, t); err != nil {
			return nil, err
		}
		result.CredentialIDs = append(result.CredentialIDs, id)
	}
	e.MarkTicketsMinted()

	if result.Revenue, err = e.Revenue(); err != nil {
		return nil, err
	}
	result.OwnerShare, result.Fee = st.Split(result.Revenue)
	if err := st.Debit(result.Revenue); err != nil {
		return nil, err
	}

	ownerTransfer, err := s.PayTo(ctx, e.Owner, result.OwnerShare, escrow.ReasonPayoutOwner, eventID, nil)
	if err != nil {
		return nil, err
	}
	feeTransfer, err := s.PayTo(ctx, s.admin, result.Fee, escrow.ReasonPayoutFee, eventID, nil)
	if err != nil {
		return nil, err
	}
	result.Transfers = []*escrow.Transfer{ownerTransfer, feeTransfer}

	if err := e.MarkPaidOut(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	if err := s.escrowRepo.SaveBalance(ctx, st.Balance); err != nil {
		return nil, err
	}
	result.Balance = st.Balance
	return result, nil
}
