package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/event"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-ticket-escrow/internal/infrastructure/redis"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/clock"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/metrics"
)

const (
	availabilityCacheTTL = 30 * time.Second
)

// AvailabilityCache はイベントの残りチケット数のキャッシュ
type AvailabilityCache interface {
	GetAvailableCount(ctx context.Context, eventID int64) (int, error)
	SetAvailableCount(ctx context.Context, eventID int64, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, eventID int64) error
}

type TicketService struct {
	runner     operationRunner
	ticketRepo ticket.Repository
	eventRepo  event.Repository
	escrowRepo escrow.Repository
	cache      AvailabilityCache
	clock      clock.Clock
}

func NewTicketService(
	tm transaction.Manager,
	locker Locker,
	tr ticket.Repository,
	er event.Repository,
	esr escrow.Repository,
	cache AvailabilityCache,
	clk clock.Clock,
) *TicketService {
	return &TicketService{
		runner:     operationRunner{txManager: tm, locker: locker},
		ticketRepo: tr,
		eventRepo:  er,
		escrowRepo: esr,
		cache:      cache,
		clock:      clk,
	}
}

type BuyTicketInput struct {
	EventID   int64
	Tier      ticket.Tier
	PaidValue int64
	Caller    common.Address
}

// BuyTicket はチケットを購入する。支払い金額は全額を預かり残高に加える
func (s *TicketService) BuyTicket(ctx context.Context, input BuyTicketInput) (*ticket.Ticket, error) {
	if !input.Tier.IsValid() {
		return nil, ticket.ErrInvalidTier
	}
	if input.PaidValue < 0 {
		return nil, ticket.ErrNegativePayment
	}

	var (
		bought  *ticket.Ticket
		balance int64
	)
	err := s.runner.run(ctx, func(ctx context.Context) error {
		st, err := s.escrowRepo.GetState(ctx)
		if err != nil {
			return err
		}
		e, err := s.eventRepo.GetByID(ctx, input.EventID)
		if err != nil {
			return err
		}
		if e.Deleted {
			return event.ErrEventNotFound
		}

		// 精算済み・完売の判定が支払い金額の判定より先
		if err := e.RecordSale(); err != nil {
			return err
		}
		price, err := input.Tier.Charge(e, input.PaidValue)
		if err != nil {
			return err
		}

		nextID, err := s.ticketRepo.CountByEventID(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("チケット採番に失敗: %w", err)
		}
		t := ticket.NewTicket(e.ID, nextID, input.Caller, input.Tier, price, input.PaidValue, s.clock.Now())
		if err := s.ticketRepo.Append(ctx, t); err != nil {
			return err
		}
		if err := s.eventRepo.Update(ctx, e); err != nil {
			return err
		}
		if err := st.Credit(input.PaidValue); err != nil {
			return err
		}
		if err := s.escrowRepo.SaveBalance(ctx, st.Balance); err != nil {
			return err
		}

		bought = t
		balance = st.Balance
		return nil
	})
	if err != nil {
		metrics.Get().TicketPurchase(input.Tier.String(), "failed")
		return nil, err
	}

	metrics.Get().TicketPurchase(input.Tier.String(), "success")
	metrics.Get().SetEscrowBalance(balance)
	logger.Debug("チケットを購入しました",
		zap.Int64("event_id", bought.EventID),
		zap.Int64("ticket_id", bought.ID),
		zap.String("tier", bought.Tier.String()),
	)
	s.invalidateCache(ctx, input.EventID)
	return bought, nil
}

// ListTickets はイベントのチケットを返す。存在しないイベントは空のリスト
func (s *TicketService) ListTickets(ctx context.Context, eventID int64) ([]*ticket.Ticket, error) {
	return s.ticketRepo.ListByEventID(ctx, eventID)
}

// ListPurchasedEvents は呼び出し元がチケットを持つイベントをID順に1回ずつ返す
// 論理削除済みのイベントも含む
func (s *TicketService) ListPurchasedEvents(ctx context.Context, caller common.Address) ([]*event.Event, error) {
	ids, err := s.ticketRepo.ListEventIDsByOwner(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.ListByIDs(ctx, ids)
}

// CountAvailable は残りチケット数を返す
func (s *TicketService) CountAvailable(ctx context.Context, eventID int64) (int, error) {
	// キャッシュから取得を試みる
	if s.cache != nil {
		count, err := s.cache.GetAvailableCount(ctx, eventID)
		if err == nil {
			logger.Debug("キャッシュヒット", zap.Int64("event_id", eventID), zap.Int("count", count))
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	e, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if e.Deleted {
		return 0, event.ErrEventNotFound
	}
	count := e.Available()

	if s.cache != nil {
		if cacheErr := s.cache.SetAvailableCount(ctx, eventID, count, availabilityCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	return count, nil
}

func (s *TicketService) invalidateCache(ctx context.Context, eventID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.Error(err))
	}
}
