package application

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/event"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/identity"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/transaction"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/clock"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/metrics"
)

// IdentityGate は呼び出し元が登録済みかを判定する
type IdentityGate interface {
	IsRegistered(ctx context.Context, addr common.Address) (bool, error)
}

// Settler はエスクローの決済処理を提供する
// Serialize はトランザクション内でエスクロー行をロックし、決済系の操作と直列化する
type Settler interface {
	Serialize(ctx context.Context) error
	Refund(ctx context.Context, eventID int64) (*RefundResult, error)
}

type EventService struct {
	runner    operationRunner
	eventRepo event.Repository
	identity  IdentityGate
	settler   Settler
	cache     AvailabilityCache
	admin     common.Address
	clock     clock.Clock
}

func NewEventService(
	tm transaction.Manager,
	locker Locker,
	er event.Repository,
	gate IdentityGate,
	settler Settler,
	cache AvailabilityCache,
	admin common.Address,
	clk clock.Clock,
) *EventService {
	return &EventService{
		runner:    operationRunner{txManager: tm, locker: locker},
		eventRepo: er,
		identity:  gate,
		settler:   settler,
		cache:     cache,
		admin:     admin,
		clock:     clk,
	}
}

type CreateEventInput struct {
	Caller       common.Address
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

func (in CreateEventInput) details() event.Details {
	return event.Details{
		Name:         in.Name,
		Description:  in.Description,
		ImageURL:     in.ImageURL,
		StartDate:    in.StartDate,
		FreePrice:    in.FreePrice,
		RegularPrice: in.RegularPrice,
		VIPPrice:     in.VIPPrice,
		EndAt:        in.EndAt,
		Capacity:     in.Capacity,
	}
}

// CreateEvent は登録済みの呼び出し元をオーナーとしてイベントを作成する
func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	var created *event.Event
	err := s.runner.run(ctx, func(ctx context.Context) error {
		if err := s.settler.Serialize(ctx); err != nil {
			return err
		}
		registered, err := s.identity.IsRegistered(ctx, input.Caller)
		if err != nil {
			return fmt.Errorf("アイデンティティ確認に失敗: %w", err)
		}
		if !registered {
			return identity.ErrNotRegistered
		}

		now := s.clock.Now()
		d := input.details()
		if err := d.Validate(now); err != nil {
			return err
		}

		e := event.NewEvent(input.Caller, d, now)
		if err := s.eventRepo.Create(ctx, e); err != nil {
			return fmt.Errorf("イベント作成に失敗しました: %w", err)
		}
		created = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("イベントを作成しました", zap.Int64("event_id", created.ID), zap.String("owner", created.Owner.Hex()))
	return created, nil
}

// GetEvent はイベントを取得する。論理削除済みは NotFound
func (s *EventService) GetEvent(ctx context.Context, id int64) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Deleted {
		return nil, event.ErrEventNotFound
	}
	return e, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]*event.Event, error) {
	return s.eventRepo.List(ctx)
}

func (s *EventService) ListPublicEvents(ctx context.Context) ([]*event.Event, error) {
	return s.eventRepo.ListPublic(ctx)
}

func (s *EventService) ListOwnedBy(ctx context.Context, owner common.Address) ([]*event.Event, error) {
	return s.eventRepo.ListByOwner(ctx, owner)
}

type UpdateEventInput struct {
	ID int64
	CreateEventInput
}

// UpdateEvent は説明・価格・日時・定員を更新する。オーナーのみ
func (s *EventService) UpdateEvent(ctx context.Context, input UpdateEventInput) (*event.Event, error) {
	var updated *event.Event
	err := s.runner.run(ctx, func(ctx context.Context) error {
		if err := s.settler.Serialize(ctx); err != nil {
			return err
		}
		e, err := s.activeEvent(ctx, input.ID)
		if err != nil {
			return err
		}
		if !e.IsOwner(input.Caller) {
			return event.ErrNotOwner
		}
		if err := e.Update(input.details(), s.clock.Now()); err != nil {
			return err
		}
		if err := s.eventRepo.UpdateDetails(ctx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, updated.ID)
	return updated, nil
}

// DeleteEvent は全チケットを返金してイベントを論理削除する。オーナーまたは管理者のみ
// 返金に失敗した場合は削除も行わない
func (s *EventService) DeleteEvent(ctx context.Context, id int64, caller common.Address) (*event.Event, error) {
	var (
		deleted *event.Event
		refund  *RefundResult
	)
	err := s.runner.run(ctx, func(ctx context.Context) error {
		if err := s.settler.Serialize(ctx); err != nil {
			return err
		}
		e, err := s.eventRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !e.IsOwner(caller) && caller != s.admin {
			return event.ErrNotOwnerOrAdmin
		}
		if err := e.CheckDeletable(); err != nil {
			return err
		}

		refund, err = s.settler.Refund(ctx, id)
		if err != nil {
			return err
		}

		// Refund が返金済みにしたイベントを論理削除する
		e = refund.Event
		if err := e.MarkDeleted(); err != nil {
			return err
		}
		if err := s.eventRepo.Update(ctx, e); err != nil {
			return err
		}
		deleted = e
		return nil
	})
	if err != nil {
		metrics.Get().Settlement("refund", "failed")
		logger.Warn("イベント削除に失敗しました", zap.Int64("event_id", id), zap.Error(err))
		return nil, err
	}

	metrics.Get().Settlement("refund", "success")
	metrics.Get().SetEscrowBalance(refund.Balance)
	logger.Info("イベントを削除しました",
		zap.Int64("event_id", id),
		zap.Int64("refunded", refund.Refunded),
		zap.Int("transfers", len(refund.Transfers)),
	)
	s.invalidateCache(ctx, id)
	return deleted, nil
}

// ToggleVisibility は公開状態を反転する。オーナーのみ
func (s *EventService) ToggleVisibility(ctx context.Context, id int64, caller common.Address) (*event.Event, error) {
	var toggled *event.Event
	err := s.runner.run(ctx, func(ctx context.Context) error {
		if err := s.settler.Serialize(ctx); err != nil {
			return err
		}
		e, err := s.activeEvent(ctx, id)
		if err != nil {
			return err
		}
		if !e.IsOwner(caller) {
			return event.ErrNotOwner
		}
		e.ToggleVisibility()
		if err := s.eventRepo.UpdateVisibility(ctx, e); err != nil {
			return err
		}
		toggled = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toggled, nil
}

// activeEvent は論理削除されていないイベントを取得する
func (s *EventService) activeEvent(ctx context.Context, id int64) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Deleted {
		return nil, event.ErrEventNotFound
	}
	return e, nil
}

func (s *EventService) invalidateCache(ctx context.Context, eventID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.Error(err))
	}
}
