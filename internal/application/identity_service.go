package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/identity"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/transaction"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/clock"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/logger"
)

// IdentityService は呼び出し元のプロフィール登録と登録確認を提供する
type IdentityService struct {
	runner       operationRunner
	identityRepo identity.Repository
	clock        clock.Clock
}

// NewIdentityService は IdentityService を作成する
func NewIdentityService(tm transaction.Manager, locker Locker, ir identity.Repository, clk clock.Clock) *IdentityService {
	return &IdentityService{
		runner:       operationRunner{txManager: tm, locker: locker},
		identityRepo: ir,
		clock:        clk,
	}
}

type SetIdentityInput struct {
	Caller common.Address
	Name   string
	Bio    string
	Handle string
}

// SetIdentity は初回呼び出しで登録し、以降はプロフィールを上書きする
func (s *IdentityService) SetIdentity(ctx context.Context, input SetIdentityInput) (*identity.Identity, error) {
	if input.Caller == (common.Address{}) {
		return nil, identity.ErrInvalidAddress
	}

	var saved *identity.Identity
	err := s.runner.run(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		current, err := s.identityRepo.GetByAddress(ctx, input.Caller)
		switch {
		case errors.Is(err, identity.ErrIdentityNotFound):
			current = identity.NewIdentity(input.Caller, input.Name, input.Bio, input.Handle, now)
		case err != nil:
			return fmt.Errorf("アイデンティティ取得に失敗: %w", err)
		default:
			current.Update(input.Name, input.Bio, input.Handle, now)
		}

		if err := s.identityRepo.Save(ctx, current); err != nil {
			return err
		}
		saved = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("アイデンティティを保存しました",
		zap.String("address", saved.Address.Hex()),
		zap.Uint64("uid", saved.UID),
	)
	return saved, nil
}

// GetIdentity はアドレスのアイデンティティを取得する
func (s *IdentityService) GetIdentity(ctx context.Context, addr common.Address) (*identity.Identity, error) {
	return s.identityRepo.GetByAddress(ctx, addr)
}

// IsRegistered は登録済みかを返す
// 操作ロックを取らないため、他の操作のトランザクション内からも呼べる
func (s *IdentityService) IsRegistered(ctx context.Context, addr common.Address) (bool, error) {
	_, err := s.identityRepo.GetByAddress(ctx, addr)
	if errors.Is(err, identity.ErrIdentityNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
