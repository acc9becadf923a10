package application

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/credential"
)

// CredentialService は発行済みクレデンシャルの参照を提供する
type CredentialService struct {
	repo credential.Repository
}

func NewCredentialService(repo credential.Repository) *CredentialService {
	return &CredentialService{repo: repo}
}

// ListOwnedBy は所有者のクレデンシャルを発行順に返す
func (s *CredentialService) ListOwnedBy(ctx context.Context, owner common.Address) ([]*credential.Credential, error) {
	return s.repo.ListByOwner(ctx, owner)
}
