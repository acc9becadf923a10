package memory

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/identity"
)

// IdentityRepository はアイデンティティリポジトリのインメモリ実装
type IdentityRepository struct {
	s *Store
}

// GetByAddress はアドレスからアイデンティティを取得する
func (r *IdentityRepository) GetByAddress(ctx context.Context, addr common.Address) (*identity.Identity, error) {
	var (
		found identity.Identity
		ok    bool
	)
	r.s.read(ctx, func(d *state) {
		found, ok = d.identities[addr]
	})
	if !ok {
		return nil, identity.ErrIdentityNotFound
	}
	return &found, nil
}

// Save はアイデンティティを作成または更新する。UIDと作成日時は初回の値を保持する
func (r *IdentityRepository) Save(ctx context.Context, i *identity.Identity) error {
	return r.s.write(ctx, func(d *state, u *undoLog) error {
		saved := *i
		existing, ok := d.identities[i.Address]
		u.record(func(d *state) {
			if !ok {
				delete(d.identities, saved.Address)
				return
			}
			d.identities[saved.Address] = existing
		})
		if ok {
			saved.UID = existing.UID
			saved.CreatedAt = existing.CreatedAt
		}
		d.identities[i.Address] = saved
		return nil
	})
}

var _ identity.Repository = (*IdentityRepository)(nil)
