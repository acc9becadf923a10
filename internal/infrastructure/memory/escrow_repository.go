package memory

import (
	"context"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/escrow"
)

// EscrowRepository はエスクローリポジトリのインメモリ実装
type EscrowRepository struct {
	s *Store
}

// Init は状態が未作成の場合のみ作成する
func (r *EscrowRepository) Init(ctx context.Context, st *escrow.State) (*escrow.State, error) {
	var current escrow.State
	err := r.s.write(ctx, func(d *state, u *undoLog) error {
		if d.escrow == nil {
			u.record(func(d *state) { d.escrow = nil })
			created := *st
			d.escrow = &created
		}
		current = *d.escrow
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &current, nil
}

// GetState は状態を取得する
func (r *EscrowRepository) GetState(ctx context.Context) (*escrow.State, error) {
	var current *escrow.State
	r.s.read(ctx, func(d *state) {
		if d.escrow != nil {
			c := *d.escrow
			current = &c
		}
	})
	if current == nil {
		return nil, escrow.ErrStateNotInitialized
	}
	return current, nil
}

// SaveBalance は残高を保存する
func (r *EscrowRepository) SaveBalance(ctx context.Context, balance int64) error {
	return r.s.write(ctx, func(d *state, u *undoLog) error {
		if d.escrow == nil {
			return escrow.ErrStateNotInitialized
		}
		old := d.escrow.Balance
		u.record(func(d *state) { d.escrow.Balance = old })
		d.escrow.Balance = balance
		return nil
	})
}

// EnqueueTransfer は配信待ちの送金を記録する
func (r *EscrowRepository) EnqueueTransfer(ctx context.Context, t *escrow.Transfer) error {
	return r.s.write(ctx, func(d *state, u *undoLog) error {
		n, next := len(d.transfers), d.nextTransferID
		u.record(func(d *state) {
			d.transfers = d.transfers[:n]
			d.nextTransferID = next
		})
		t.ID = d.nextTransferID
		d.nextTransferID++
		d.transfers = append(d.transfers, copyTransfer(t))
		return nil
	})
}

// ListPendingTransfers は配信待ちの送金を古い順に取得する
func (r *EscrowRepository) ListPendingTransfers(ctx context.Context, limit int) ([]*escrow.Transfer, error) {
	return r.collect(ctx, limit, func(t *escrow.Transfer) bool {
		return t.Status == escrow.TransferStatusPending
	}), nil
}

// ListTransfersByEventID はイベントの送金一覧を取得する
func (r *EscrowRepository) ListTransfersByEventID(ctx context.Context, eventID int64) ([]*escrow.Transfer, error) {
	return r.collect(ctx, 0, func(t *escrow.Transfer) bool {
		return t.EventID == eventID
	}), nil
}

// collect は条件に合う送金をID順に返す。limit が0以下なら全件
func (r *EscrowRepository) collect(ctx context.Context, limit int, keep func(t *escrow.Transfer) bool) []*escrow.Transfer {
	transfers := []*escrow.Transfer{}
	r.s.read(ctx, func(d *state) {
		for i := range d.transfers {
			if limit > 0 && len(transfers) >= limit {
				return
			}
			if keep(&d.transfers[i]) {
				t := copyTransfer(&d.transfers[i])
				transfers = append(transfers, &t)
			}
		}
	})
	return transfers
}

// UpdateTransfer は送金の配信状態を更新する
func (r *EscrowRepository) UpdateTransfer(ctx context.Context, t *escrow.Transfer) error {
	return r.s.write(ctx, func(d *state, u *undoLog) error {
		for i := range d.transfers {
			if d.transfers[i].ID == t.ID {
				i, old := i, d.transfers[i]
				u.record(func(d *state) { d.transfers[i] = old })
				d.transfers[i] = copyTransfer(t)
				return nil
			}
		}
		return escrow.ErrTransferNotFound
	})
}

func copyTransfer(t *escrow.Transfer) escrow.Transfer {
	c := *t
	if t.TicketID != nil {
		id := *t.TicketID
		c.TicketID = &id
	}
	return c
}

var _ escrow.Repository = (*EscrowRepository)(nil)
