package memory

import (
	"context"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/ticket"
)

// TicketRepository はチケットリポジトリのインメモリ実装
type TicketRepository struct {
	s *Store
}

// Append はチケットを追加する
func (r *TicketRepository) Append(ctx context.Context, t *ticket.Ticket) error {
	return r.s.write(ctx, func(d *state, u *undoLog) error {
		eventID := t.EventID
		prev, ok := d.tickets[eventID]
		n := len(prev)
		u.record(func(d *state) {
			if !ok {
				delete(d.tickets, eventID)
				return
			}
			d.tickets[eventID] = d.tickets[eventID][:n]
		})
		d.tickets[eventID] = append(prev, *t)
		return nil
	})
}

// CountByEventID はイベントのチケット数を返す
func (r *TicketRepository) CountByEventID(ctx context.Context, eventID int64) (int64, error) {
	var n int
	r.s.read(ctx, func(d *state) {
		n = len(d.tickets[eventID])
	})
	return int64(n), nil
}

// ListByEventID はイベントのチケット一覧を取得する
func (r *TicketRepository) ListByEventID(ctx context.Context, eventID int64) ([]*ticket.Ticket, error) {
	tickets := []*ticket.Ticket{}
	r.s.read(ctx, func(d *state) {
		for _, t := range d.tickets[eventID] {
			t := t
			tickets = append(tickets, &t)
		}
	})
	return tickets, nil
}

// ListEventIDsByOwner は所有者がチケットを持つイベントIDを取得する
func (r *TicketRepository) ListEventIDsByOwner(ctx context.Context, owner common.Address) ([]int64, error) {
	ids := []int64{}
	r.s.read(ctx, func(d *state) {
		for eventID, tickets := range d.tickets {
			for _, t := range tickets {
				if t.Owner == owner {
					ids = append(ids, eventID)
					break
				}
			}
		}
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Update はチケットを更新する
func (r *TicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	return r.s.write(ctx, func(d *state, u *undoLog) error {
		tickets := d.tickets[t.EventID]
		if t.ID < 0 || t.ID >= int64(len(tickets)) {
			return ticket.ErrTicketNotFound
		}
		old := tickets[t.ID]
		u.record(func(d *state) { d.tickets[old.EventID][old.ID] = old })
		tickets[t.ID] = *t
		return nil
	})
}

var _ ticket.Repository = (*TicketRepository)(nil)
