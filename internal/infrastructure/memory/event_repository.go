package memory

import (
	"context"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/event"
)

// EventRepository はイベントリポジトリのインメモリ実装
type EventRepository struct {
	s *Store
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	return r.s.write(ctx, func(d *state, u *undoLog) error {
		id, next := d.nextEventID, d.nextEventID
		u.record(func(d *state) {
			delete(d.events, id)
			d.nextEventID = next
		})
		e.ID = id
		d.nextEventID++
		d.events[e.ID] = *e
		return nil
	})
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*event.Event, error) {
	var (
		found event.Event
		ok    bool
	)
	r.s.read(ctx, func(d *state) {
		found, ok = d.events[id]
	})
	if !ok {
		return nil, event.ErrEventNotFound
	}
	return &found, nil
}

// List はイベント一覧を取得する
func (r *EventRepository) List(ctx context.Context) ([]*event.Event, error) {
	return r.filter(ctx, func(e *event.Event) bool { return !e.Deleted }), nil
}

// ListByOwner はオーナーのイベント一覧を取得する
func (r *EventRepository) ListByOwner(ctx context.Context, owner common.Address) ([]*event.Event, error) {
	return r.filter(ctx, func(e *event.Event) bool { return !e.Deleted && e.IsOwner(owner) }), nil
}

// ListPublic は公開中のイベント一覧を取得する
func (r *EventRepository) ListPublic(ctx context.Context) ([]*event.Event, error) {
	return r.filter(ctx, func(e *event.Event) bool { return !e.Deleted && e.PublicDisplay }), nil
}

// ListByIDs は指定IDのイベントを指定順に取得する。存在しないIDは無視する
func (r *EventRepository) ListByIDs(ctx context.Context, ids []int64) ([]*event.Event, error) {
	events := make([]*event.Event, 0, len(ids))
	r.s.read(ctx, func(d *state) {
		for _, id := range ids {
			if e, ok := d.events[id]; ok {
				events = append(events, &e)
			}
		}
	})
	return events, nil
}

func (r *EventRepository) filter(ctx context.Context, keep func(e *event.Event) bool) []*event.Event {
	events := []*event.Event{}
	r.s.read(ctx, func(d *state) {
		for _, e := range d.events {
			e := e
			if keep(&e) {
				events = append(events, &e)
			}
		}
	})
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events
}

// Update はイベントを更新する
func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	return r.s.write(ctx, func(d *state, u *undoLog) error {
		old, ok := d.events[e.ID]
		if !ok {
			return event.ErrEventNotFound
		}
		u.record(func(d *state) { d.events[old.ID] = old })
		d.events[e.ID] = *e
		return nil
	})
}

// UpdateDetails は編集可能な項目だけを更新する
func (r *EventRepository) UpdateDetails(ctx context.Context, e *event.Event) error {
	return r.patch(ctx, e.ID, func(stored *event.Event) {
		stored.Name = e.Name
		stored.Description = e.Description
		stored.ImageURL = e.ImageURL
		stored.StartDate = e.StartDate
		stored.FreePrice = e.FreePrice
		stored.RegularPrice = e.RegularPrice
		stored.VIPPrice = e.VIPPrice
		stored.EndAt = e.EndAt
		stored.Capacity = e.Capacity
	})
}

// UpdateVisibility は公開状態だけを更新する
func (r *EventRepository) UpdateVisibility(ctx context.Context, e *event.Event) error {
	return r.patch(ctx, e.ID, func(stored *event.Event) {
		stored.PublicDisplay = e.PublicDisplay
	})
}

// patch は論理削除されていないイベントに部分更新を適用する
func (r *EventRepository) patch(ctx context.Context, id int64, apply func(stored *event.Event)) error {
	return r.s.write(ctx, func(d *state, u *undoLog) error {
		stored, ok := d.events[id]
		if !ok || stored.Deleted {
			return event.ErrEventNotFound
		}
		old := stored
		u.record(func(d *state) { d.events[id] = old })
		apply(&stored)
		d.events[id] = stored
		return nil
	})
}

var _ event.Repository = (*EventRepository)(nil)
