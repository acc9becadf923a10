package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/event"
)

const eventColumns = `id, name, description, image_url, start_date, owner_address,
	free_price, regular_price, vip_price, end_at, capacity, sold_count, created_at,
	deleted, paid_out, refunded, tickets_minted, public_display`

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	Description   string    `db:"description"`
	ImageURL      string    `db:"image_url"`
	StartDate     string    `db:"start_date"`
	OwnerAddress  string    `db:"owner_address"`
	FreePrice     int64     `db:"free_price"`
	RegularPrice  int64     `db:"regular_price"`
	VIPPrice      int64     `db:"vip_price"`
	EndAt         time.Time `db:"end_at"`
	Capacity      int       `db:"capacity"`
	SoldCount     int       `db:"sold_count"`
	CreatedAt     time.Time `db:"created_at"`
	Deleted       bool      `db:"deleted"`
	PaidOut       bool      `db:"paid_out"`
	Refunded      bool      `db:"refunded"`
	TicketsMinted bool      `db:"tickets_minted"`
	PublicDisplay bool      `db:"public_display"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	return &event.Event{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		StartDate:     r.StartDate,
		Owner:         common.HexToAddress(r.OwnerAddress),
		FreePrice:     r.FreePrice,
		RegularPrice:  r.RegularPrice,
		VIPPrice:      r.VIPPrice,
		EndAt:         r.EndAt.UTC(),
		Capacity:      r.Capacity,
		SoldCount:     r.SoldCount,
		CreatedAt:     r.CreatedAt.UTC(),
		Deleted:       r.Deleted,
		PaidOut:       r.PaidOut,
		Refunded:      r.Refunded,
		TicketsMinted: r.TicketsMinted,
		PublicDisplay: r.PublicDisplay,
	}
}

func toEvents(rows []eventRow) []*event.Event {
	events := make([]*event.Event, len(rows))
	for i := range rows {
		events[i] = rows[i].toEntity()
	}
	return events
}

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (name, description, image_url, start_date, owner_address,
			free_price, regular_price, vip_price, end_at, capacity, sold_count, created_at,
			deleted, paid_out, refunded, tickets_minted, public_display)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`
	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		e.Name, e.Description, e.ImageURL, e.StartDate, e.Owner.Hex(),
		e.FreePrice, e.RegularPrice, e.VIPPrice, e.EndAt, e.Capacity, e.SoldCount, e.CreatedAt,
		e.Deleted, e.PaidOut, e.Refunded, e.TicketsMinted, e.PublicDisplay,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	err := conn(ctx, r.db).GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// List はイベント一覧を取得する
func (r *EventRepository) List(ctx context.Context) ([]*event.Event, error) {
	return r.selectEvents(ctx, `SELECT `+eventColumns+` FROM events WHERE NOT deleted ORDER BY id`)
}

// ListByOwner はオーナーのイベント一覧を取得する
func (r *EventRepository) ListByOwner(ctx context.Context, owner common.Address) ([]*event.Event, error) {
	return r.selectEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE owner_address = $1 AND NOT deleted ORDER BY id`,
		owner.Hex())
}

// ListPublic は公開中のイベント一覧を取得する
func (r *EventRepository) ListPublic(ctx context.Context) ([]*event.Event, error) {
	return r.selectEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE public_display AND NOT deleted ORDER BY id`)
}

// ListByIDs は指定IDのイベントを指定順に取得する
func (r *EventRepository) ListByIDs(ctx context.Context, ids []int64) ([]*event.Event, error) {
	if len(ids) == 0 {
		return []*event.Event{}, nil
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = ANY($1)
		ORDER BY array_position($1, id)
	`
	return r.selectEvents(ctx, query, pq.Array(ids))
}

func (r *EventRepository) selectEvents(ctx context.Context, query string, args ...interface{}) ([]*event.Event, error) {
	var rows []eventRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}
	return toEvents(rows), nil
}

// Update はイベントの全項目を更新する
func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, image_url = $3, start_date = $4,
		    free_price = $5, regular_price = $6, vip_price = $7, end_at = $8,
		    capacity = $9, sold_count = $10, deleted = $11, paid_out = $12,
		    refunded = $13, tickets_minted = $14, public_display = $15
		WHERE id = $16
	`
	return r.exec(ctx, query,
		e.Name, e.Description, e.ImageURL, e.StartDate,
		e.FreePrice, e.RegularPrice, e.VIPPrice, e.EndAt,
		e.Capacity, e.SoldCount, e.Deleted, e.PaidOut,
		e.Refunded, e.TicketsMinted, e.PublicDisplay, e.ID,
	)
}

// UpdateDetails は編集可能な項目だけを更新する
func (r *EventRepository) UpdateDetails(ctx context.Context, e *event.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, image_url = $3, start_date = $4,
		    free_price = $5, regular_price = $6, vip_price = $7, end_at = $8,
		    capacity = $9
		WHERE id = $10 AND NOT deleted
	`
	return r.exec(ctx, query,
		e.Name, e.Description, e.ImageURL, e.StartDate,
		e.FreePrice, e.RegularPrice, e.VIPPrice, e.EndAt,
		e.Capacity, e.ID,
	)
}

// UpdateVisibility は公開状態だけを更新する
func (r *EventRepository) UpdateVisibility(ctx context.Context, e *event.Event) error {
	query := `UPDATE events SET public_display = $1 WHERE id = $2 AND NOT deleted`
	return r.exec(ctx, query, e.PublicDisplay, e.ID)
}

func (r *EventRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("イベント更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
