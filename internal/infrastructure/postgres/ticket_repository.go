package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/ticket"
)

// ticketRow はDBの行を表す構造体
type ticketRow struct {
	EventID          int64         `db:"event_id"`
	ID               int64         `db:"id"`
	OwnerAddress     string        `db:"owner_address"`
	Tier             int16         `db:"tier"`
	Price            int64         `db:"price"`
	PaidValue        int64         `db:"paid_value"`
	PurchasedAt      time.Time     `db:"purchased_at"`
	Refunded         bool          `db:"refunded"`
	CredentialMinted bool          `db:"credential_minted"`
	CredentialID     sql.NullInt64 `db:"credential_id"`
}

func (r *ticketRow) toEntity() *ticket.Ticket {
	t := &ticket.Ticket{
		ID:               r.ID,
		EventID:          r.EventID,
		Owner:            common.HexToAddress(r.OwnerAddress),
		Tier:             ticket.Tier(r.Tier),
		Price:            r.Price,
		PaidValue:        r.PaidValue,
		PurchasedAt:      r.PurchasedAt.UTC(),
		Refunded:         r.Refunded,
		CredentialMinted: r.CredentialMinted,
	}
	if r.CredentialID.Valid {
		t.CredentialID = uint64(r.CredentialID.Int64)
	}
	return t
}

// TicketRepository はチケットリポジトリのPostgreSQL実装
type TicketRepository struct {
	db *sqlx.DB
}

// NewTicketRepository はTicketRepositoryを作成する
func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Append はチケットを追加する
func (r *TicketRepository) Append(ctx context.Context, t *ticket.Ticket) error {
	query := `
		INSERT INTO tickets (event_id, id, owner_address, tier, price, paid_value, purchased_at, refunded, credential_minted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		t.EventID, t.ID, t.Owner.Hex(), int16(t.Tier), t.Price, t.PaidValue, t.PurchasedAt, t.Refunded, t.CredentialMinted,
	)
	if err != nil {
		return fmt.Errorf("チケット追加に失敗しました: %w", err)
	}
	return nil
}

// CountByEventID はイベントのチケット数を返す
func (r *TicketRepository) CountByEventID(ctx context.Context, eventID int64) (int64, error) {
	var count int64
	err := conn(ctx, r.db).GetContext(ctx, &count, `SELECT COUNT(*) FROM tickets WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, fmt.Errorf("チケット数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// ListByEventID はイベントのチケット一覧を取得する
func (r *TicketRepository) ListByEventID(ctx context.Context, eventID int64) ([]*ticket.Ticket, error) {
	query := `
		SELECT event_id, id, owner_address, tier, price, paid_value, purchased_at,
		       refunded, credential_minted, credential_id
		FROM tickets
		WHERE event_id = $1
		ORDER BY id
	`
	var rows []ticketRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("チケット一覧取得に失敗しました: %w", err)
	}

	tickets := make([]*ticket.Ticket, len(rows))
	for i := range rows {
		tickets[i] = rows[i].toEntity()
	}
	return tickets, nil
}

// ListEventIDsByOwner は所有者がチケットを持つイベントIDを取得する
func (r *TicketRepository) ListEventIDsByOwner(ctx context.Context, owner common.Address) ([]int64, error) {
	query := `SELECT DISTINCT event_id FROM tickets WHERE owner_address = $1 ORDER BY event_id`

	ids := []int64{}
	if err := conn(ctx, r.db).SelectContext(ctx, &ids, query, owner.Hex()); err != nil {
		return nil, fmt.Errorf("購入イベントの取得に失敗しました: %w", err)
	}
	return ids, nil
}

// Update はチケットの返金・発行フラグを更新する
func (r *TicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	query := `
		UPDATE tickets
		SET refunded = $1, credential_minted = $2, credential_id = $3
		WHERE event_id = $4 AND id = $5
	`
	var credentialID sql.NullInt64
	if t.CredentialMinted {
		credentialID = sql.NullInt64{Int64: int64(t.CredentialID), Valid: true}
	}

	result, err := conn(ctx, r.db).ExecContext(ctx, query, t.Refunded, t.CredentialMinted, credentialID, t.EventID, t.ID)
	if err != nil {
		return fmt.Errorf("チケット更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return ticket.ErrTicketNotFound
	}
	return nil
}

var _ ticket.Repository = (*TicketRepository)(nil)
