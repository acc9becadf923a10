package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/credential"
)

type credentialRow struct {
	ID           int64     `db:"id"`
	OwnerAddress string    `db:"owner_address"`
	EventID      int64     `db:"event_id"`
	TicketID     int64     `db:"ticket_id"`
	IssuedAt     time.Time `db:"issued_at"`
}

// CredentialRepository はクレデンシャル発行のPostgreSQL実装
// IDは BIGSERIAL で採番する。ロールバック時は欠番になるが単調増加は保たれる
type CredentialRepository struct {
	db *sqlx.DB
}

// NewCredentialRepository はCredentialRepositoryを作成する
func NewCredentialRepository(db *sqlx.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Issue はクレデンシャルを発行し、IDを返す
func (r *CredentialRepository) Issue(ctx context.Context, owner common.Address, eventID, ticketID int64, issuedAt time.Time) (uint64, error) {
	query := `
		INSERT INTO credentials (owner_address, event_id, ticket_id, issued_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id int64
	if err := conn(ctx, r.db).QueryRowxContext(ctx, query, owner.Hex(), eventID, ticketID, issuedAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("クレデンシャル発行に失敗しました: %w", err)
	}
	return uint64(id), nil
}

// ListByOwner は所有者のクレデンシャル一覧を取得する
func (r *CredentialRepository) ListByOwner(ctx context.Context, owner common.Address) ([]*credential.Credential, error) {
	query := `
		SELECT id, owner_address, event_id, ticket_id, issued_at
		FROM credentials
		WHERE owner_address = $1
		ORDER BY id
	`
	var rows []credentialRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, owner.Hex()); err != nil {
		return nil, fmt.Errorf("クレデンシャル一覧の取得に失敗しました: %w", err)
	}

	creds := make([]*credential.Credential, len(rows))
	for i, row := range rows {
		creds[i] = &credential.Credential{
			ID:       uint64(row.ID),
			Owner:    common.HexToAddress(row.OwnerAddress),
			EventID:  row.EventID,
			TicketID: row.TicketID,
			IssuedAt: row.IssuedAt.UTC(),
		}
	}
	return creds, nil
}

var _ credential.Repository = (*CredentialRepository)(nil)
