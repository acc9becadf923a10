package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/escrow"
)

type escrowStateRow struct {
	Balance       int64 `db:"balance"`
	CommissionPct int   `db:"commission_pct"`
}

type transferRow struct {
	ID        int64         `db:"id"`
	Recipient string        `db:"recipient"`
	Amount    int64         `db:"amount"`
	Reason    string        `db:"reason"`
	EventID   int64         `db:"event_id"`
	TicketID  sql.NullInt64 `db:"ticket_id"`
	Status    string        `db:"status"`
	TxHash    string        `db:"tx_hash"`
	Attempts  int           `db:"attempts"`
	LastError string        `db:"last_error"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

func (r *transferRow) toEntity() *escrow.Transfer {
	t := &escrow.Transfer{
		ID:        r.ID,
		Recipient: common.HexToAddress(r.Recipient),
		Amount:    r.Amount,
		Reason:    escrow.Reason(r.Reason),
		EventID:   r.EventID,
		Status:    escrow.TransferStatus(r.Status),
		TxHash:    r.TxHash,
		Attempts:  r.Attempts,
		LastError: r.LastError,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.TicketID.Valid {
		id := r.TicketID.Int64
		t.TicketID = &id
	}
	return t
}

const transferColumns = `id, recipient, amount, reason, event_id, ticket_id, status, tx_hash, attempts, last_error, created_at, updated_at`

// EscrowRepository はエスクローリポジトリのPostgreSQL実装
type EscrowRepository struct {
	db *sqlx.DB
}

// NewEscrowRepository はEscrowRepositoryを作成する
func NewEscrowRepository(db *sqlx.DB) *EscrowRepository {
	return &EscrowRepository{db: db}
}

// Init は状態行が無い場合のみ作成する。手数料率は初回の値から変わらない
func (r *EscrowRepository) Init(ctx context.Context, s *escrow.State) (*escrow.State, error) {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO escrow_state (id, balance, commission_pct) VALUES (1, $1, $2) ON CONFLICT (id) DO NOTHING`,
		s.Balance, s.CommissionPct,
	)
	if err != nil {
		return nil, fmt.Errorf("エスクロー初期化に失敗しました: %w", err)
	}
	return r.GetState(ctx)
}

// GetState は状態を取得する。トランザクション内では FOR UPDATE で行ロックを取る
func (r *EscrowRepository) GetState(ctx context.Context) (*escrow.State, error) {
	query := `SELECT balance, commission_pct FROM escrow_state WHERE id = 1`
	if txFromContext(ctx) != nil {
		query += ` FOR UPDATE`
	}

	var row escrowStateRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, escrow.ErrStateNotInitialized
		}
		return nil, fmt.Errorf("エスクロー状態の取得に失敗しました: %w", err)
	}
	return &escrow.State{Balance: row.Balance, CommissionPct: row.CommissionPct}, nil
}

// SaveBalance は残高を保存する
func (r *EscrowRepository) SaveBalance(ctx context.Context, balance int64) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE escrow_state SET balance = $1 WHERE id = 1`, balance)
	if err != nil {
		return fmt.Errorf("残高の保存に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return escrow.ErrStateNotInitialized
	}
	return nil
}

// EnqueueTransfer は配信待ちの送金を記録する
func (r *EscrowRepository) EnqueueTransfer(ctx context.Context, t *escrow.Transfer) error {
	query := `
		INSERT INTO transfers (recipient, amount, reason, event_id, ticket_id, status, tx_hash, attempts, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var ticketID sql.NullInt64
	if t.TicketID != nil {
		ticketID = sql.NullInt64{Int64: *t.TicketID, Valid: true}
	}

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		t.Recipient.Hex(), t.Amount, string(t.Reason), t.EventID, ticketID,
		string(t.Status), t.TxHash, t.Attempts, t.LastError, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("送金の記録に失敗しました: %w", err)
	}
	return nil
}

// ListPendingTransfers は配信待ちの送金を古い順に取得する
// 複数ワーカーでの二重配信を避けるため SKIP LOCKED を使う
func (r *EscrowRepository) ListPendingTransfers(ctx context.Context, limit int) ([]*escrow.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE status = $1 ORDER BY id LIMIT $2`
	if txFromContext(ctx) != nil {
		query += ` FOR UPDATE SKIP LOCKED`
	}
	return r.selectTransfers(ctx, query, string(escrow.TransferStatusPending), limit)
}

// ListTransfersByEventID はイベントの送金一覧を取得する
func (r *EscrowRepository) ListTransfersByEventID(ctx context.Context, eventID int64) ([]*escrow.Transfer, error) {
	return r.selectTransfers(ctx, `SELECT `+transferColumns+` FROM transfers WHERE event_id = $1 ORDER BY id`, eventID)
}

func (r *EscrowRepository) selectTransfers(ctx context.Context, query string, args ...interface{}) ([]*escrow.Transfer, error) {
	var rows []transferRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("送金一覧の取得に失敗しました: %w", err)
	}
	transfers := make([]*escrow.Transfer, len(rows))
	for i := range rows {
		transfers[i] = rows[i].toEntity()
	}
	return transfers, nil
}

// UpdateTransfer は送金の配信状態を更新する
func (r *EscrowRepository) UpdateTransfer(ctx context.Context, t *escrow.Transfer) error {
	query := `
		UPDATE transfers
		SET status = $1, tx_hash = $2, attempts = $3, last_error = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		string(t.Status), t.TxHash, t.Attempts, t.LastError, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("送金の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return escrow.ErrTransferNotFound
	}
	return nil
}

var _ escrow.Repository = (*EscrowRepository)(nil)
