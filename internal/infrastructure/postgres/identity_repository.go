package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/identity"
)

type identityRow struct {
	Address   string    `db:"address"`
	UID       string    `db:"uid"` // NUMERIC(20,0)
	Name      string    `db:"name"`
	Bio       string    `db:"bio"`
	Handle    string    `db:"handle"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *identityRow) toEntity() (*identity.Identity, error) {
	uid, err := strconv.ParseUint(r.UID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("UIDの変換に失敗しました: %w", err)
	}
	return &identity.Identity{
		Address:   common.HexToAddress(r.Address),
		UID:       uid,
		Name:      r.Name,
		Bio:       r.Bio,
		Handle:    r.Handle,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}, nil
}

// IdentityRepository はアイデンティティリポジトリのPostgreSQL実装
type IdentityRepository struct {
	db *sqlx.DB
}

// NewIdentityRepository はIdentityRepositoryを作成する
func NewIdentityRepository(db *sqlx.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// GetByAddress はアドレスからアイデンティティを取得する
func (r *IdentityRepository) GetByAddress(ctx context.Context, addr common.Address) (*identity.Identity, error) {
	query := `SELECT address, uid, name, bio, handle, created_at, updated_at FROM identities WHERE address = $1`

	var row identityRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, addr.Hex()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identity.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("アイデンティティ取得に失敗しました: %w", err)
	}
	return row.toEntity()
}

// Save はアイデンティティを作成または更新する。UIDと作成日時は初回の値を保持する
func (r *IdentityRepository) Save(ctx context.Context, i *identity.Identity) error {
	query := `
		INSERT INTO identities (address, uid, name, bio, handle, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (address) DO UPDATE
		SET name = EXCLUDED.name, bio = EXCLUDED.bio, handle = EXCLUDED.handle, updated_at = EXCLUDED.updated_at
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		i.Address.Hex(), strconv.FormatUint(i.UID, 10), i.Name, i.Bio, i.Handle, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("アイデンティティ保存に失敗しました: %w", err)
	}
	return nil
}

var _ identity.Repository = (*IdentityRepository)(nil)
