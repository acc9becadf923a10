package memory

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/credential"
)

// CredentialRepository はクレデンシャル発行のインメモリ実装
// 採番カウンタはスナップショットに含まれるため、ロールバックで発行も取り消される
type CredentialRepository struct {
	s *Store
}

// Issue はクレデンシャルを発行し、IDを返す
func (r *CredentialRepository) Issue(ctx context.Context, owner common.Address, eventID, ticketID int64, issuedAt time.Time) (uint64, error) {
	var id uint64
	err := r.s.write(ctx, func(d *state, u *undoLog) error {
		n, next := len(d.credentials), d.nextCredentialID
		u.record(func(d *state) {
			d.credentials = d.credentials[:n]
			d.nextCredentialID = next
		})
		id = d.nextCredentialID
		d.nextCredentialID++
		d.credentials = append(d.credentials, credential.Credential{
			ID:       id,
			Owner:    owner,
			EventID:  eventID,
			TicketID: ticketID,
			IssuedAt: issuedAt,
		})
		return nil
	})
	return id, err
}

// ListByOwner は所有者のクレデンシャル一覧を取得する
func (r *CredentialRepository) ListByOwner(ctx context.Context, owner common.Address) ([]*credential.Credential, error) {
	creds := []*credential.Credential{}
	r.s.read(ctx, func(d *state) {
		for _, c := range d.credentials {
			c := c
			if c.Owner == owner {
				creds = append(creds, &c)
			}
		}
	})
	return creds, nil
}

var _ credential.Repository = (*CredentialRepository)(nil)
