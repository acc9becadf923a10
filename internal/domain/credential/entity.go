package credential

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Credential はチケット保有者に発行される所有証明を表す
type Credential struct {
	ID       uint64 // 全体で一意かつ単調増加
	Owner    common.Address
	EventID  int64
	TicketID int64
	IssuedAt time.Time
}

// Issuer はクレデンシャルを発行する
// トランザクション内で呼ばれた場合、ロールバックで発行も取り消される
type Issuer interface {
	Issue(ctx context.Context, owner common.Address, eventID, ticketID int64, issuedAt time.Time) (uint64, error)
}

// Repository は発行済みクレデンシャルの参照を提供する
type Repository interface {
	Issuer

	// ListByOwner は所有者のクレデンシャルをID順に取得する
	ListByOwner(ctx context.Context, owner common.Address) ([]*Credential, error)
}
