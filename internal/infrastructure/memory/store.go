// Package memory はプロセス内で完結するリポジトリ実装を提供する
//
// 全リポジトリが1つの Store を共有し、WithinTx は書き込みロックを保持したまま fn を実行する。
// トランザクション内の書き込みは取り消し手順を undoLog に積み、fn が失敗した場合は
// 逆順に適用して開始時点の状態に戻す。
package memory

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/credential"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/event"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/identity"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/transaction"
)

type txKey struct{}

// state は Store が保持する全データ
type state struct {
	events           map[int64]event.Event
	nextEventID      int64
	tickets          map[int64][]ticket.Ticket
	identities       map[common.Address]identity.Identity
	escrow           *escrow.State
	transfers        []escrow.Transfer
	nextTransferID   int64
	credentials      []credential.Credential
	nextCredentialID uint64
}

func newState() state {
	return state{
		events:           make(map[int64]event.Event),
		nextEventID:      1,
		tickets:          make(map[int64][]ticket.Ticket),
		identities:       make(map[common.Address]identity.Identity),
		nextTransferID:   1,
		nextCredentialID: 1,
	}
}

// undoLog はトランザクション内の書き込みを取り消す手順を記録する
type undoLog struct {
	steps []func(d *state)
}

// record は取り消し手順を追加する。トランザクション外 (nil) では何もしない
func (u *undoLog) record(step func(d *state)) {
	if u == nil {
		return
	}
	u.steps = append(u.steps, step)
}

func (u *undoLog) rollback(d *state) {
	for i := len(u.steps) - 1; i >= 0; i-- {
		u.steps[i](d)
	}
}

// Store はインメモリのデータストア
type Store struct {
	mu   sync.RWMutex
	data state
	undo *undoLog
}

// NewStore は空の Store を作成する
func NewStore() *Store {
	return &Store{data: newState()}
}

// WithinTx は fn を排他的に実行し、エラー時は全ての変更を取り消す
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.undo = &undoLog{}
	defer func() { s.undo = nil }()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.undo.rollback(&s.data)
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// read はトランザクション外なら読み込みロックを取って fn を実行する
func (s *Store) read(ctx context.Context, fn func(d *state)) {
	if !inTx(ctx) {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	fn(&s.data)
}

// write はトランザクション外なら書き込みロックを取って fn を実行する
// トランザクション内では u に取り消し手順を記録させる
func (s *Store) write(ctx context.Context, fn func(d *state, u *undoLog) error) error {
	if !inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(&s.data, nil)
	}
	return fn(&s.data, s.undo)
}

// Events はイベントリポジトリを返す
func (s *Store) Events() *EventRepository { return &EventRepository{s: s} }

// Tickets はチケットリポジトリを返す
func (s *Store) Tickets() *TicketRepository { return &TicketRepository{s: s} }

// Identities はアイデンティティリポジトリを返す
func (s *Store) Identities() *IdentityRepository { return &IdentityRepository{s: s} }

// Escrow はエスクローリポジトリを返す
func (s *Store) Escrow() *EscrowRepository { return &EscrowRepository{s: s} }

// Credentials はクレデンシャルリポジトリを返す
func (s *Store) Credentials() *CredentialRepository { return &CredentialRepository{s: s} }

var _ transaction.Manager = (*Store)(nil)
