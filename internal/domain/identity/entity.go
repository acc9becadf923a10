package identity

import (
	"encoding/binary"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Identity は呼び出し元アドレスに紐づくプロフィールを表す
type Identity struct {
	Address   common.Address
	UID       uint64
	Name      string
	Bio       string
	Handle    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewIdentity は初回登録時のアイデンティティを作成する
func NewIdentity(addr common.Address, name, bio, handle string, now time.Time) *Identity {
	return &Identity{
		Address:   addr,
		UID:       DeriveUID(addr, now),
		Name:      name,
		Bio:       bio,
		Handle:    handle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DeriveUID はアドレスと登録時刻から数値IDを導出する
// keccak256(address || unix秒) の先頭8バイトをビッグエンディアンで読む
func DeriveUID(addr common.Address, now time.Time) uint64 {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(now.Unix()))
	h := crypto.Keccak256(addr.Bytes(), ts[:])
	return binary.BigEndian.Uint64(h[:8])
}

// Update はプロフィールを上書きする。UIDと作成日時は変更しない
func (i *Identity) Update(name, bio, handle string, now time.Time) {
	i.Name = name
	i.Bio = bio
	i.Handle = handle
	i.UpdatedAt = now
}
