// Package chain は精算で発生した送金をチェーン上の送金トランザクションとして配信する
package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// transferGas は単純な送金に必要なガス量
const transferGas = 21000

// Backend は送金に必要なRPCメソッド。*ethclient.Client が満たす
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Sender はプラットフォームの鍵で署名した送金トランザクションを送信する
type Sender struct {
	backend Backend
	closeFn func()
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int

	// nonce の取得から送信までを直列化する
	mu sync.Mutex
}

// Dial はRPCに接続して Sender を作成する
func Dial(ctx context.Context, rpcURL, privateKeyHex string) (*Sender, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("RPC接続に失敗しました: %w", err)
	}
	s, err := NewSender(ctx, ethclient.NewClient(rpcClient), privateKeyHex)
	if err != nil {
		rpcClient.Close()
		return nil, err
	}
	s.closeFn = rpcClient.Close
	return s, nil
}

// NewSender は任意の Backend から Sender を作成する
func NewSender(ctx context.Context, backend Backend, privateKeyHex string) (*Sender, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("秘密鍵が不正です: %w", err)
	}
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("チェーンIDの取得に失敗しました: %w", err)
	}
	return &Sender{
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
	}, nil
}

// From は送金元アドレスを返す
func (s *Sender) From() common.Address {
	return s.from
}

// Send は recipient へ amount を送金し、トランザクションハッシュを返す
func (s *Sender) Send(ctx context.Context, recipient common.Address, amount int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce, err := s.backend.PendingNonceAt(ctx, s.from)
	if err != nil {
		return "", fmt.Errorf("nonceの取得に失敗しました: %w", err)
	}
	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("ガス価格の取得に失敗しました: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &recipient,
		Value:    big.NewInt(amount),
		Gas:      transferGas,
		GasPrice: gasPrice,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return "", fmt.Errorf("署名に失敗しました: %w", err)
	}
	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("トランザクション送信に失敗しました: %w", err)
	}
	return signed.Hash().Hex(), nil
}

// Close はRPC接続を閉じる
func (s *Sender) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}
