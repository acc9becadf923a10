package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	errNameRequired := New(ErrInvalidArgument, "名前は必須です")

	assert.Equal(t, "名前は必須です", errNameRequired.Error())
	assert.ErrorIs(t, errNameRequired, ErrInvalidArgument)
	assert.NotErrorIs(t, errNameRequired, ErrNotFound)

	wrapped := fmt.Errorf("バリデーションエラー: %w", errNameRequired)
	assert.ErrorIs(t, wrapped, errNameRequired)
	assert.ErrorIs(t, wrapped, ErrInvalidArgument)
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "種別そのもの", err: ErrSoldOut, want: ErrSoldOut},
		{name: "ドメインエラー", err: New(ErrOngoing, "x"), want: ErrOngoing},
		{name: "多重ラップ", err: fmt.Errorf("a: %w", fmt.Errorf("b: %w", New(ErrNotFound, "x"))), want: ErrNotFound},
		{name: "Wrap", err: Wrap(ErrTransferFailed, errors.New("boom")), want: ErrTransferFailed},
		{name: "種別なし", err: errors.New("unknown"), want: nil},
		{name: "nil", err: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}
