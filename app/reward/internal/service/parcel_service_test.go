package service

import (
	"context"
	"testing"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/errcode"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveGrantAndConsume(t *testing.T) {
	h := newHarness(t, constRNG{})
	ctx := context.Background()

	var granted *model.ParcelResultDB
	err := h.store.InAccountTx(ctx, testAccountID, func(ctx context.Context, l repository.Ledger) error {
		var err error
		granted, err = h.parcels.Resolve(ctx, l, []model.Parcel{
			currency(1, 300),
			{Type: model.ParcelTypeItem, ID: 3, Amount: 5},
			{Type: model.ParcelTypeItem, ID: 3, Amount: 2},
			{Type: model.ParcelTypeEquipment, ID: 4, Amount: 1},
		}, ModeGrant)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(300), granted.AccountCurrency.Balances[1])
	require.Len(t, granted.Items, 2)
	assert.Equal(t, int64(7), granted.Items[0].StackCount)
	assert.Equal(t, int64(7), granted.SumAmount(model.ParcelTypeItem, 3))

	var consumed *model.ParcelResultDB
	err = h.store.InAccountTx(ctx, testAccountID, func(ctx context.Context, l repository.Ledger) error {
		var err error
		consumed, err = h.parcels.Resolve(ctx, l, []model.Parcel{
			currency(1, 100),
			{Type: model.ParcelTypeItem, ID: 3, Amount: 7},
		}, ModeConsume)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(200), consumed.AccountCurrency.Balances[1])
	require.Len(t, consumed.Items, 1)
	assert.Zero(t, consumed.Items[0].StackCount)
}

func TestResolveConsumeInsufficient(t *testing.T) {
	h := newHarness(t, constRNG{})
	h.grant(t, currency(4, 100))

	err := h.store.InAccountTx(context.Background(), testAccountID, func(ctx context.Context, l repository.Ledger) error {
		_, err := h.parcels.Resolve(ctx, l, []model.Parcel{currency(4, 60), currency(4, 60)}, ModeConsume)
		return err
	})
	assert.True(t, errcode.Is(err, errcode.ErrInsufficientResources))
	// 事务回滚, 余额不变
	assert.Equal(t, int64(100), h.balance(t, 4))

	err = h.store.InAccountTx(context.Background(), testAccountID, func(ctx context.Context, l repository.Ledger) error {
		_, err := h.parcels.Resolve(ctx, l, []model.Parcel{{Type: model.ParcelTypeItem, ID: 2, Amount: 1}}, ModeConsume)
		return err
	})
	assert.True(t, errcode.Is(err, errcode.ErrInsufficientResources))
}

func TestResolveRejectsBadParcels(t *testing.T) {
	h := newHarness(t, constRNG{})

	cases := []struct {
		name   string
		parcel model.Parcel
		mode   Mode
		kind   error
	}{
		{"unknown currency", currency(77, 1), ModeGrant, errcode.ErrDataNotFound},
		{"unknown item", model.Parcel{Type: model.ParcelTypeItem, ID: 77, Amount: 1}, ModeGrant, errcode.ErrDataNotFound},
		{"unknown character", model.Parcel{Type: model.ParcelTypeCharacter, ID: 77, Amount: 1}, ModeGrant, errcode.ErrDataNotFound},
		{"zero amount", currency(1, 0), ModeGrant, errcode.ErrInvalidArgument},
		{"unsupported type", model.Parcel{Type: model.ParcelTypeNone, ID: 1, Amount: 1}, ModeGrant, errcode.ErrInvalidArgument},
		{"consume character", model.Parcel{Type: model.ParcelTypeCharacter, ID: 10000, Amount: 1}, ModeConsume, errcode.ErrInvariantViolation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := h.store.InAccountTx(context.Background(), testAccountID, func(ctx context.Context, l repository.Ledger) error {
				_, err := h.parcels.Resolve(ctx, l, []model.Parcel{tc.parcel}, tc.mode)
				return err
			})
			assert.True(t, errcode.Is(err, tc.kind), "got %v", err)
		})
	}
}

func TestGrantDuplicateCharacterConvertsToStone(t *testing.T) {
	h := newHarness(t, constRNG{})
	ctx := context.Background()

	var result *model.ParcelResultDB
	err := h.store.InAccountTx(ctx, testAccountID, func(ctx context.Context, l repository.Ledger) error {
		var err error
		result, err = h.parcels.Resolve(ctx, l, []model.Parcel{
			{Type: model.ParcelTypeCharacter, ID: 10000, Amount: 2},
		}, ModeGrant)
		return err
	})
	require.NoError(t, err)

	require.Len(t, result.Characters, 1)
	assert.Equal(t, int64(10000), result.Characters[0].UniqueID)
	assert.Equal(t, int32(3), result.Characters[0].StarGrade)
	require.Len(t, result.DuplicateToStone, 1)
	assert.Equal(t, int64(9000), result.DuplicateToStone[0].UniqueID)
	assert.Equal(t, int64(50), result.DuplicateToStone[0].StackCount)

	chars, err := h.store.Characters(ctx, testAccountID)
	require.NoError(t, err)
	assert.Len(t, chars, 1)
	assert.Equal(t, int64(50), h.stack(t, model.ParcelTypeItem, 9000))
}
