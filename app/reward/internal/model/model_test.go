package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParcelType(t *testing.T) {
	cases := map[string]ParcelType{
		"currency":  ParcelTypeCurrency,
		"ITEM":      ParcelTypeItem,
		"Equipment": ParcelTypeEquipment,
		"furniture": ParcelTypeFurniture,
		"1":         ParcelTypeCharacter,
		"13":        ParcelTypeFurniture,
	}
	for in, want := range cases {
		got, err := ParseParcelType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseParcelType("gold")
	assert.Error(t, err)
	_, err = ParseParcelType("5")
	assert.Error(t, err)
}

func TestParcelJSON(t *testing.T) {
	data, err := json.Marshal(Parcel{Type: ParcelTypeCurrency, ID: 4, Amount: 120})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Currency","id":4,"amount":120}`, string(data))

	var p Parcel
	require.NoError(t, json.Unmarshal([]byte(`{"type":"item","id":10,"amount":1}`), &p))
	assert.Equal(t, ParcelTypeItem, p.Type)
}

func TestShopCategory(t *testing.T) {
	c, err := ParseShopCategory("fesgacha")
	require.NoError(t, err)
	assert.Equal(t, ShopCategoryFesGacha, c)
	assert.True(t, c.IsGacha())
	assert.False(t, ShopCategoryGeneral.IsGacha())

	_, err = ParseShopCategory("Casino")
	assert.Error(t, err)
}

func TestMailLifecycle(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	m := &MailDB{ServerID: 1, ExpireDate: &past, ParcelInfos: []Parcel{{Type: ParcelTypeCurrency, ID: 1, Amount: 5}}}

	assert.False(t, m.Received())
	assert.True(t, m.Expired(now))

	c := m.Clone()
	c.ParcelInfos[0].Amount = 99
	c.ReceiptDate = &now
	assert.Equal(t, int64(5), m.ParcelInfos[0].Amount)
	assert.False(t, m.Received())
	assert.False(t, c.Expired(now))
}

func TestTouchItem(t *testing.T) {
	r := NewParcelResultDB()
	r.TouchItem(&ItemDB{ParcelType: ParcelTypeItem, UniqueID: 1, StackCount: 3})
	r.TouchItem(&ItemDB{ParcelType: ParcelTypeEquipment, UniqueID: 1, StackCount: 1})
	r.TouchItem(&ItemDB{ParcelType: ParcelTypeItem, UniqueID: 1, StackCount: 7})

	require.Len(t, r.Items, 2)
	assert.Equal(t, int64(7), r.Items[0].StackCount)
}

func TestAccountServerTime(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	a := &Account{TimeOffsetSeconds: 3600}
	assert.Equal(t, now.Add(time.Hour), a.ServerTime(now))
}
