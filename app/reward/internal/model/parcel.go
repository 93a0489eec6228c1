package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ParcelType 资源类型
type ParcelType int32

const (
	ParcelTypeNone      ParcelType = 0
	ParcelTypeCharacter ParcelType = 1
	ParcelTypeCurrency  ParcelType = 2
	ParcelTypeEquipment ParcelType = 3
	ParcelTypeItem      ParcelType = 4
	ParcelTypeFurniture ParcelType = 13
)

var parcelTypeNames = map[ParcelType]string{
	ParcelTypeCharacter: "Character",
	ParcelTypeCurrency:  "Currency",
	ParcelTypeEquipment: "Equipment",
	ParcelTypeItem:      "Item",
	ParcelTypeFurniture: "Furniture",
}

func (t ParcelType) String() string {
	if name, ok := parcelTypeNames[t]; ok {
		return name
	}
	return "ParcelType(" + strconv.Itoa(int(t)) + ")"
}

// Valid 是否为已知类型
func (t ParcelType) Valid() bool {
	_, ok := parcelTypeNames[t]
	return ok
}

// IsStack 是否以堆叠行存储 (道具/装备/家具)
func (t ParcelType) IsStack() bool {
	return t == ParcelTypeItem || t == ParcelTypeEquipment || t == ParcelTypeFurniture
}

// ParseParcelType 解析类型名 (忽略大小写) 或数字编码
func ParseParcelType(s string) (ParcelType, error) {
	s = strings.TrimSpace(s)
	for t, name := range parcelTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		if t := ParcelType(n); t.Valid() {
			return t, nil
		}
	}
	return ParcelTypeNone, fmt.Errorf("unknown parcel type %q", s)
}

// MarshalText 以类型名编码
func (t ParcelType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown parcel type %d", int32(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText 接受类型名或数字编码
func (t *ParcelType) UnmarshalText(text []byte) error {
	v, err := ParseParcelType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Parcel 资源变更意图, 数量恒为正, 扣除由解析模式决定
type Parcel struct {
	Type   ParcelType `json:"type"`
	ID     int64      `json:"id"`
	Amount int64      `json:"amount"`
}

func (p Parcel) String() string {
	return fmt.Sprintf("%s:%d x%d", p.Type, p.ID, p.Amount)
}
