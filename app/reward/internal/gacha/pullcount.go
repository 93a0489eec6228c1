package gacha

import "github.com/lk2023060901/xdooria-reward/app/reward/internal/model"

const (
	// DefaultPullCount 无法换算时的抽数
	DefaultPullCount int64 = 10
	// DefaultUnitPrice 单抽货币价格
	DefaultUnitPrice int64 = 120
)

// ItemPullCounter 招募券对应的抽数, 0 表示非招募券
type ItemPullCounter func(itemID int64) int64

// PullCount 由消耗计算抽数, 以最后一个消耗项为准, 结果至少为 1
func PullCount(cost []model.Parcel, unitPrice int64, itemPulls ItemPullCounter) int64 {
	if unitPrice <= 0 {
		unitPrice = DefaultUnitPrice
	}

	count := DefaultPullCount
	for _, p := range cost {
		switch p.Type {
		case model.ParcelTypeCurrency:
			count = p.Amount / unitPrice
		case model.ParcelTypeItem:
			count = DefaultPullCount
			if itemPulls != nil {
				if n := itemPulls(p.ID); n > 0 {
					count = n
				}
			}
		default:
			count = DefaultPullCount
		}
	}

	if count < 1 {
		count = 1
	}
	return count
}
