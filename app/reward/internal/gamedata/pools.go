package gamedata

import "github.com/lk2023060901/xdooria-reward/app/reward/internal/model"

// RarityPools 由已上线角色派生的招募池, 构建后只读
type RarityPools struct {
	// SSR 常驻 SSR
	SSR []int64
	SR  []int64
	R   []int64
	// Limited 限定 SSR
	Limited []int64
	// Fest 庆典 SSR
	Fest []int64
}

func buildPools(chars []*CharacterExcel) *RarityPools {
	p := &RarityPools{}
	for _, c := range chars {
		if !c.Released() {
			continue
		}
		switch c.IsLimited {
		case LimitPermanent:
			switch c.Rarity {
			case model.RaritySSR:
				p.SSR = append(p.SSR, c.ID)
			case model.RaritySR:
				p.SR = append(p.SR, c.ID)
			case model.RarityR:
				p.R = append(p.R, c.ID)
			}
		case LimitLimited:
			if c.Rarity == model.RaritySSR {
				p.Limited = append(p.Limited, c.ID)
			}
		case LimitFest:
			if c.Rarity == model.RaritySSR {
				p.Fest = append(p.Fest, c.ID)
			}
		}
	}
	return p
}
