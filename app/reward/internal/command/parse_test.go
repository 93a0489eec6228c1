package command

import (
	"testing"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"", Unknown{}},
		{"/mail", MailHelp{}},
		{"mail help", MailHelp{}},
		{"/mail CLEAR", MailClear{}},
		{"/mail 2", MailSend{IDs: []int64{2}, Amount: 1}},
		{"/mail 2 30", MailSend{IDs: []int64{2}, Amount: 30}},
		{"/mail 2 abc", MailSend{IDs: []int64{2}, Amount: 1}},
		{"/mail item", MailHelp{}},
		{"/mail item 2,3 5", MailSend{Type: model.ParcelTypeItem, IDs: []int64{2, 3}, Amount: 5}},
		{"/mail 4 1 -3", MailSend{IDs: []int64{4}, Amount: 1}},
		{"/mail Currency 1", MailSend{Type: model.ParcelTypeCurrency, IDs: []int64{1}, Amount: 1}},
		{"/mail pet 1", MailInvalidType{Raw: "pet"}},
		{"/mail item x", MailSend{Type: model.ParcelTypeItem, IDs: []int64{0}, Amount: 1}},
		{"/search Recruit Coin", Search{Query: "Recruit Coin"}},
		{"/search", Search{}},
		{"/inspectitem 2", Inspect{Query: "2"}},
		{"/gacha", GachaHelp{}},
		{"/gacha guarantee", GuaranteeShow{}},
		{"/gacha guarantee 10000", GuaranteeSet{CharacterID: 10000}},
		{"/gacha guarantee clear", GuaranteeClear{}},
		{"/gacha guarantee aru", GachaHelp{}},
		{"/teleport home", Unknown{Raw: "teleport"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.line))
		})
	}
}
