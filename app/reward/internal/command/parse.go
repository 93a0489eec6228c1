// Package command 运维指令的解析与执行
package command

import (
	"strconv"
	"strings"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
)

// Command 解析后的指令
type Command interface {
	Name() string
}

// MailHelp mail help
type MailHelp struct{}

// MailClear mail clear
type MailClear struct{}

// MailSend mail <id> [amount] 或 mail <type> <id[,id...]> [amount]
// Type 为 None 时按 ID 推断类型
type MailSend struct {
	Type   model.ParcelType
	IDs    []int64
	Amount int64
}

// MailInvalidType mail 指令的类型无法识别
type MailInvalidType struct {
	Raw string
}

// Search search <keyword>
type Search struct {
	Query string
}

// Inspect inspectitem <id|keyword>
type Inspect struct {
	Query string
}

// GachaHelp gacha
type GachaHelp struct{}

// GuaranteeShow gacha guarantee
type GuaranteeShow struct{}

// GuaranteeSet gacha guarantee <characterId>
type GuaranteeSet struct {
	CharacterID int64
}

// GuaranteeClear gacha guarantee clear
type GuaranteeClear struct{}

// Unknown 未知指令
type Unknown struct {
	Raw string
}

func (MailHelp) Name() string        { return "mail" }
func (MailClear) Name() string       { return "mail" }
func (MailSend) Name() string        { return "mail" }
func (MailInvalidType) Name() string { return "mail" }
func (Search) Name() string          { return "search" }
func (Inspect) Name() string         { return "inspectitem" }
func (GachaHelp) Name() string       { return "gacha" }
func (GuaranteeShow) Name() string   { return "gacha" }
func (GuaranteeSet) Name() string    { return "gacha" }
func (GuaranteeClear) Name() string  { return "gacha" }
func (Unknown) Name() string         { return "unknown" }

// Parse 解析一行指令, 前导 "/" 可省略
func Parse(line string) Command {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if len(fields) == 0 {
		return Unknown{}
	}

	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "mail":
		return parseMail(args)
	case "search":
		return Search{Query: strings.Join(args, " ")}
	case "inspectitem":
		return Inspect{Query: strings.Join(args, " ")}
	case "gacha":
		return parseGacha(args)
	default:
		return Unknown{Raw: fields[0]}
	}
}

func parseMail(args []string) Command {
	if len(args) == 0 || strings.EqualFold(args[0], "help") {
		return MailHelp{}
	}
	if strings.EqualFold(args[0], "clear") {
		return MailClear{}
	}

	// mail <id> [amount]
	if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
		cmd := MailSend{IDs: []int64{id}, Amount: 1}
		if len(args) > 1 {
			cmd.Amount = parseAmount(args[1])
		}
		return cmd
	}

	// mail <type> <id[,id...]> [amount]
	if len(args) < 2 {
		return MailHelp{}
	}
	t, err := model.ParseParcelType(args[0])
	if err != nil {
		return MailInvalidType{Raw: args[0]}
	}
	cmd := MailSend{Type: t, IDs: parseIDs(args[1]), Amount: 1}
	if len(args) > 2 {
		cmd.Amount = parseAmount(args[2])
	}
	return cmd
}

func parseGacha(args []string) Command {
	if len(args) == 0 || !strings.EqualFold(args[0], "guarantee") {
		return GachaHelp{}
	}
	if len(args) == 1 {
		return GuaranteeShow{}
	}
	if strings.EqualFold(args[1], "clear") {
		return GuaranteeClear{}
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return GachaHelp{}
	}
	return GuaranteeSet{CharacterID: id}
}

// parseIDs 逗号分隔, 无法解析的项记为 0
func parseIDs(s string) []int64 {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, _ := strconv.ParseInt(p, 10, 64)
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		ids = append(ids, 0)
	}
	return ids
}

func parseAmount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
