package command

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gamedata"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/service"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
)

const (
	gmSender      = "Schale"
	gmComment     = "Items sent by GM"
	gmMailExpire  = 7 * 24 * time.Hour
	searchListMax = 10
)

var mailHelp = []string{
	"/mail - Command to sending mail to player",
	"Usage: /mail [type] [id,...] [amount]",
	"Type: currency | equipment | item |  furniture - 2/3/4/13",
	"Support sending multiple items of the same type, use ',' to separate each ID",
	"You can find item ID at schaledb.com",
	"If the client abnormal after sending email, use '/mail clear' to fix it.",
}

var gachaHelp = []string{
	"/gacha - Command to control the next recruitment",
	"Usage: /gacha guarantee [characterId|clear]",
}

// Dispatcher 执行运维指令, 结果以文本行返回
type Dispatcher struct {
	index  *gamedata.Index
	mail   *service.MailService
	gacha  *service.GachaService
	logger logger.Logger
	now    func() time.Time
}

func NewDispatcher(index *gamedata.Index, mail *service.MailService, gacha *service.GachaService, l logger.Logger) *Dispatcher {
	return &Dispatcher{
		index:  index,
		mail:   mail,
		gacha:  gacha,
		logger: l.Named("command"),
		now:    time.Now,
	}
}

// Execute 对目标账号执行一行指令
// 指令本身的用法错误以文本返回, 只有存储层失败才返回 error
func (d *Dispatcher) Execute(ctx context.Context, accountID int64, line string) ([]string, error) {
	cmd := Parse(line)
	d.logger.InfoContext(ctx, "execute command", "account_id", accountID, "command", cmd.Name(), "line", line)

	switch c := cmd.(type) {
	case MailHelp:
		return mailHelp, nil
	case MailInvalidType:
		return []string{"Error: Invalid type"}, nil
	case MailClear:
		return d.mailClear(ctx, accountID)
	case MailSend:
		return d.mailSend(ctx, accountID, c)
	case Search:
		return d.search(c), nil
	case Inspect:
		return d.inspect(c), nil
	case GachaHelp:
		return gachaHelp, nil
	case GuaranteeShow:
		id, err := d.gacha.Guarantee(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if id == 0 {
			return []string{"No gacha guarantee set"}, nil
		}
		return []string{fmt.Sprintf("Current guarantee: %s", d.characterLabel(id))}, nil
	case GuaranteeSet:
		if char, ok := d.index.Character(c.CharacterID); !ok || !char.Released() {
			return []string{fmt.Sprintf("Error: Could not find character with ID %d", c.CharacterID)}, nil
		}
		if err := d.gacha.SetGuarantee(ctx, accountID, c.CharacterID); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Next recruitment will guarantee %s", d.characterLabel(c.CharacterID))}, nil
	case GuaranteeClear:
		if err := d.gacha.ClearGuarantee(ctx, accountID); err != nil {
			return nil, err
		}
		return []string{"Gacha guarantee cleared"}, nil
	case Unknown:
		return []string{fmt.Sprintf("Unknown command: %s", c.Raw)}, nil
	default:
		return nil, fmt.Errorf("unhandled command %T", cmd)
	}
}

func (d *Dispatcher) mailClear(ctx context.Context, accountID int64) ([]string, error) {
	n, err := d.mail.ClearUnread(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []string{"No emails to delete"}, nil
	}
	return []string{fmt.Sprintf("Deleted %d unread mail", n)}, nil
}

func (d *Dispatcher) mailSend(ctx context.Context, accountID int64, c MailSend) ([]string, error) {
	t := c.Type
	if t == model.ParcelTypeNone {
		found, ok := d.index.FindParcelType(c.IDs[0])
		if !ok {
			return []string{fmt.Sprintf("Error: Could not find item with ID %d", c.IDs[0])}, nil
		}
		t = found
	}

	parcels := make([]model.Parcel, 0, len(c.IDs))
	for _, id := range c.IDs {
		if !d.index.Exists(t, id) {
			return []string{fmt.Sprintf("Error: Could not find item with ID %d", id)}, nil
		}
		parcels = append(parcels, model.Parcel{Type: t, ID: id, Amount: c.Amount})
	}

	expire := d.now().Add(gmMailExpire)
	if _, err := d.mail.SendSystemMail(ctx, accountID, &service.MailTemplate{
		Sender:   gmSender,
		Comment:  gmComment,
		Parcels:  parcels,
		ExpireAt: &expire,
	}); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(parcels)+1)
	for _, p := range parcels {
		out = append(out, fmt.Sprintf("Sent %dx %s (ID: %d) via mail!", p.Amount, p.Type, p.ID))
	}
	return append(out, "Please check your mailbox."), nil
}

func (d *Dispatcher) search(c Search) []string {
	if c.Query == "" {
		return []string{"Usage: /search [name]"}
	}
	matches := d.index.SearchItems(c.Query)
	if len(matches) == 0 {
		return []string{fmt.Sprintf("No items found matching '%s'", c.Query)}
	}

	out := []string{fmt.Sprintf("Found %d items:", len(matches))}
	for i, m := range matches {
		if i == searchListMax {
			out = append(out, fmt.Sprintf("...and %d more.", len(matches)-searchListMax))
			break
		}
		out = append(out, m.String())
	}
	return out
}

func (d *Dispatcher) inspect(c Inspect) []string {
	if c.Query == "" {
		return []string{"Usage: /inspectitem [id|name]"}
	}
	blocks := d.index.InspectItems(c.Query)
	if len(blocks) == 0 {
		return []string{fmt.Sprintf("No items found matching '%s'", c.Query)}
	}

	var out []string
	for i, b := range blocks {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, b...)
	}
	return out
}

func (d *Dispatcher) characterLabel(id int64) string {
	if char, ok := d.index.Character(id); ok && char.DevName != "" {
		return fmt.Sprintf("%s (ID: %d)", char.DevName, id)
	}
	return fmt.Sprintf("ID: %d", id)
}
