// Package notify отправляет оператору карточки новых заказов.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/grillpoint/grillpoint-bot/internal/flow"
	"github.com/grillpoint/grillpoint-bot/internal/model"
	"github.com/grillpoint/grillpoint-bot/internal/telegram"
)

// Sender — часть Bot API для отправки уведомлений.
type Sender interface {
	SendMessage(ctx context.Context, p telegram.SendMessageParams) (int, error)
}

// AdminNotifier шлёт уведомления в операторский чат.
type AdminNotifier struct {
	bot    Sender
	chatID int64
}

// NewAdminNotifier создаёт уведомитель операторского чата.
func NewAdminNotifier(bot Sender, chatID int64) *AdminNotifier {
	return &AdminNotifier{bot: bot, chatID: chatID}
}

// NotifyOrder отправляет оператору карточку нового заказа.
func (n *AdminNotifier) NotifyOrder(ctx context.Context, o *model.Order) error {
	_, err := n.bot.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:    n.chatID,
		Text:      BuildOrderCard(o),
		ParseMode: telegram.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send admin notification: %w", err)
	}
	return nil
}

// BuildOrderCard собирает текст операторской карточки заказа.
func BuildOrderCard(o *model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔔 <b>Новый заказ</b> <code>#%s</code>\n\n", html.EscapeString(shortID(o.ID)))

	name := o.UserName
	if name == "" {
		name = "без имени"
	}
	fmt.Fprintf(&b, "👤 %s (id %d)\n", html.EscapeString(name), o.UserID)
	fmt.Fprintf(&b, "📱 %s\n", html.EscapeString(o.Delivery.PhoneDisplay))

	if o.Delivery.Method == model.MethodDelivery {
		fmt.Fprintf(&b, "🚗 Доставка: %s\n", html.EscapeString(o.Delivery.AddressDisplay))
	} else {
		fmt.Fprintf(&b, "🏃 Самовывоз: %s\n", html.EscapeString(o.Delivery.AddressDisplay))
	}
	if o.Delivery.ScheduledAt != nil {
		at := *o.Delivery.ScheduledAt
		fmt.Fprintf(&b, "🕒 %02d.%02d в %s\n", at.Day(), int(at.Month()), at.Format("15:04"))
	}
	b.WriteString("\n")

	for _, l := range o.Lines {
		fmt.Fprintf(&b, "• %s × %d — %s ₽\n",
			html.EscapeString(l.ItemName), l.Quantity, flow.FormatKopecks(l.TotalKopecks))
	}
	fmt.Fprintf(&b, "\n<b>Итого: %s ₽</b>\n", flow.FormatKopecks(o.Total()))

	if o.Comment != "" {
		fmt.Fprintf(&b, "\n💬 %s\n", html.EscapeString(o.Comment))
	}
	return b.String()
}

func shortID(id string) string {
	const short = 8
	if len(id) > short {
		return id[:short]
	}
	return id
}

