package flow

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/grillpoint/grillpoint-bot/internal/model"
)

// FormatKopecks печатает сумму в копейках как рубли без лишних нулей:
// 12300 -> "123", 12350 -> "123.5", 12345 -> "123.45".
func FormatKopecks(v int64) string {
	rub := v / 100
	kop := v % 100
	if kop < 0 {
		kop = -kop
	}
	switch {
	case kop == 0:
		return fmt.Sprintf("%d", rub)
	case kop%10 == 0:
		return fmt.Sprintf("%d.%d", rub, kop/10)
	default:
		return fmt.Sprintf("%d.%02d", rub, kop)
	}
}

var weekdayShort = [...]string{"вс", "пн", "вт", "ср", "чт", "пт", "сб"}

// formatDateButton печатает дату для кнопки выбора: "30.08 (сб)".
func formatDateButton(t time.Time) string {
	return fmt.Sprintf("%02d.%02d (%s)", t.Day(), int(t.Month()), weekdayShort[int(t.Weekday())])
}

// formatSlot печатает время слота: "12:40".
func formatSlot(t time.Time) string {
	return t.Format("15:04")
}

// formatSchedule печатает дату и время получения: "30.08 в 12:40".
func formatSchedule(t time.Time) string {
	return fmt.Sprintf("%02d.%02d в %s", t.Day(), int(t.Month()), t.Format("15:04"))
}

// lookupItem описывает минимум каталога, нужный для печати корзины.
type lookupItem interface {
	ItemByID(id string) (model.MenuItem, bool)
}

// buildCartLines печатает строки корзины в порядке добавления. Позиции,
// которых больше нет в каталоге, пропускаются.
func buildCartLines(cart model.Cart, catalog lookupItem) (string, int64) {
	var b strings.Builder
	var total int64
	for _, line := range cart.Lines {
		item, ok := catalog.ItemByID(line.ItemID)
		if !ok {
			continue
		}
		sum := item.PriceKopecks * int64(line.Quantity)
		total += sum
		fmt.Fprintf(&b, "• %s × %d — %s ₽\n", html.EscapeString(item.Name), line.Quantity, FormatKopecks(sum))
	}
	return b.String(), total
}

// buildCartSummary печатает карточку корзины.
func buildCartSummary(cart model.Cart, catalog lookupItem) string {
	lines, total := buildCartLines(cart, catalog)
	return fmt.Sprintf("🛒 <b>Ваша корзина</b>\n\n%s\n<b>Итого: %s ₽</b>", lines, FormatKopecks(total))
}

// buildOrderSummary печатает финальную карточку подтверждения заказа.
func buildOrderSummary(s *model.Session, catalog lookupItem) string {
	lines, total := buildCartLines(s.Cart, catalog)

	var b strings.Builder
	b.WriteString("📝 <b>Ваш заказ</b>\n\n")
	b.WriteString(lines)
	fmt.Fprintf(&b, "\n<b>Итого: %s ₽</b>\n\n", FormatKopecks(total))

	if s.Draft.Method == model.MethodDelivery {
		fmt.Fprintf(&b, "🚗 Доставка: %s\n", html.EscapeString(s.Draft.AddressDisplay))
	} else {
		fmt.Fprintf(&b, "🏃 Самовывоз: %s\n", html.EscapeString(s.Draft.AddressDisplay))
	}
	if s.Draft.ScheduledAt != nil {
		fmt.Fprintf(&b, "🕒 Время: %s\n", formatSchedule(*s.Draft.ScheduledAt))
	}
	fmt.Fprintf(&b, "📱 Телефон: %s\n", html.EscapeString(s.Draft.PhoneDisplay))
	if s.Comment != "" {
		fmt.Fprintf(&b, "💬 Комментарий: %s\n", html.EscapeString(s.Comment))
	}
	b.WriteString("\nВсё верно?")
	return b.String()
}
