package flow

import (
	"fmt"
	"time"

	"github.com/grillpoint/grillpoint-bot/internal/telegram"
)

func btn(text, data string) telegram.InlineKeyboardButton {
	return telegram.InlineKeyboardButton{Text: text, CallbackData: data}
}

func inline(rows ...[]telegram.InlineKeyboardButton) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func kbMain() *telegram.InlineKeyboardMarkup {
	return inline(
		[]telegram.InlineKeyboardButton{btn("📋 Меню", cbMenuOpen)},
		[]telegram.InlineKeyboardButton{btn("ℹ️ О нас", cbAbout), btn("⭐ Отзывы", cbReviewsOpen)},
	)
}

func kbHome() *telegram.InlineKeyboardMarkup {
	return inline([]telegram.InlineKeyboardButton{btn("🏠 На главную", cbHome)})
}

func kbRestart() *telegram.InlineKeyboardMarkup {
	return inline(
		[]telegram.InlineKeyboardButton{btn("🔄 Начать заново", cbRestart)},
		[]telegram.InlineKeyboardButton{btn("▶️ Продолжить", cbKeep)},
	)
}

func kbCategories(names []string) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(names))
	for _, name := range names {
		rows = append(rows, []telegram.InlineKeyboardButton{btn(name, prefixCategory+name)})
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// kbItemAdd — клавиатура карточки товара без позиций в корзине.
func kbItemAdd(itemID string) *telegram.InlineKeyboardMarkup {
	return inline([]telegram.InlineKeyboardButton{btn("Добавить в корзину", prefixItemAdd+itemID)})
}

// kbItemQty — панель количества на карточке товара.
func kbItemQty(itemID string, qty int) *telegram.InlineKeyboardMarkup {
	return inline(
		[]telegram.InlineKeyboardButton{
			btn("➖", prefixItemDec+itemID),
			btn(fmt.Sprintf("%d", qty), cbNoop),
			btn("➕", prefixItemInc+itemID),
		},
		[]telegram.InlineKeyboardButton{btn("🛒 В корзину", cbCartOpen)},
	)
}

func kbCart() *telegram.InlineKeyboardMarkup {
	return inline(
		[]telegram.InlineKeyboardButton{btn("✅ Продолжить", cbCartContinue)},
		[]telegram.InlineKeyboardButton{btn("✏️ Изменить", cbCartEdit)},
	)
}

func kbCommentSkip() *telegram.InlineKeyboardMarkup {
	return inline([]telegram.InlineKeyboardButton{btn("Пропустить ➡️", cbCommentSkip)})
}

func kbCommentConfirm() *telegram.InlineKeyboardMarkup {
	return inline(
		[]telegram.InlineKeyboardButton{btn("✅ Сохранить", cbCommentSave)},
		[]telegram.InlineKeyboardButton{btn("✏️ Переписать", cbCommentEdit)},
	)
}

func kbMethod() *telegram.InlineKeyboardMarkup {
	return inline(
		[]telegram.InlineKeyboardButton{btn("🚗 Доставка", cbMethodDeliv)},
		[]telegram.InlineKeyboardButton{btn("🏃 Самовывоз", cbMethodPickup)},
	)
}

func kbAddressChoice() *telegram.InlineKeyboardMarkup {
	return inline(
		[]telegram.InlineKeyboardButton{btn("⌨️ Написать текстом", cbAddrManual)},
		[]telegram.InlineKeyboardButton{btn("📍 Моя геолокация", cbAddrGeo)},
		[]telegram.InlineKeyboardButton{btn("🗺 Точка на карте", cbAddrPin)},
		[]telegram.InlineKeyboardButton{btn("⬅️ Назад", cbAddrBack)},
	)
}

func kbAddressConfirm() *telegram.InlineKeyboardMarkup {
	return inline(
		[]telegram.InlineKeyboardButton{btn("✅ Сохранить", cbAddrSave)},
		[]telegram.InlineKeyboardButton{btn("✏️ Изменить", cbAddrEdit)},
	)
}

func kbOutOfZone() *telegram.InlineKeyboardMarkup {
	return inline([]telegram.InlineKeyboardButton{btn("⬅️ Выбрать самовывоз", cbAddrBack)})
}

func kbPickup() *telegram.InlineKeyboardMarkup {
	return inline(
		[]telegram.InlineKeyboardButton{btn("✅ Подходит", cbPickupOK)},
		[]telegram.InlineKeyboardButton{btn("⬅️ Назад", cbAddrBack)},
	)
}

func kbDates(now time.Time) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, dateHorizonDays)
	for _, d := range dateOptions(now) {
		rows = append(rows, []telegram.InlineKeyboardButton{
			btn(formatDateButton(d), prefixDate+d.Format(dateKeyLayout)),
		})
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// kbSlots раскладывает слоты времени по четыре в ряд.
func kbSlots(slots []time.Time) *telegram.InlineKeyboardMarkup {
	const perRow = 4
	var rows [][]telegram.InlineKeyboardButton
	var row []telegram.InlineKeyboardButton
	for _, s := range slots {
		row = append(row, btn(formatSlot(s), prefixSlot+s.Format(slotKeyLayout)))
		if len(row) == perRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func kbTimeConfirm() *telegram.InlineKeyboardMarkup {
	return inline(
		[]telegram.InlineKeyboardButton{btn("✅ Подтвердить", cbTimeConfirm)},
		[]telegram.InlineKeyboardButton{btn("✏️ Другое время", cbTimeEdit)},
	)
}

func kbOrderConfirm() *telegram.InlineKeyboardMarkup {
	return inline(
		[]telegram.InlineKeyboardButton{btn("✅ Подтверждаю", cbOrderConfirm)},
		[]telegram.InlineKeyboardButton{btn("✏️ Изменить", cbOrderEdit)},
		[]telegram.InlineKeyboardButton{btn("❌ Отменить", cbOrderCancel)},
	)
}

func kbReviews() *telegram.InlineKeyboardMarkup {
	return inline(
		[]telegram.InlineKeyboardButton{btn("✍️ Оставить отзыв", cbReviewNew)},
		[]telegram.InlineKeyboardButton{btn("🏠 На главную", cbHome)},
	)
}

func kbRates() *telegram.InlineKeyboardMarkup {
	row := make([]telegram.InlineKeyboardButton, 0, 5)
	for i := 1; i <= 5; i++ {
		row = append(row, btn(fmt.Sprintf("%d⭐", i), fmt.Sprintf("%s%d", prefixRate, i)))
	}
	return inline(row)
}

func kbReviewSkip() *telegram.InlineKeyboardMarkup {
	return inline([]telegram.InlineKeyboardButton{btn("Без текста ➡️", cbReviewSkip)})
}

// kbRequestLocation — reply-клавиатура запроса геопозиции.
func kbRequestLocation() *telegram.ReplyKeyboardMarkup {
	return &telegram.ReplyKeyboardMarkup{
		Keyboard: [][]telegram.KeyboardButton{
			{{Text: "📍 Отправить геолокацию", RequestLocation: true}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// kbRequestContact — reply-клавиатура запроса номера телефона.
func kbRequestContact() *telegram.ReplyKeyboardMarkup {
	return &telegram.ReplyKeyboardMarkup{
		Keyboard: [][]telegram.KeyboardButton{
			{{Text: "📱 Отправить мой номер", RequestContact: true}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}
