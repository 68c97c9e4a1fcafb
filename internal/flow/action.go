// Package flow реализует диалоговый движок приёма заказов: конечный автомат
// фаз, корзину, подэтапы оформления и жизненный цикл эфемерных сообщений.
package flow

import (
	"strings"

	"github.com/grillpoint/grillpoint-bot/internal/telegram"
)

// ActionKind — закрытое множество видов действий пользователя.
type ActionKind int

const (
	// ActionNoop — пустое действие, требующее только подтверждения кнопки.
	ActionNoop ActionKind = iota
	// ActionStart — команда /start.
	ActionStart
	// ActionOpenMenu — открыть категории меню.
	ActionOpenMenu
	// ActionAbout — экран «О нас».
	ActionAbout
	// ActionHome — вернуться на приветственный экран.
	ActionHome
	// ActionRestart — начать сессию заново.
	ActionRestart
	// ActionKeepSession — продолжить прежнюю сессию.
	ActionKeepSession

	// ActionCategoryPick — выбор категории, payload — имя категории.
	ActionCategoryPick
	// ActionItemAdd — открыть панель количества, payload — id товара.
	ActionItemAdd
	// ActionItemInc — увеличить количество, payload — id товара.
	ActionItemInc
	// ActionItemDec — уменьшить количество, payload — id товара.
	ActionItemDec

	// ActionOpenCart — показать корзину.
	ActionOpenCart
	// ActionCartEdit — вернуться из корзины к категориям.
	ActionCartEdit
	// ActionCartContinue — перейти из корзины к комментарию.
	ActionCartContinue

	// ActionCommentSkip — пропустить комментарий.
	ActionCommentSkip
	// ActionCommentSave — сохранить черновик комментария.
	ActionCommentSave
	// ActionCommentEdit — переписать комментарий.
	ActionCommentEdit

	// ActionMethodDelivery — способ получения: доставка.
	ActionMethodDelivery
	// ActionMethodPickup — способ получения: самовывоз.
	ActionMethodPickup

	// ActionAddrManual — указать адрес текстом.
	ActionAddrManual
	// ActionAddrGeoCurrent — отправить текущую геопозицию.
	ActionAddrGeoCurrent
	// ActionAddrGeoPin — указать точку на карте.
	ActionAddrGeoPin
	// ActionAddrSave — сохранить распознанный адрес.
	ActionAddrSave
	// ActionAddrEdit — выбрать другой способ указания адреса.
	ActionAddrEdit
	// ActionAddrBack — вернуться к выбору способа получения.
	ActionAddrBack

	// ActionPickupConfirm — подтвердить точку самовывоза.
	ActionPickupConfirm

	// ActionDatePick — выбор даты, payload — ГГГГММДД.
	ActionDatePick
	// ActionSlotPick — выбор слота, payload — ГГГГММДДЧЧММ.
	ActionSlotPick
	// ActionTimeConfirm — подтвердить выбранное время.
	ActionTimeConfirm
	// ActionTimeEdit — выбрать другое время.
	ActionTimeEdit

	// ActionOrderConfirm — подтвердить заказ.
	ActionOrderConfirm
	// ActionOrderCancel — отменить заказ.
	ActionOrderCancel
	// ActionOrderEdit — вернуться к способу получения.
	ActionOrderEdit

	// ActionReviewsOpen — показать отзывы.
	ActionReviewsOpen
	// ActionReviewNew — оставить отзыв.
	ActionReviewNew
	// ActionReviewRate — оценка отзыва, payload — цифра 1..5.
	ActionReviewRate
	// ActionReviewSkip — отзыв без текста.
	ActionReviewSkip

	// ActionText — свободный текст пользователя.
	ActionText
	// ActionLocation — переданная геопозиция.
	ActionLocation
	// ActionContact — переданный контакт.
	ActionContact
)

// Action — разобранное действие пользователя.
type Action struct {
	Kind    ActionKind
	Payload string
	Text    string
	Lat     float64
	Lon     float64
	Phone   string
}

// Данные callback-кнопок. Формат: префикс варианта плюс полезная нагрузка.
const (
	cbMenuOpen     = "menu:open"
	cbAbout        = "about"
	cbHome         = "home"
	cbRestart      = "session:restart"
	cbKeep         = "session:keep"
	cbNoop         = "noop"
	prefixCategory = "cat:"
	prefixItemAdd  = "item:add;"
	prefixItemInc  = "item:inc;"
	prefixItemDec  = "item:dec;"
	cbCartOpen     = "cart:open"
	cbCartEdit     = "cart:edit"
	cbCartContinue = "cart:continue"
	cbCommentSkip  = "comment:skip"
	cbCommentSave  = "comment:save"
	cbCommentEdit  = "comment:edit"
	cbMethodDeliv  = "checkout:method:delivery"
	cbMethodPickup = "checkout:method:pickup"
	cbAddrManual   = "addr:mode:manual"
	cbAddrGeo      = "addr:mode:geo"
	cbAddrPin      = "addr:mode:pin"
	cbAddrSave     = "addr:save"
	cbAddrEdit     = "addr:edit"
	cbAddrBack     = "addr:back"
	cbPickupOK     = "pickup:confirm"
	prefixDate     = "time:date:"
	prefixSlot     = "time:slot:"
	cbTimeConfirm  = "time:confirm"
	cbTimeEdit     = "time:edit"
	cbOrderConfirm = "order:confirm"
	cbOrderCancel  = "order:cancel"
	cbOrderEdit    = "order:edit"
	cbReviewsOpen  = "reviews:open"
	cbReviewNew    = "review:new"
	prefixRate     = "review:rate:"
	cbReviewSkip   = "review:skip"
)

// ParseCallback разбирает callback-данные кнопки в действие.
// Неизвестные данные становятся ActionNoop.
func ParseCallback(data string) Action {
	switch data {
	case cbMenuOpen:
		return Action{Kind: ActionOpenMenu}
	case cbAbout:
		return Action{Kind: ActionAbout}
	case cbHome:
		return Action{Kind: ActionHome}
	case cbRestart:
		return Action{Kind: ActionRestart}
	case cbKeep:
		return Action{Kind: ActionKeepSession}
	case cbCartOpen:
		return Action{Kind: ActionOpenCart}
	case cbCartEdit:
		return Action{Kind: ActionCartEdit}
	case cbCartContinue:
		return Action{Kind: ActionCartContinue}
	case cbCommentSkip:
		return Action{Kind: ActionCommentSkip}
	case cbCommentSave:
		return Action{Kind: ActionCommentSave}
	case cbCommentEdit:
		return Action{Kind: ActionCommentEdit}
	case cbMethodDeliv:
		return Action{Kind: ActionMethodDelivery}
	case cbMethodPickup:
		return Action{Kind: ActionMethodPickup}
	case cbAddrManual:
		return Action{Kind: ActionAddrManual}
	case cbAddrGeo:
		return Action{Kind: ActionAddrGeoCurrent}
	case cbAddrPin:
		return Action{Kind: ActionAddrGeoPin}
	case cbAddrSave:
		return Action{Kind: ActionAddrSave}
	case cbAddrEdit:
		return Action{Kind: ActionAddrEdit}
	case cbAddrBack:
		return Action{Kind: ActionAddrBack}
	case cbPickupOK:
		return Action{Kind: ActionPickupConfirm}
	case cbTimeConfirm:
		return Action{Kind: ActionTimeConfirm}
	case cbTimeEdit:
		return Action{Kind: ActionTimeEdit}
	case cbOrderConfirm:
		return Action{Kind: ActionOrderConfirm}
	case cbOrderCancel:
		return Action{Kind: ActionOrderCancel}
	case cbOrderEdit:
		return Action{Kind: ActionOrderEdit}
	case cbReviewsOpen:
		return Action{Kind: ActionReviewsOpen}
	case cbReviewNew:
		return Action{Kind: ActionReviewNew}
	case cbReviewSkip:
		return Action{Kind: ActionReviewSkip}
	}

	for prefix, kind := range map[string]ActionKind{
		prefixCategory: ActionCategoryPick,
		prefixItemAdd:  ActionItemAdd,
		prefixItemInc:  ActionItemInc,
		prefixItemDec:  ActionItemDec,
		prefixDate:     ActionDatePick,
		prefixSlot:     ActionSlotPick,
		prefixRate:     ActionReviewRate,
	} {
		if strings.HasPrefix(data, prefix) {
			return Action{Kind: kind, Payload: strings.TrimPrefix(data, prefix)}
		}
	}

	return Action{Kind: ActionNoop}
}

// ParseMessage разбирает входящее сообщение в действие. Текст, совпадающий
// с именем категории, трактуется как выбор категории до любых других веток.
func ParseMessage(msg *telegram.Message, categories []string) Action {
	if msg.Contact != nil {
		return Action{Kind: ActionContact, Phone: msg.Contact.PhoneNumber}
	}
	if msg.Location != nil {
		return Action{Kind: ActionLocation, Lat: msg.Location.Latitude, Lon: msg.Location.Longitude}
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return Action{Kind: ActionNoop}
	}
	if text == "/start" {
		return Action{Kind: ActionStart}
	}

	for _, c := range categories {
		if strings.EqualFold(text, c) {
			return Action{Kind: ActionCategoryPick, Payload: c}
		}
	}

	return Action{Kind: ActionText, Text: text}
}
