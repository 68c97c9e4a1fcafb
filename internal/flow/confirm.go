package flow

import (
	"context"
	"fmt"
	"html"

	"github.com/grillpoint/grillpoint-bot/internal/model"
	"github.com/grillpoint/grillpoint-bot/internal/telegram"
)

// orderConfirm финализирует заказ. Карточка подтверждения редактируется
// в благодарность, а не удаляется. Ошибка финализации оставляет сессию
// нетронутой, пользователь может нажать кнопку снова.
func (e *Engine) orderConfirm(ctx context.Context, t *turn, s *model.Session) error {
	if s.Cart.IsEmpty() {
		e.ack(ctx, t, "Корзина пуста")
		return nil
	}

	order, err := e.orders.Finalize(ctx, s)
	if err != nil {
		return err
	}

	name := order.UserName
	if name == "" {
		name = "друг"
	}
	text := fmt.Sprintf(
		"✅ Спасибо за заказ, %s!\n\nНомер заказа: <code>%s</code>\nИтого: <b>%s ₽</b>\n\nМы свяжемся с вами для подтверждения.",
		html.EscapeString(name), orderTag(order.ID), FormatKopecks(order.Total()))
	return e.bot.EditMessageText(ctx, telegram.EditMessageTextParams{
		ChatID:      t.chatID,
		MessageID:   t.messageID,
		Text:        text,
		ParseMode:   telegram.ParseModeHTML,
		ReplyMarkup: kbHome(),
	})
}

// orderTag печатает короткий человекочитаемый номер заказа.
func orderTag(id string) string {
	const short = 8
	if len(id) > short {
		id = id[:short]
	}
	return "#" + id
}

// orderCancel сбрасывает сессию. Карточку редактируем, поэтому её
// идентификатор сперва забывается, остальной хвост сообщений удаляется.
func (e *Engine) orderCancel(ctx context.Context, t *turn, s *model.Session) error {
	e.trails.Clear(s, model.TrailCheckout)
	e.trails.RetractAll(ctx, t.chatID, s)
	s.Reset()
	return e.bot.EditMessageText(ctx, telegram.EditMessageTextParams{
		ChatID:      t.chatID,
		MessageID:   t.messageID,
		Text:        "Заказ отменён 😔 Возвращайтесь!",
		ReplyMarkup: kbHome(),
	})
}

// orderEdit возвращает к выбору способа получения, не трогая корзину.
func (e *Engine) orderEdit(ctx context.Context, t *turn, s *model.Session) error {
	e.trails.Retract(ctx, t.chatID, s, model.TrailCheckout)
	s.State = model.StateCheckoutMethod
	return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
		Text:        "Как хотите получить заказ?",
		ReplyMarkup: kbMethod(),
	})
}
