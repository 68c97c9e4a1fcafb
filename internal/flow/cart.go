package flow

import (
	"context"
	"fmt"
	"html"

	"github.com/grillpoint/grillpoint-bot/internal/model"
	"github.com/grillpoint/grillpoint-bot/internal/telegram"
)

// showCart показывает сводку корзины. Пустая корзина остаётся на месте.
func (e *Engine) showCart(ctx context.Context, t *turn, s *model.Session) error {
	if s.Cart.IsEmpty() {
		e.ack(ctx, t, "Корзина пуста 🤷")
		return nil
	}

	e.trails.Retract(ctx, t.chatID, s, model.TrailItems)
	e.trails.Retract(ctx, t.chatID, s, model.TrailCategories)
	e.trails.Retract(ctx, t.chatID, s, model.TrailCart)

	s.State = model.StateInCart
	return e.send(ctx, t, s, model.TrailCart, telegram.SendMessageParams{
		Text:        buildCartSummary(s.Cart, e.catalog),
		ParseMode:   telegram.ParseModeHTML,
		ReplyMarkup: kbCart(),
	})
}

// askComment открывает диалог комментария к заказу.
func (e *Engine) askComment(ctx context.Context, t *turn, s *model.Session) error {
	e.trails.Retract(ctx, t.chatID, s, model.TrailCart)
	s.State = model.StateCommentPending
	return e.send(ctx, t, s, model.TrailComment, telegram.SendMessageParams{
		Text:        "💬 Добавить комментарий к заказу? Напишите его сообщением.",
		ReplyMarkup: kbCommentSkip(),
	})
}

// commentText принимает текст комментария и показывает его на подтверждение.
func (e *Engine) commentText(ctx context.Context, t *turn, s *model.Session) error {
	s.Track(model.TrailComment, t.messageID)
	s.DraftComment = t.action.Text
	text := fmt.Sprintf("Ваш комментарий:\n<blockquote>%s</blockquote>\nСохранить?",
		html.EscapeString(s.DraftComment))
	return e.send(ctx, t, s, model.TrailComment, telegram.SendMessageParams{
		Text:        text,
		ParseMode:   telegram.ParseModeHTML,
		ReplyMarkup: kbCommentConfirm(),
	})
}

func (e *Engine) commentSave(ctx context.Context, t *turn, s *model.Session) error {
	s.Comment = s.DraftComment
	s.DraftComment = ""
	return e.startCheckout(ctx, t, s)
}

func (e *Engine) commentSkip(ctx context.Context, t *turn, s *model.Session) error {
	s.DraftComment = ""
	return e.startCheckout(ctx, t, s)
}

func (e *Engine) commentEdit(ctx context.Context, t *turn, s *model.Session) error {
	s.DraftComment = ""
	return e.send(ctx, t, s, model.TrailComment, telegram.SendMessageParams{
		Text:        "Напишите новый комментарий:",
		ReplyMarkup: kbCommentSkip(),
	})
}

// startCheckout переводит диалог к выбору способа получения.
func (e *Engine) startCheckout(ctx context.Context, t *turn, s *model.Session) error {
	e.trails.Retract(ctx, t.chatID, s, model.TrailComment)
	s.State = model.StateCheckoutMethod
	return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
		Text:        "🧾 <b>Оформление заказа</b>\n\nКак хотите получить заказ?",
		ParseMode:   telegram.ParseModeHTML,
		ReplyMarkup: kbMethod(),
	})
}
