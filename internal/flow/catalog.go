package flow

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/grillpoint/grillpoint-bot/internal/model"
	"github.com/grillpoint/grillpoint-bot/internal/telegram"
)

const aboutText = `🔥 <b>Grillpoint</b> — уличная еда на огне.

Готовим шаурму, люля и овощи на гриле из свежих продуктов.
Работаем ежедневно с 9:00 до 21:00.

Доставляем по Красному Селу и окрестностям, самовывоз — всегда.`

// handleStart отвечает на /start. Непустая корзина, незавершённое оформление
// или долгое молчание — повод спросить, начинать ли заново; сам по себе
// /start сессию не сбрасывает.
func (e *Engine) handleStart(ctx context.Context, t *turn, s *model.Session) error {
	stale := e.opts.StaleAfter > 0 && e.opts.Now().Sub(s.LastActivity) > e.opts.StaleAfter
	if s.State != model.StateIdle || !s.Cart.IsEmpty() || stale {
		return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
			Text:        "У вас остался незавершённый заказ. Начать заново или продолжить?",
			ReplyMarkup: kbRestart(),
		})
	}
	return e.sendWelcome(ctx, t, s)
}

func (e *Engine) sendWelcome(ctx context.Context, t *turn, s *model.Session) error {
	name := s.UserNick
	if name == "" {
		name = "друг"
	}
	text := fmt.Sprintf("Привет, %s! 👋\n\nЭто <b>Grillpoint</b> — закажите еду с огня прямо здесь, в чате.",
		html.EscapeString(name))
	return e.send(ctx, t, s, "", telegram.SendMessageParams{
		Text:        text,
		ParseMode:   telegram.ParseModeHTML,
		ReplyMarkup: kbMain(),
	})
}

func (e *Engine) handleRestart(ctx context.Context, t *turn, s *model.Session) error {
	e.trails.RetractAll(ctx, t.chatID, s)
	s.Reset()
	e.ack(ctx, t, "Начинаем заново")
	return e.sendWelcome(ctx, t, s)
}

func (e *Engine) handleKeep(ctx context.Context, t *turn, s *model.Session) error {
	e.ack(ctx, t, "Продолжаем 👌")
	return nil
}

func (e *Engine) handleHome(ctx context.Context, t *turn, s *model.Session) error {
	return e.sendWelcome(ctx, t, s)
}

func (e *Engine) handleAbout(ctx context.Context, t *turn, s *model.Session) error {
	return e.send(ctx, t, s, "", telegram.SendMessageParams{
		Text:        aboutText,
		ParseMode:   telegram.ParseModeHTML,
		ReplyMarkup: kbHome(),
	})
}

func (e *Engine) handleNoop(ctx context.Context, t *turn, s *model.Session) error {
	return nil
}

// showCategories открывает список категорий, убирая карточки предыдущего шага.
func (e *Engine) showCategories(ctx context.Context, t *turn, s *model.Session) error {
	e.trails.Retract(ctx, t.chatID, s, model.TrailCart)
	e.trails.Retract(ctx, t.chatID, s, model.TrailItems)
	e.trails.Retract(ctx, t.chatID, s, model.TrailCategories)

	s.State = model.StateBrowsing
	return e.send(ctx, t, s, model.TrailCategories, telegram.SendMessageParams{
		Text:        "📋 Выберите категорию:",
		ReplyMarkup: kbCategories(e.categoryNames()),
	})
}

// showItems отправляет карточки позиций выбранной категории.
func (e *Engine) showItems(ctx context.Context, t *turn, s *model.Session) error {
	items := e.catalog.ItemsByCategory(t.action.Payload)
	if len(items) == 0 {
		e.ack(ctx, t, "Категория недоступна")
		return nil
	}

	e.trails.Retract(ctx, t.chatID, s, model.TrailItems)
	e.trails.Retract(ctx, t.chatID, s, model.TrailCategories)
	s.State = model.StateViewingItems

	for _, item := range items {
		kb := kbItemAdd(item.ID)
		if qty := s.Cart.Quantity(item.ID); qty > 0 {
			kb = kbItemQty(item.ID, qty)
		}
		if err := e.sendItemCard(ctx, t, s, item, kb); err != nil {
			return err
		}
	}

	return e.send(ctx, t, s, model.TrailItems, telegram.SendMessageParams{
		Text: "Что-нибудь ещё?",
		ReplyMarkup: inline(
			[]telegram.InlineKeyboardButton{btn("🛒 Корзина", cbCartOpen)},
			[]telegram.InlineKeyboardButton{btn("📋 Категории", cbMenuOpen)},
		),
	})
}

func (e *Engine) sendItemCard(ctx context.Context, t *turn, s *model.Session, item model.MenuItem, kb *telegram.InlineKeyboardMarkup) error {
	caption := buildItemCard(item)
	if item.ImageURL != "" {
		id, err := e.bot.SendPhoto(ctx, telegram.SendPhotoParams{
			ChatID:      t.chatID,
			Photo:       item.ImageURL,
			Caption:     caption,
			ParseMode:   telegram.ParseModeHTML,
			ReplyMarkup: kb,
		})
		if err != nil {
			return err
		}
		s.Track(model.TrailItems, id)
		return nil
	}
	return e.send(ctx, t, s, model.TrailItems, telegram.SendMessageParams{
		Text:        caption,
		ParseMode:   telegram.ParseModeHTML,
		ReplyMarkup: kb,
	})
}

func buildItemCard(item model.MenuItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(item.Name))
	if item.Description != "" {
		b.WriteString(html.EscapeString(item.Description) + "\n")
	}
	if len(item.Ingredients) > 0 {
		fmt.Fprintf(&b, "Состав: %s\n", html.EscapeString(strings.Join(item.Ingredients, ", ")))
	}
	if item.WeightGrams > 0 {
		fmt.Fprintf(&b, "%d г\n", item.WeightGrams)
	}
	fmt.Fprintf(&b, "\nЦена: <b>%s ₽</b>", FormatKopecks(item.PriceKopecks))
	return b.String()
}

// itemAdd заводит позицию в корзине и меняет клавиатуру карточки на панель
// количества.
func (e *Engine) itemAdd(ctx context.Context, t *turn, s *model.Session) error {
	item, ok := e.catalog.ItemByID(t.action.Payload)
	if !ok {
		e.ack(ctx, t, "Позиция недоступна")
		return nil
	}
	qty := s.Cart.StartOrIncrement(item.ID)
	if err := e.bot.EditMessageReplyMarkup(ctx, t.chatID, t.messageID, kbItemQty(item.ID, qty)); err != nil {
		return err
	}
	e.ack(ctx, t, "Добавлено в корзину")
	return nil
}

func (e *Engine) itemInc(ctx context.Context, t *turn, s *model.Session) error {
	return e.itemAdjust(ctx, t, s, +1)
}

func (e *Engine) itemDec(ctx context.Context, t *turn, s *model.Session) error {
	return e.itemAdjust(ctx, t, s, -1)
}

func (e *Engine) itemAdjust(ctx context.Context, t *turn, s *model.Session, delta int) error {
	item, ok := e.catalog.ItemByID(t.action.Payload)
	if !ok {
		e.ack(ctx, t, "Позиция недоступна")
		return nil
	}
	qty := s.Cart.Adjust(item.ID, delta)
	kb := kbItemAdd(item.ID)
	if qty > 0 {
		kb = kbItemQty(item.ID, qty)
	}
	return e.bot.EditMessageReplyMarkup(ctx, t.chatID, t.messageID, kb)
}
