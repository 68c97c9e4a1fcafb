package flow

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"go.uber.org/zap"

	"github.com/grillpoint/grillpoint-bot/internal/geo"
	"github.com/grillpoint/grillpoint-bot/internal/geocoder"
	"github.com/grillpoint/grillpoint-bot/internal/model"
	"github.com/grillpoint/grillpoint-bot/internal/telegram"
	"github.com/grillpoint/grillpoint-bot/internal/validation"
)

// pickupFallbackAddress показывается, когда геокодер не смог разрешить
// координаты точки самовывоза.
const pickupFallbackAddress = "Красное Село, проспект Ленина, 85"

func (e *Engine) methodDelivery(ctx context.Context, t *turn, s *model.Session) error {
	s.Draft = model.DeliveryDraft{Method: model.MethodDelivery}
	e.trails.Retract(ctx, t.chatID, s, model.TrailCheckout)
	s.State = model.StateCheckoutAddressChoice
	return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
		Text:        "Как укажем адрес доставки?",
		ReplyMarkup: kbAddressChoice(),
	})
}

func (e *Engine) methodPickup(ctx context.Context, t *turn, s *model.Session) error {
	point := geo.PickupPoint()
	s.Draft = model.DeliveryDraft{
		Method:         model.MethodPickup,
		AddressDisplay: e.pickupAddress(ctx),
		Lat:            point.Lat,
		Lon:            point.Lon,
	}
	e.trails.Retract(ctx, t.chatID, s, model.TrailCheckout)
	s.State = model.StatePickupPreview

	id, err := e.bot.SendLocation(ctx, telegram.SendLocationParams{
		ChatID:    t.chatID,
		Latitude:  point.Lat,
		Longitude: point.Lon,
	})
	if err != nil {
		return err
	}
	s.Track(model.TrailCheckout, id)

	text := fmt.Sprintf("🏃 Самовывоз по адресу:\n%s\n\nПодходит?", html.EscapeString(s.Draft.AddressDisplay))
	return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
		Text:        text,
		ReplyMarkup: kbPickup(),
	})
}

// pickupAddress разрешает адрес точки самовывоза один раз и кэширует его.
// Мьютекс защищает только кэш: сетевой вызов идёт вне блокировки, чтобы
// холодный кэш не выстраивал пользователей в очередь за первым разрешением.
// При недоступности геокодера возвращается фиксированный адрес без
// кэширования, чтобы следующая попытка снова пошла в геокодер.
func (e *Engine) pickupAddress(ctx context.Context) string {
	e.pickupMu.Lock()
	cached := e.pickupAddr
	e.pickupMu.Unlock()
	if cached != "" {
		return cached
	}

	p := geo.PickupPoint()
	parsed, err := e.resolver.Reverse(ctx, p.Lat, p.Lon)
	if err != nil {
		e.logger.Warn("resolve pickup address", zap.Error(err))
		return pickupFallbackAddress
	}

	e.pickupMu.Lock()
	e.pickupAddr = parsed.DisplayAddress
	e.pickupMu.Unlock()
	return parsed.DisplayAddress
}

func (e *Engine) pickupOK(ctx context.Context, t *turn, s *model.Session) error {
	return e.askDate(ctx, t, s)
}

func (e *Engine) backToMethod(ctx context.Context, t *turn, s *model.Session) error {
	e.trails.Retract(ctx, t.chatID, s, model.TrailAddress)
	e.trails.Retract(ctx, t.chatID, s, model.TrailCheckout)
	s.State = model.StateCheckoutMethod
	return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
		Text:        "Как хотите получить заказ?",
		ReplyMarkup: kbMethod(),
	})
}

func (e *Engine) addressManual(ctx context.Context, t *turn, s *model.Session) error {
	s.State = model.StateCheckoutAddressManual
	return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
		Text: "⌨️ Напишите адрес доставки. Например: «Советский переулок, дом 3».",
	})
}

func (e *Engine) addressGeo(ctx context.Context, t *turn, s *model.Session) error {
	s.State = model.StateCheckoutAddressGeo
	return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
		Text:        "📍 Нажмите кнопку ниже, чтобы отправить геолокацию.",
		ReplyMarkup: kbRequestLocation(),
	})
}

func (e *Engine) addressPin(ctx context.Context, t *turn, s *model.Session) error {
	s.State = model.StateCheckoutAddressGeo
	return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
		Text: "🗺 Пришлите точку на карте: скрепка → «Геопозиция».",
	})
}

// addressText разрешает адрес, присланный текстом.
func (e *Engine) addressText(ctx context.Context, t *turn, s *model.Session) error {
	s.Track(model.TrailCheckout, t.messageID)
	parsed, err := e.resolver.Forward(ctx, t.action.Text)
	if err != nil {
		if errors.Is(err, geocoder.ErrNoMatch) {
			return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
				Text: "😕 Не получилось найти такой адрес. Уточните и попробуйте ещё раз.",
			})
		}
		return err
	}
	return e.addressResolved(ctx, t, s, parsed)
}

// addressLocation разрешает адрес по присланной геопозиции.
func (e *Engine) addressLocation(ctx context.Context, t *turn, s *model.Session) error {
	s.Track(model.TrailCheckout, t.messageID)
	parsed, err := e.resolver.Reverse(ctx, t.action.Lat, t.action.Lon)
	if err != nil {
		if errors.Is(err, geocoder.ErrNoMatch) {
			return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
				Text: "😕 Не получилось распознать эту точку. Попробуйте ещё раз.",
			})
		}
		return err
	}
	return e.addressResolved(ctx, t, s, parsed)
}

// addressResolved проверяет адрес по зоне доставки и либо предлагает его
// сохранить, либо сообщает, что адрес вне зоны. Фаза при отказе не меняется:
// пользователь может сразу прислать другой адрес.
func (e *Engine) addressResolved(ctx context.Context, t *turn, s *model.Session, parsed *geocoder.ParsedAddress) error {
	if !e.zone.Contains(geo.Point{Lat: parsed.Lat, Lon: parsed.Lon}) {
		return e.sendOutOfZone(ctx, t, s)
	}

	s.Draft.City = parsed.City
	s.Draft.Locality = parsed.Locality
	s.Draft.Suburb = parsed.Suburb
	s.Draft.Street = parsed.Road
	s.Draft.House = parsed.House
	s.Draft.POI = parsed.POI
	s.Draft.Postcode = parsed.Postcode
	s.Draft.AddressDisplay = parsed.DisplayAddress
	s.Draft.Lat = parsed.Lat
	s.Draft.Lon = parsed.Lon
	s.State = model.StateCheckoutAddressConfirm

	id, err := e.bot.SendLocation(ctx, telegram.SendLocationParams{
		ChatID:    t.chatID,
		Latitude:  parsed.Lat,
		Longitude: parsed.Lon,
	})
	if err != nil {
		return err
	}
	s.Track(model.TrailAddress, id)

	text := fmt.Sprintf("📍 Адрес: %s\n\nСохранить?", html.EscapeString(parsed.DisplayAddress))
	return e.send(ctx, t, s, model.TrailAddress, telegram.SendMessageParams{
		Text:        text,
		ReplyMarkup: kbAddressConfirm(),
	})
}

func (e *Engine) sendOutOfZone(ctx context.Context, t *turn, s *model.Session) error {
	const text = "🚫 Этот адрес вне зоны доставки.\nМожно указать другой адрес или выбрать самовывоз."
	if e.opts.ZoneImageURL != "" {
		id, err := e.bot.SendPhoto(ctx, telegram.SendPhotoParams{
			ChatID:      t.chatID,
			Photo:       e.opts.ZoneImageURL,
			Caption:     text,
			ReplyMarkup: kbOutOfZone(),
		})
		if err != nil {
			return err
		}
		s.Track(model.TrailCheckout, id)
		return nil
	}
	return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
		Text:        text,
		ReplyMarkup: kbOutOfZone(),
	})
}

func (e *Engine) addressSave(ctx context.Context, t *turn, s *model.Session) error {
	e.trails.Retract(ctx, t.chatID, s, model.TrailAddress)
	return e.askDate(ctx, t, s)
}

// addressEdit возвращает к выбору способа указания адреса, пин и карточку
// адреса убирает вместе.
func (e *Engine) addressEdit(ctx context.Context, t *turn, s *model.Session) error {
	e.trails.Retract(ctx, t.chatID, s, model.TrailAddress)
	s.State = model.StateCheckoutAddressChoice
	return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
		Text:        "Как укажем адрес доставки?",
		ReplyMarkup: kbAddressChoice(),
	})
}

// askDate открывает выбор даты получения. Сюда сходятся ветки доставки
// и самовывоза.
func (e *Engine) askDate(ctx context.Context, t *turn, s *model.Session) error {
	s.PendingDate = ""
	s.Draft.ScheduledAt = nil
	e.trails.Retract(ctx, t.chatID, s, model.TrailCheckout)
	s.State = model.StateCheckoutTime
	return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
		Text:        "📅 Выберите дату получения:",
		ReplyMarkup: kbDates(e.opts.Now()),
	})
}

func (e *Engine) datePick(ctx context.Context, t *turn, s *model.Session) error {
	date, err := time.ParseInLocation(dateKeyLayout, t.action.Payload, time.Local)
	if err != nil {
		e.ack(ctx, t, "")
		return nil
	}
	slots := timeSlots(date, e.opts.Now())
	if len(slots) == 0 {
		e.ack(ctx, t, "На эту дату уже нет свободного времени")
		return nil
	}
	s.PendingDate = t.action.Payload
	return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
		Text:        "🕒 Выберите время:",
		ReplyMarkup: kbSlots(slots),
	})
}

func (e *Engine) slotPick(ctx context.Context, t *turn, s *model.Session) error {
	slot, err := time.ParseInLocation(slotKeyLayout, t.action.Payload, time.Local)
	if err != nil {
		e.ack(ctx, t, "")
		return nil
	}
	// Кнопка могла устареть, пока пользователь думал.
	if !slotUsable(slot, e.opts.Now()) {
		e.ack(ctx, t, "Этот слот уже недоступен, выберите другой")
		return nil
	}
	s.Draft.ScheduledAt = &slot
	text := fmt.Sprintf("🕒 Получение %s. Подтвердить?", formatSchedule(slot))
	return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
		Text:        text,
		ReplyMarkup: kbTimeConfirm(),
	})
}

func (e *Engine) timeConfirm(ctx context.Context, t *turn, s *model.Session) error {
	if s.Draft.ScheduledAt == nil {
		e.ack(ctx, t, "Сначала выберите время")
		return nil
	}
	return e.askPhone(ctx, t, s)
}

func (e *Engine) timeEdit(ctx context.Context, t *turn, s *model.Session) error {
	return e.askDate(ctx, t, s)
}

// askPhone запрашивает телефон. Единая точка для доставки и самовывоза.
func (e *Engine) askPhone(ctx context.Context, t *turn, s *model.Session) error {
	e.trails.Retract(ctx, t.chatID, s, model.TrailCheckout)
	s.State = model.StateCheckoutPhone
	return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
		Text:        "📱 Укажите телефон для связи: отправьте номер сообщением или кнопкой ниже.",
		ReplyMarkup: kbRequestContact(),
	})
}

// phoneText нормализует номер, набранный вручную.
func (e *Engine) phoneText(ctx context.Context, t *turn, s *model.Session) error {
	s.Track(model.TrailCheckout, t.messageID)
	normalized, err := validation.NormalizePhone(t.action.Text)
	if err != nil {
		return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
			Text: "❌ Неверный формат номера. Пример: +7 999 123-45-67",
		})
	}
	return e.phoneAccepted(ctx, t, s, normalized)
}

// phoneContact принимает номер из переданного контакта. Контакту доверяем:
// валидация длины не применяется.
func (e *Engine) phoneContact(ctx context.Context, t *turn, s *model.Session) error {
	s.Track(model.TrailCheckout, t.messageID)
	return e.phoneAccepted(ctx, t, s, validation.NormalizeContactPhone(t.action.Phone))
}

func (e *Engine) phoneAccepted(ctx context.Context, t *turn, s *model.Session, normalized string) error {
	s.Draft.Phone = normalized
	s.Draft.PhoneDisplay = validation.FormatPhoneDisplay(normalized)
	return e.showConfirm(ctx, t, s)
}

// showConfirm показывает финальную карточку заказа.
func (e *Engine) showConfirm(ctx context.Context, t *turn, s *model.Session) error {
	e.trails.Retract(ctx, t.chatID, s, model.TrailCheckout)
	s.State = model.StateConfirm
	return e.send(ctx, t, s, model.TrailCheckout, telegram.SendMessageParams{
		Text:        buildOrderSummary(s, e.catalog),
		ParseMode:   telegram.ParseModeHTML,
		ReplyMarkup: kbOrderConfirm(),
	})
}
