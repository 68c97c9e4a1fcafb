package flow

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/grillpoint/grillpoint-bot/internal/model"
	"github.com/grillpoint/grillpoint-bot/internal/telegram"
)

const recentReviewsLimit = 5

// showReviews показывает последние отзывы гостей.
func (e *Engine) showReviews(ctx context.Context, t *turn, s *model.Session) error {
	reviews, err := e.reviews.Recent(ctx, recentReviewsLimit)
	if err != nil {
		return err
	}

	e.trails.Retract(ctx, t.chatID, s, model.TrailReview)

	var b strings.Builder
	b.WriteString("⭐ <b>Отзывы наших гостей</b>\n\n")
	if len(reviews) == 0 {
		b.WriteString("Отзывов пока нет — будьте первым!")
	}
	for _, r := range reviews {
		name := r.UserName
		if name == "" {
			name = "Гость"
		}
		fmt.Fprintf(&b, "%s <b>%s</b>\n", strings.Repeat("⭐", r.Rate), html.EscapeString(name))
		if r.Comment != "" {
			b.WriteString(html.EscapeString(r.Comment) + "\n")
		}
		b.WriteString("\n")
	}

	return e.send(ctx, t, s, model.TrailReview, telegram.SendMessageParams{
		Text:        strings.TrimRight(b.String(), "\n"),
		ParseMode:   telegram.ParseModeHTML,
		ReplyMarkup: kbReviews(),
	})
}

func (e *Engine) reviewNew(ctx context.Context, t *turn, s *model.Session) error {
	e.trails.Retract(ctx, t.chatID, s, model.TrailReview)
	s.State = model.StateReviewRate
	return e.send(ctx, t, s, model.TrailReview, telegram.SendMessageParams{
		Text:        "Как вам у нас? Поставьте оценку:",
		ReplyMarkup: kbRates(),
	})
}

func (e *Engine) reviewRate(ctx context.Context, t *turn, s *model.Session) error {
	rate, err := strconv.Atoi(t.action.Payload)
	if err != nil || rate < 1 || rate > 5 {
		e.ack(ctx, t, "")
		return nil
	}
	s.PendingRate = rate
	s.State = model.StateReviewComment
	return e.send(ctx, t, s, model.TrailReview, telegram.SendMessageParams{
		Text:        "Спасибо! Добавите пару слов?",
		ReplyMarkup: kbReviewSkip(),
	})
}

func (e *Engine) reviewText(ctx context.Context, t *turn, s *model.Session) error {
	s.Track(model.TrailReview, t.messageID)
	return e.saveReview(ctx, t, s, t.action.Text)
}

func (e *Engine) reviewSkip(ctx context.Context, t *turn, s *model.Session) error {
	return e.saveReview(ctx, t, s, "")
}

func (e *Engine) saveReview(ctx context.Context, t *turn, s *model.Session, comment string) error {
	review := &model.Review{
		UserID:   s.UserID,
		UserName: s.UserNick,
		Rate:     s.PendingRate,
		Comment:  comment,
	}
	if err := e.reviews.Add(ctx, review); err != nil {
		return err
	}

	e.trails.Retract(ctx, t.chatID, s, model.TrailReview)
	s.PendingRate = 0
	s.State = model.StateIdle
	return e.send(ctx, t, s, "", telegram.SendMessageParams{
		Text:        "💚 Спасибо за отзыв!",
		ReplyMarkup: kbHome(),
	})
}
