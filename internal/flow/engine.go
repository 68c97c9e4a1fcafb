package flow

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/grillpoint/grillpoint-bot/internal/geo"
	"github.com/grillpoint/grillpoint-bot/internal/geocoder"
	"github.com/grillpoint/grillpoint-bot/internal/model"
	"github.com/grillpoint/grillpoint-bot/internal/session"
	"github.com/grillpoint/grillpoint-bot/internal/telegram"
	"github.com/grillpoint/grillpoint-bot/internal/trail"
)

// Transport — часть Bot API, нужная движку диалога.
type Transport interface {
	SendMessage(ctx context.Context, p telegram.SendMessageParams) (int, error)
	SendPhoto(ctx context.Context, p telegram.SendPhotoParams) (int, error)
	SendLocation(ctx context.Context, p telegram.SendLocationParams) (int, error)
	EditMessageText(ctx context.Context, p telegram.EditMessageTextParams) error
	EditMessageReplyMarkup(ctx context.Context, chatID int64, messageID int, markup *telegram.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
}

// Catalog — каталог меню.
type Catalog interface {
	Categories() []model.MenuCategory
	ItemsByCategory(name string) []model.MenuItem
	ItemByID(id string) (model.MenuItem, bool)
}

// Resolver — геокодер прямого и обратного разрешения адресов.
type Resolver interface {
	Forward(ctx context.Context, text string) (*geocoder.ParsedAddress, error)
	Reverse(ctx context.Context, lat, lon float64) (*geocoder.ParsedAddress, error)
}

// Finalizer превращает сессию в подтверждённый заказ и сбрасывает её.
type Finalizer interface {
	Finalize(ctx context.Context, s *model.Session) (*model.Order, error)
}

// ReviewSink — приём и выдача отзывов.
type ReviewSink interface {
	Add(ctx context.Context, r *model.Review) error
	Recent(ctx context.Context, limit int) ([]model.Review, error)
}

// Deps — зависимости движка.
type Deps struct {
	Bot      Transport
	Sessions session.Store
	Catalog  Catalog
	Resolver Resolver
	Zone     *geo.Zone
	Trails   *trail.Manager
	Orders   Finalizer
	Reviews  ReviewSink
	Logger   *zap.Logger
}

// Options — настройки поведения движка.
type Options struct {
	// StaleAfter — давность сессии, после которой /start предлагает рестарт.
	StaleAfter time.Duration
	// ZoneImageURL — картинка зоны доставки для сообщения «вне зоны».
	ZoneImageURL string
	// Now подменяется в тестах; по умолчанию time.Now.
	Now func() time.Time
}

type handlerFunc func(ctx context.Context, t *turn, s *model.Session) error

// Engine — конечный автомат диалога. Каждое действие пользователя целиком
// выполняется внутри session.Store.Update: сессия читается один раз, мутации
// и отправки делает обработчик, результат сохраняется один раз. Конкурирующие
// действия одного пользователя сериализуются хранилищем, ошибка обработчика
// отменяет сохранение сессии.
type Engine struct {
	bot      Transport
	sessions session.Store
	catalog  Catalog
	resolver Resolver
	zone     *geo.Zone
	trails   *trail.Manager
	orders   Finalizer
	reviews  ReviewSink
	logger   *zap.Logger
	opts     Options

	table map[model.FlowState]map[ActionKind]handlerFunc

	pickupMu   sync.Mutex
	pickupAddr string
}

// turn — контекст одного действия пользователя.
type turn struct {
	chatID     int64
	userID     int64
	userName   string
	action     Action
	callbackID string
	// messageID — сообщение с нажатой кнопкой либо входящее сообщение.
	messageID int
	answered  bool
}

// New собирает движок и его таблицу переходов.
func New(d Deps, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	e := &Engine{
		bot:      d.Bot,
		sessions: d.Sessions,
		catalog:  d.Catalog,
		resolver: d.Resolver,
		zone:     d.Zone,
		trails:   d.Trails,
		orders:   d.Orders,
		reviews:  d.Reviews,
		logger:   d.Logger,
		opts:     opts,
	}

	e.table = map[model.FlowState]map[ActionKind]handlerFunc{
		model.StateIdle: {
			ActionOpenMenu:    e.showCategories,
			ActionReviewsOpen: e.showReviews,
			ActionReviewNew:   e.reviewNew,
		},
		model.StateBrowsing: {
			ActionOpenMenu:     e.showCategories,
			ActionReviewsOpen:  e.showReviews,
			ActionReviewNew:    e.reviewNew,
			ActionCategoryPick: e.showItems,
			ActionOpenCart:     e.showCart,
		},
		model.StateViewingItems: {
			ActionOpenMenu:     e.showCategories,
			ActionCategoryPick: e.showItems,
			ActionItemAdd:      e.itemAdd,
			ActionItemInc:      e.itemInc,
			ActionItemDec:      e.itemDec,
			ActionOpenCart:     e.showCart,
		},
		model.StateInCart: {
			ActionOpenMenu:     e.showCategories,
			ActionCartEdit:     e.showCategories,
			ActionCartContinue: e.askComment,
		},
		model.StateCommentPending: {
			ActionText:        e.commentText,
			ActionCommentSkip: e.commentSkip,
			ActionCommentSave: e.commentSave,
			ActionCommentEdit: e.commentEdit,
		},
		model.StateCheckoutMethod: {
			ActionMethodDelivery: e.methodDelivery,
			ActionMethodPickup:   e.methodPickup,
		},
		model.StateCheckoutAddressChoice: {
			ActionAddrManual:     e.addressManual,
			ActionAddrGeoCurrent: e.addressGeo,
			ActionAddrGeoPin:     e.addressPin,
			ActionAddrBack:       e.backToMethod,
		},
		model.StateCheckoutAddressManual: {
			ActionText:     e.addressText,
			ActionAddrBack: e.backToMethod,
		},
		model.StateCheckoutAddressGeo: {
			ActionLocation: e.addressLocation,
			ActionAddrBack: e.backToMethod,
		},
		model.StateCheckoutAddressConfirm: {
			ActionAddrSave: e.addressSave,
			ActionAddrEdit: e.addressEdit,
			ActionAddrBack: e.backToMethod,
		},
		model.StatePickupPreview: {
			ActionPickupConfirm: e.pickupOK,
			ActionAddrBack:      e.backToMethod,
		},
		model.StateCheckoutTime: {
			ActionDatePick:    e.datePick,
			ActionSlotPick:    e.slotPick,
			ActionTimeConfirm: e.timeConfirm,
			ActionTimeEdit:    e.timeEdit,
		},
		model.StateCheckoutPhone: {
			ActionText:    e.phoneText,
			ActionContact: e.phoneContact,
		},
		model.StateConfirm: {
			ActionOrderConfirm: e.orderConfirm,
			ActionOrderCancel:  e.orderCancel,
			ActionOrderEdit:    e.orderEdit,
		},
		model.StateReviewRate: {
			ActionReviewRate: e.reviewRate,
		},
		model.StateReviewComment: {
			ActionText:       e.reviewText,
			ActionReviewSkip: e.reviewSkip,
		},
	}
	return e
}

// HandleUpdate обрабатывает одно входящее событие Bot API.
func (e *Engine) HandleUpdate(ctx context.Context, upd telegram.Update) {
	t, ok := e.newTurn(upd)
	if !ok {
		return
	}

	var state model.FlowState
	_, err := e.sessions.Update(ctx, t.userID, func(s *model.Session) error {
		if t.userName != "" {
			s.UserNick = t.userName
		}
		state = s.State
		handler := e.resolve(s.State, t.action.Kind)
		if handler == nil {
			// Недопустимое для текущей фазы действие: молча подтверждаем кнопку.
			return nil
		}
		return handler(ctx, t, s)
	})
	if err != nil {
		e.logger.Error("handle action",
			zap.Int64("user_id", t.userID),
			zap.String("state", string(state)),
			zap.Error(err))
		e.ack(ctx, t, "")
		e.sendFailureNotice(ctx, t.chatID)
		return
	}
	e.ack(ctx, t, "")
}

func (e *Engine) newTurn(upd telegram.Update) (*turn, bool) {
	switch {
	case upd.CallbackQuery != nil:
		cb := upd.CallbackQuery
		if cb.Message == nil {
			return nil, false
		}
		return &turn{
			chatID:     cb.Message.Chat.ID,
			userID:     cb.From.ID,
			userName:   cb.From.DisplayName(),
			action:     ParseCallback(cb.Data),
			callbackID: cb.ID,
			messageID:  cb.Message.MessageID,
		}, true
	case upd.Message != nil && upd.Message.From != nil:
		msg := upd.Message
		return &turn{
			chatID:    msg.Chat.ID,
			userID:    msg.From.ID,
			userName:  msg.From.DisplayName(),
			action:    ParseMessage(msg, e.categoryNames()),
			messageID: msg.MessageID,
		}, true
	default:
		return nil, false
	}
}

// resolve выбирает обработчик: сперва действия, доступные из любой фазы,
// затем таблица переходов текущей фазы.
func (e *Engine) resolve(state model.FlowState, kind ActionKind) handlerFunc {
	switch kind {
	case ActionStart:
		return e.handleStart
	case ActionRestart:
		return e.handleRestart
	case ActionKeepSession:
		return e.handleKeep
	case ActionHome:
		return e.handleHome
	case ActionAbout:
		return e.handleAbout
	case ActionNoop:
		return e.handleNoop
	}
	if byKind, ok := e.table[state]; ok {
		return byKind[kind]
	}
	return nil
}

func (e *Engine) categoryNames() []string {
	cats := e.catalog.Categories()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	return names
}

// ack подтверждает нажатие кнопки. Повторные вызовы в рамках одного
// действия не отправляются.
func (e *Engine) ack(ctx context.Context, t *turn, text string) {
	if t.callbackID == "" || t.answered {
		return
	}
	t.answered = true
	if err := e.bot.AnswerCallbackQuery(ctx, t.callbackID, text); err != nil {
		e.logger.Debug("answer callback", zap.Error(err))
	}
}

func (e *Engine) sendFailureNotice(ctx context.Context, chatID int64) {
	_, err := e.bot.SendMessage(ctx, telegram.SendMessageParams{
		ChatID: chatID,
		Text:   "⚠️ Что-то пошло не так. Попробуйте ещё раз.",
	})
	if err != nil {
		e.logger.Debug("send failure notice", zap.Error(err))
	}
}

// send отправляет сообщение и регистрирует его в группе эфемерных сообщений.
func (e *Engine) send(ctx context.Context, t *turn, s *model.Session, group string, p telegram.SendMessageParams) error {
	p.ChatID = t.chatID
	id, err := e.bot.SendMessage(ctx, p)
	if err != nil {
		return err
	}
	if group != "" {
		s.Track(group, id)
	}
	return nil
}
