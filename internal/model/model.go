// Package model содержит доменные сущности бота приёма заказов.
package model

import "time"

// FlowState описывает текущую фазу диалога пользователя.
type FlowState string

const (
	// StateIdle — пользователь вне сценария заказа.
	StateIdle FlowState = "idle"
	// StateBrowsing — пользователь выбирает категорию меню.
	StateBrowsing FlowState = "browsing"
	// StateViewingItems — пользователь смотрит карточки товаров категории.
	StateViewingItems FlowState = "viewing_items"
	// StateInCart — пользователь редактирует корзину.
	StateInCart FlowState = "in_cart"
	// StateCommentPending — бот ждёт комментарий к заказу.
	StateCommentPending FlowState = "comment_pending"
	// StateCheckoutMethod — выбор способа получения: доставка или самовывоз.
	StateCheckoutMethod FlowState = "checkout_method"
	// StateCheckoutAddressChoice — выбор способа указания адреса.
	StateCheckoutAddressChoice FlowState = "checkout_address_choice"
	// StateCheckoutAddressManual — бот ждёт адрес текстом.
	StateCheckoutAddressManual FlowState = "checkout_address_manual"
	// StateCheckoutAddressGeo — бот ждёт геопозицию или точку на карте.
	StateCheckoutAddressGeo FlowState = "checkout_address_geo"
	// StateCheckoutAddressConfirm — подтверждение распознанного адреса.
	StateCheckoutAddressConfirm FlowState = "checkout_address_confirm"
	// StatePickupPreview — показ точки самовывоза перед подтверждением.
	StatePickupPreview FlowState = "pickup_preview"
	// StateCheckoutTime — выбор даты и времени получения.
	StateCheckoutTime FlowState = "checkout_time"
	// StateCheckoutPhone — ввод контактного телефона.
	StateCheckoutPhone FlowState = "checkout_phone"
	// StateConfirm — финальная карточка подтверждения заказа.
	StateConfirm FlowState = "confirm"
	// StateReviewRate — пользователь выбирает оценку отзыва.
	StateReviewRate FlowState = "review_rate"
	// StateReviewComment — бот ждёт текст отзыва.
	StateReviewComment FlowState = "review_comment"
)

// DeliveryMethod описывает способ получения заказа.
type DeliveryMethod string

const (
	// MethodPickup — самовывоз из точки.
	MethodPickup DeliveryMethod = "pickup"
	// MethodDelivery — доставка по адресу.
	MethodDelivery DeliveryMethod = "delivery"
)

// CartLine — одна позиция черновика корзины.
// Количество всегда положительное, обнулённые позиции удаляются целиком.
type CartLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Cart — черновик корзины. Позиции хранятся в порядке добавления,
// чтобы повторные сводки неизменённой корзины были идентичны.
type Cart struct {
	Lines []CartLine `json:"lines,omitempty"`
}

// Quantity возвращает количество товара в корзине (0 — товара нет).
func (c *Cart) Quantity(itemID string) int {
	for _, l := range c.Lines {
		if l.ItemID == itemID {
			return l.Quantity
		}
	}
	return 0
}

// StartOrIncrement добавляет товар с количеством 1 либо увеличивает
// имеющееся количество. Возвращает итоговое количество.
func (c *Cart) StartOrIncrement(itemID string) int {
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			c.Lines[i].Quantity++
			return c.Lines[i].Quantity
		}
	}
	c.Lines = append(c.Lines, CartLine{ItemID: itemID, Quantity: 1})
	return 1
}

// Adjust изменяет количество товара на delta. Если итог неположительный,
// позиция удаляется целиком. Возвращает итоговое количество.
func (c *Cart) Adjust(itemID string, delta int) int {
	for i := range c.Lines {
		if c.Lines[i].ItemID != itemID {
			continue
		}
		c.Lines[i].Quantity += delta
		if c.Lines[i].Quantity <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return 0
		}
		return c.Lines[i].Quantity
	}
	if delta <= 0 {
		return 0
	}
	c.Lines = append(c.Lines, CartLine{ItemID: itemID, Quantity: delta})
	return delta
}

// IsEmpty сообщает, пуста ли корзина.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Clear опустошает корзину.
func (c *Cart) Clear() {
	c.Lines = nil
}

// DeliveryDraft — черновик данных получения заказа.
type DeliveryDraft struct {
	Method DeliveryMethod `json:"method"`

	City     string `json:"city,omitempty"`
	Locality string `json:"locality,omitempty"`
	Suburb   string `json:"suburb,omitempty"`
	Street   string `json:"street,omitempty"`
	House    string `json:"house,omitempty"`
	POI      string `json:"poi,omitempty"`
	Postcode string `json:"postcode,omitempty"`

	// AddressDisplay — собранный человекочитаемый адрес.
	AddressDisplay string `json:"address_display,omitempty"`

	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`

	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`

	// Phone — нормализованный номер, PhoneDisplay — номер для показа.
	Phone        string `json:"phone,omitempty"`
	PhoneDisplay string `json:"phone_display,omitempty"`
}

// HasCoordinates сообщает, заданы ли координаты адреса.
func (d *DeliveryDraft) HasCoordinates() bool {
	return d.Lat != 0 || d.Lon != 0
}

// Названия групп сообщений, удаляемых сводно при смене шага диалога.
const (
	TrailCategories = "categories"
	TrailItems      = "items"
	TrailCart       = "cart"
	TrailComment    = "comment"
	TrailCheckout   = "checkout"
	TrailAddress    = "address"
	TrailReview     = "review"
)

// Session — состояние диалога одного пользователя.
type Session struct {
	UserID   int64     `json:"user_id"`
	UserNick string    `json:"user_nick,omitempty"`
	State    FlowState `json:"state"`

	Cart  Cart          `json:"cart"`
	Draft DeliveryDraft `json:"draft"`

	Comment      string `json:"comment,omitempty"`
	DraftComment string `json:"draft_comment,omitempty"`

	// PendingDate — выбранная дата (ГГГГММДД) до выбора слота времени.
	PendingDate string `json:"pending_date,omitempty"`
	// PendingRate — выбранная оценка до ввода текста отзыва.
	PendingRate int `json:"pending_rate,omitempty"`

	// Trails — идентификаторы отправленных сообщений по группам шагов.
	Trails map[string][]int `json:"trails,omitempty"`

	LastActivity time.Time `json:"last_activity"`
}

// NewSession создаёт пустую сессию пользователя.
func NewSession(userID int64) *Session {
	return &Session{
		UserID:       userID,
		State:        StateIdle,
		Trails:       make(map[string][]int),
		LastActivity: time.Now().UTC(),
	}
}

// Reset очищает рабочее состояние сессии, сохраняя идентификацию пользователя.
func (s *Session) Reset() {
	s.State = StateIdle
	s.Cart.Clear()
	s.Draft = DeliveryDraft{}
	s.Comment = ""
	s.DraftComment = ""
	s.PendingDate = ""
	s.PendingRate = 0
	s.Trails = make(map[string][]int)
}

// Track добавляет идентификатор сообщения в именованную группу.
func (s *Session) Track(group string, messageID int) {
	if s.Trails == nil {
		s.Trails = make(map[string][]int)
	}
	s.Trails[group] = append(s.Trails[group], messageID)
}

// MenuItem — позиция каталога.
type MenuItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	// PriceKopecks — цена в копейках.
	PriceKopecks int64  `json:"price_kopecks"`
	WeightGrams  int    `json:"weight_grams,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
}

// MenuCategory — категория каталога со списком позиций.
type MenuCategory struct {
	Name  string     `json:"category"`
	Items []MenuItem `json:"items"`
}

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCooking   OrderStatus = "COOKING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusOnTheWay  OrderStatus = "ON_THE_WAY"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderLine — позиция оформленного заказа.
type OrderLine struct {
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name"`
	UnitKopecks  int64  `json:"unit_kopecks"`
	WeightGrams  int    `json:"weight_grams,omitempty"`
	Quantity     int    `json:"quantity"`
	TotalKopecks int64  `json:"total_kopecks"`
}

// Order — неизменяемый снимок подтверждённого заказа.
type Order struct {
	ID        string        `json:"id"`
	UserID    int64         `json:"user_id"`
	UserName  string        `json:"user_name"`
	Lines     []OrderLine   `json:"lines"`
	Delivery  DeliveryDraft `json:"delivery"`
	Comment   string        `json:"comment,omitempty"`
	Status    OrderStatus   `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// Total возвращает сумму заказа в копейках, производную от позиций.
func (o *Order) Total() int64 {
	var total int64
	for _, l := range o.Lines {
		total += l.TotalKopecks
	}
	return total
}

// Review — отзыв пользователя о заведении.
type Review struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id,omitempty"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Rate      int       `json:"rate"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
