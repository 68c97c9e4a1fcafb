// Package menu предоставляет доступ к каталогу товаров, read-only для бота.
package menu

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/grillpoint/grillpoint-bot/internal/model"
)

// fileCategory описывает категорию в JSON-файле меню. Цены в файле
// задаются в рублях и переводятся в копейки при загрузке.
type fileCategory struct {
	Category string     `json:"category"`
	Items    []fileItem `json:"items"`
}

type fileItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Price       float64  `json:"price"`
	Weight      int      `json:"weight"`
	ImageURL    string   `json:"image_url"`
}

// Service кэширует каталог, загруженный из JSON-файла.
type Service struct {
	path string

	mu         sync.RWMutex
	categories []model.MenuCategory
	byID       map[string]model.MenuItem
}

// NewService создаёт сервис каталога и загружает меню из указанного файла.
func NewService(path string) (*Service, error) {
	s := &Service{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload перечитывает меню из файла и заменяет кэш целиком.
func (s *Service) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read menu file: %w", err)
	}

	var raw []fileCategory
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse menu file: %w", err)
	}

	categories := make([]model.MenuCategory, 0, len(raw))
	byID := make(map[string]model.MenuItem)

	for _, c := range raw {
		cat := model.MenuCategory{Name: c.Category}
		for _, it := range c.Items {
			item := model.MenuItem{
				ID:           it.ID,
				Name:         it.Name,
				Category:     c.Category,
				Description:  it.Description,
				Ingredients:  it.Ingredients,
				PriceKopecks: int64(math.Round(it.Price * 100)),
				WeightGrams:  it.Weight,
				ImageURL:     it.ImageURL,
			}
			cat.Items = append(cat.Items, item)
			byID[item.ID] = item
		}
		categories = append(categories, cat)
	}

	s.mu.Lock()
	s.categories = categories
	s.byID = byID
	s.mu.Unlock()

	return nil
}

// Categories возвращает список категорий каталога.
func (s *Service) Categories() []model.MenuCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories
}

// ItemsByCategory возвращает позиции категории. Регистр имени не важен.
func (s *Service) ItemsByCategory(name string) []model.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			return c.Items
		}
	}
	return nil
}

// ItemByID ищет позицию по идентификатору.
func (s *Service) ItemByID(id string) (model.MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.byID[id]
	return item, ok
}
