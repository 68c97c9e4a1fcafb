// Package geocoder предоставляет клиент геокодирования Nominatim.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrNoMatch возвращается, когда геокодер не нашёл адрес. Это штатный исход,
// отличный от сетевой ошибки: пользователя просят уточнить адрес, а не повторить попытку.
var ErrNoMatch = errors.New("no geocoding match")

const userAgent = "GrillpointBot/1.0 (+https://t.me/gp_streetfood_bot)"

// ParsedAddress — нормализованный результат геокодирования.
type ParsedAddress struct {
	// FullAddress — исходный display_name провайдера.
	FullAddress string
	// DisplayAddress — собранный адрес для показа пользователю.
	DisplayAddress string

	City     string
	Locality string
	Suburb   string
	Road     string
	House    string
	POI      string
	Postcode string

	Lat float64
	Lon float64
}

// Client инкапсулирует HTTP-взаимодействие с Nominatim.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент геокодера. Пустой baseURL означает публичный Nominatim.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 5 * time.Second
	rc.Logger = nil

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: rc.StandardClient(),
	}
}

type nominatimResult struct {
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	City          string `json:"city"`
	State         string `json:"state"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	Hamlet        string `json:"hamlet"`
	Suburb        string `json:"suburb"`
	Neighbourhood string `json:"neighbourhood"`
	Road          string `json:"road"`
	Street        string `json:"street"`
	Pedestrian    string `json:"pedestrian"`
	Footway       string `json:"footway"`
	HouseNumber   string `json:"house_number"`
	Amenity       string `json:"amenity"`
	Building      string `json:"building"`
	Shop          string `json:"shop"`
	Postcode      string `json:"postcode"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// Forward геокодирует произвольный текст в адрес. Берётся лучший единственный
// результат; отсутствие результата — ErrNoMatch.
func (c *Client) Forward(ctx context.Context, text string) (*ParsedAddress, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("addressdetails", "1")
	q.Set("limit", "1")
	q.Set("q", text)

	body, err := c.get(ctx, "/search", q)
	if err != nil {
		return nil, err
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoMatch
	}

	parsed := parseResult(results[0])
	// провайдер может вернуть запись без координат — трактуем как «не найдено»
	if parsed.Lat == 0 && parsed.Lon == 0 {
		return nil, ErrNoMatch
	}
	return parsed, nil
}

// Reverse геокодирует координаты в адрес.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*ParsedAddress, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("zoom", "18")
	q.Set("addressdetails", "1")

	body, err := c.get(ctx, "/reverse", q)
	if err != nil {
		return nil, err
	}

	var result nominatimResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	parsed := parseResult(result)
	if parsed.Lat == 0 && parsed.Lon == 0 {
		parsed.Lat = lat
		parsed.Lon = lon
	}
	if parsed.FullAddress == "" && parsed.DisplayAddress == "" {
		return nil, ErrNoMatch
	}
	return parsed, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseResult(r nominatimResult) *ParsedAddress {
	lat, _ := strconv.ParseFloat(r.Lat, 64)
	lon, _ := strconv.ParseFloat(r.Lon, 64)

	a := r.Address
	p := &ParsedAddress{
		FullAddress: r.DisplayName,
		City:        firstNonEmpty(a.City, a.State),
		Locality:    firstNonEmpty(a.Town, a.Village, a.Hamlet),
		Suburb:      a.Suburb,
		Road:        firstNonEmpty(a.Road, a.Street, a.Pedestrian, a.Footway),
		House:       a.HouseNumber,
		POI:         firstNonEmpty(a.Amenity, a.Building, a.Shop),
		Postcode:    a.Postcode,
		Lat:         lat,
		Lon:         lon,
	}
	p.DisplayAddress = buildDisplayAddress(p, a.Neighbourhood)
	return p
}

// buildDisplayAddress собирает человекочитаемый адрес: город, населённый
// пункт, район, улица, дом (или ориентир, если дома нет), индекс в скобках.
// Пустые компоненты пропускаются без лишних разделителей.
func buildDisplayAddress(p *ParsedAddress, neighbourhood string) string {
	var parts []string
	for _, part := range []string{p.City, p.Locality, p.Suburb, neighbourhood, p.Road, p.House} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	if strings.TrimSpace(p.House) == "" && strings.TrimSpace(p.POI) != "" {
		parts = append(parts, p.POI)
	}

	result := strings.Join(parts, ", ")
	if strings.TrimSpace(p.Postcode) != "" {
		result += fmt.Sprintf(" (%s)", p.Postcode)
	}
	return result
}
