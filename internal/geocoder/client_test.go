package geocoder

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const forwardSample = `[
  {
    "lat": "59.7345790",
    "lon": "30.3384800",
    "display_name": "3, Советский переулок, Александровская, Санкт-Петербург, 196631, Россия",
    "address": {
      "house_number": "3",
      "road": "Советский переулок",
      "village": "Александровская",
      "city": "Санкт-Петербург",
      "postcode": "196631"
    }
  }
]`

const reverseSample = `{
  "lat": "59.7563760",
  "lon": "30.3645200",
  "display_name": "Детский сад №47, Образцовая улица, Пулковское, Шушары, Санкт-Петербург, 196605, Россия",
  "address": {
    "amenity": "Детский сад №47",
    "road": "Образцовая улица",
    "suburb": "Шушары",
    "city": "Санкт-Петербург",
    "postcode": "196605"
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL)
}

func TestForward(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Fatalf("path = %s, want /search", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "Советский переулок 3" {
			t.Fatalf("q = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "1" {
			t.Fatalf("limit = %q, want 1", got)
		}
		_, _ = w.Write([]byte(forwardSample))
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	addr, err := client.Forward(ctx, "Советский переулок 3")
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if addr.Lat < 59.73 || addr.Lat > 59.74 {
		t.Fatalf("lat = %v", addr.Lat)
	}
	if addr.Road != "Советский переулок" || addr.House != "3" {
		t.Fatalf("unexpected address: %+v", addr)
	}
	want := "Санкт-Петербург, Александровская, Советский переулок, 3 (196631)"
	if addr.DisplayAddress != want {
		t.Fatalf("display = %q, want %q", addr.DisplayAddress, want)
	}
}

func TestForwardNoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})

	_, err := client.Forward(context.Background(), "несуществующий адрес")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestForwardZeroCoordinatesIsNoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"0","lon":"0","display_name":"nowhere","address":{}}]`))
	})

	_, err := client.Forward(context.Background(), "что угодно")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestForwardTransportFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Forward(context.Background(), "адрес")
	if err == nil || errors.Is(err, ErrNoMatch) {
		t.Fatalf("transport failure must not be ErrNoMatch, got %v", err)
	}
}

func TestReverse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Fatalf("path = %s, want /reverse", r.URL.Path)
		}
		if got := r.URL.Query().Get("zoom"); got != "18" {
			t.Fatalf("zoom = %q, want 18", got)
		}
		_, _ = w.Write([]byte(reverseSample))
	})

	addr, err := client.Reverse(context.Background(), 59.756376, 30.364520)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	// дома нет — в собранный адрес попадает ориентир
	if !strings.Contains(addr.DisplayAddress, "Детский сад №47") {
		t.Fatalf("display must keep POI when house is absent: %q", addr.DisplayAddress)
	}
	if !strings.HasSuffix(addr.DisplayAddress, "(196605)") {
		t.Fatalf("display must append postcode in parens: %q", addr.DisplayAddress)
	}
}

func TestDisplayAddressNoStraySeparators(t *testing.T) {
	p := &ParsedAddress{City: "Санкт-Петербург", Road: "Образцовая улица"}
	got := buildDisplayAddress(p, "")
	if got != "Санкт-Петербург, Образцовая улица" {
		t.Fatalf("display = %q", got)
	}
	if strings.Contains(got, ", ,") || strings.HasPrefix(got, ",") || strings.HasSuffix(got, ",") {
		t.Fatalf("display contains stray separators: %q", got)
	}

	if got := buildDisplayAddress(&ParsedAddress{}, ""); got != "" {
		t.Fatalf("empty address must render empty, got %q", got)
	}
}
