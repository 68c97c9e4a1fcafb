package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient("test-token", ts.URL)
}

func TestSendMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottest-token/sendMessage" {
			t.Fatalf("path = %s", r.URL.Path)
		}

		var p SendMessageParams
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Fatalf("decode params: %v", err)
		}
		if p.ChatID != 100 || p.Text != "привет" {
			t.Fatalf("unexpected params: %+v", p)
		}

		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":55,"chat":{"id":100}}}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	id, err := client.SendMessage(ctx, SendMessageParams{ChatID: 100, Text: "привет"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if id != 55 {
		t.Fatalf("message id = %d, want 55", id)
	}
}

func TestAPIErrorSurfaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: message to delete not found"}`))
	})

	err := client.DeleteMessage(context.Background(), 100, 1)
	if err == nil {
		t.Fatalf("expected error from API response")
	}
}

func TestGetUpdates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var p struct {
			Offset  int64 `json:"offset"`
			Timeout int   `json:"timeout"`
		}
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Fatalf("decode params: %v", err)
		}
		if p.Offset != 10 || p.Timeout != 30 {
			t.Fatalf("unexpected params: %+v", p)
		}

		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":11,"message":{"message_id":1,"chat":{"id":5},"text":"/start","from":{"id":5,"first_name":"Иван"}}},
			{"update_id":12,"callback_query":{"id":"cb1","from":{"id":5},"data":"cart:open","message":{"message_id":2,"chat":{"id":5}}}}
		]}`))
	})

	updates, err := client.GetUpdates(context.Background(), 10, 30)
	if err != nil {
		t.Fatalf("GetUpdates: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("updates = %d, want 2", len(updates))
	}
	if updates[0].Message == nil || updates[0].Message.Text != "/start" {
		t.Fatalf("unexpected first update: %+v", updates[0])
	}
	if updates[1].CallbackQuery == nil || updates[1].CallbackQuery.Data != "cart:open" {
		t.Fatalf("unexpected second update: %+v", updates[1])
	}
}

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want string
	}{
		{"full name", &User{FirstName: "Иван", LastName: "Петров"}, "Иван Петров"},
		{"first only", &User{FirstName: "Иван"}, "Иван"},
		{"last only", &User{LastName: "Петров"}, "Петров"},
		{"nil user", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Fatalf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
