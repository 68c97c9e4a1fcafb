package flow

import (
	"testing"

	"github.com/grillpoint/grillpoint-bot/internal/telegram"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data    string
		kind    ActionKind
		payload string
	}{
		{"menu:open", ActionOpenMenu, ""},
		{"cat:Шаурма", ActionCategoryPick, "Шаурма"},
		{"item:add;shawarma", ActionItemAdd, "shawarma"},
		{"item:inc;shawarma", ActionItemInc, "shawarma"},
		{"item:dec;shawarma", ActionItemDec, "shawarma"},
		{"cart:open", ActionOpenCart, ""},
		{"checkout:method:delivery", ActionMethodDelivery, ""},
		{"checkout:method:pickup", ActionMethodPickup, ""},
		{"addr:mode:geo", ActionAddrGeoCurrent, ""},
		{"time:date:20260830", ActionDatePick, "20260830"},
		{"time:slot:202608301240", ActionSlotPick, "202608301240"},
		{"order:confirm", ActionOrderConfirm, ""},
		{"session:restart", ActionRestart, ""},
		{"review:rate:4", ActionReviewRate, "4"},
		{"noop", ActionNoop, ""},
		{"что-то левое", ActionNoop, ""},
		{"", ActionNoop, ""},
	}
	for _, tt := range tests {
		a := ParseCallback(tt.data)
		if a.Kind != tt.kind || a.Payload != tt.payload {
			t.Errorf("ParseCallback(%q) = {%v %q}, want {%v %q}",
				tt.data, a.Kind, a.Payload, tt.kind, tt.payload)
		}
	}
}

func TestParseMessage(t *testing.T) {
	categories := []string{"Шаурма", "Гриль"}

	msg := func(text string) *telegram.Message { return &telegram.Message{Text: text} }

	if a := ParseMessage(msg("/start"), categories); a.Kind != ActionStart {
		t.Errorf("/start parsed as %v", a.Kind)
	}
	if a := ParseMessage(msg("шаурма"), categories); a.Kind != ActionCategoryPick || a.Payload != "Шаурма" {
		t.Errorf("category text parsed as {%v %q}", a.Kind, a.Payload)
	}
	if a := ParseMessage(msg("  привет  "), categories); a.Kind != ActionText || a.Text != "привет" {
		t.Errorf("free text parsed as {%v %q}", a.Kind, a.Text)
	}
	if a := ParseMessage(msg("   "), categories); a.Kind != ActionNoop {
		t.Errorf("blank text parsed as %v", a.Kind)
	}

	contact := &telegram.Message{Contact: &telegram.Contact{PhoneNumber: "+79991234567"}}
	if a := ParseMessage(contact, categories); a.Kind != ActionContact || a.Phone != "+79991234567" {
		t.Errorf("contact parsed as {%v %q}", a.Kind, a.Phone)
	}

	loc := &telegram.Message{Location: &telegram.Location{Latitude: 59.73, Longitude: 30.33}}
	if a := ParseMessage(loc, categories); a.Kind != ActionLocation || a.Lat != 59.73 {
		t.Errorf("location parsed as {%v %v}", a.Kind, a.Lat)
	}
}
