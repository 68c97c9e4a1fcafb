package flow

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func TestDateOptions(t *testing.T) {
	now := date(2026, time.August, 30, 15, 7)
	dates := dateOptions(now)
	if len(dates) != 3 {
		t.Fatalf("got %d dates, want 3", len(dates))
	}
	for i, want := range []int{30, 31, 1} {
		if dates[i].Day() != want {
			t.Errorf("dates[%d].Day() = %d, want %d", i, dates[i].Day(), want)
		}
	}
}

func TestTimeSlotsFutureDate(t *testing.T) {
	now := date(2026, time.August, 30, 15, 0)
	day := date(2026, time.August, 31, 0, 0)

	slots := timeSlots(day, now)
	if len(slots) == 0 {
		t.Fatal("no slots for a future date")
	}
	first, last := slots[0], slots[len(slots)-1]
	if first.Hour() != serviceOpenHour || first.Minute() != 0 {
		t.Errorf("first slot = %s, want %02d:00", first.Format("15:04"), serviceOpenHour)
	}
	// Час закрытия не предлагается: сетка заканчивается на 20:40.
	if got := last.Format("15:04"); got != "20:40" {
		t.Errorf("last slot = %s, want 20:40", got)
	}
	wantCount := (serviceCloseHour - serviceOpenHour) * int(time.Hour/slotStep)
	if len(slots) != wantCount {
		t.Errorf("got %d slots, want %d", len(slots), wantCount)
	}
	for i := 1; i < len(slots); i++ {
		if slots[i].Sub(slots[i-1]) != slotStep {
			t.Fatalf("gap %s between %s and %s", slots[i].Sub(slots[i-1]), slots[i-1], slots[i])
		}
	}
}

func TestTimeSlotsSameDayLead(t *testing.T) {
	// 14:05 + 20 минут упреждения: первый доступный слот 14:40.
	now := date(2026, time.August, 30, 14, 5)
	slots := timeSlots(date(2026, time.August, 30, 0, 0), now)
	if len(slots) == 0 {
		t.Fatal("no slots")
	}
	if got := slots[0].Format("15:04"); got != "14:40" {
		t.Errorf("first slot = %s, want 14:40", got)
	}
}

func TestTimeSlotsExactBoundary(t *testing.T) {
	// Ровно 14:00: слот 14:20 ещё доступен.
	now := date(2026, time.August, 30, 14, 0)
	slots := timeSlots(date(2026, time.August, 30, 0, 0), now)
	if got := slots[0].Format("15:04"); got != "14:20" {
		t.Errorf("first slot = %s, want 14:20", got)
	}
}

func TestTimeSlotsEndOfDay(t *testing.T) {
	now := date(2026, time.August, 30, 20, 55)
	if slots := timeSlots(date(2026, time.August, 30, 0, 0), now); len(slots) != 0 {
		t.Errorf("got %d slots after closing window, want none", len(slots))
	}
}

func TestSlotUsable(t *testing.T) {
	now := date(2026, time.August, 30, 14, 0)
	if slotUsable(date(2026, time.August, 30, 14, 10), now) {
		t.Error("slot inside the lead window reported usable")
	}
	if !slotUsable(date(2026, time.August, 30, 14, 20), now) {
		t.Error("slot at the lead boundary reported unusable")
	}
}
