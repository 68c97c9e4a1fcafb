package flow

import "time"

// Рабочее окно выдачи заказов и шаг сетки слотов.
const (
	serviceOpenHour  = 9
	serviceCloseHour = 21
	slotStep         = 20 * time.Minute
	minLead          = 20 * time.Minute
	dateHorizonDays  = 3
)

const (
	dateKeyLayout = "20060102"
	slotKeyLayout = "200601021504"
)

// dateOptions возвращает доступные даты получения: сегодня и два следующих дня.
func dateOptions(now time.Time) []time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dates := make([]time.Time, 0, dateHorizonDays)
	for i := 0; i < dateHorizonDays; i++ {
		dates = append(dates, day.AddDate(0, 0, i))
	}
	return dates
}

// timeSlots возвращает слоты выбранной даты с шагом сетки. Час закрытия —
// граница выдачи, сам слот на него не предлагается: последний слот 20:40.
// Слоты раньше now+minLead отбрасываются, поэтому для сегодняшней даты
// ближе к закрытию срез может оказаться пустым.
func timeSlots(date time.Time, now time.Time) []time.Time {
	earliest := now.Add(minLead)
	open := time.Date(date.Year(), date.Month(), date.Day(), serviceOpenHour, 0, 0, 0, date.Location())
	close := time.Date(date.Year(), date.Month(), date.Day(), serviceCloseHour, 0, 0, 0, date.Location())

	var slots []time.Time
	for t := open; t.Before(close); t = t.Add(slotStep) {
		if t.Before(earliest) {
			continue
		}
		slots = append(slots, t)
	}
	return slots
}

// slotUsable сообщает, можно ли ещё выбрать слот с учётом времени упреждения.
func slotUsable(slot time.Time, now time.Time) bool {
	return !slot.Before(now.Add(minLead))
}
