package session

import "testing"

func TestUserLockStripes(t *testing.T) {
	r := &RedisStore{}

	if r.userLock(42) != r.userLock(42) {
		t.Error("same user mapped to different locks")
	}
	if r.userLock(7) != r.userLock(7+lockStripes) {
		t.Error("stripe is not stable modulo the stripe count")
	}
	// Отрицательный идентификатор не должен дать отрицательный индекс.
	if r.userLock(-1) == nil {
		t.Error("negative user id produced no lock")
	}
}
