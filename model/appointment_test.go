package model

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"
)

func TestSlotKeyUniqueAmongActiveRows(t *testing.T) {
	db := setupTestDB(t, "appointment", &User{}, &File{}, &Appointment{})

	date := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	key := SlotKeyFor(3, date)

	first := Appointment{UserID: 1, ProviderID: 3, Date: date, SlotKey: &key}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	dupKey := SlotKeyFor(3, date)
	second := Appointment{UserID: 2, ProviderID: 3, Date: date, SlotKey: &dupKey}
	err := db.Create(&second).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicate-key error, got %v", err)
	}

	// Canceling the first frees the slot for a new booking.
	now := time.Now().UTC()
	first.CanceledAt = &now
	first.SlotKey = nil
	if err := db.Save(&first).Error; err != nil {
		t.Fatalf("cancel update failed: %v", err)
	}
	if err := db.Create(&second).Error; err != nil {
		t.Fatalf("rebooking a canceled slot should succeed: %v", err)
	}
}

func TestSlotKeyNullRowsDoNotCollide(t *testing.T) {
	db := setupTestDB(t, "appointment_null", &User{}, &File{}, &Appointment{})

	date := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	canceled := time.Now().UTC()
	for i := 0; i < 3; i++ {
		a := Appointment{UserID: uint(i + 1), ProviderID: 3, Date: date, CanceledAt: &canceled}
		if err := db.Create(&a).Error; err != nil {
			t.Fatalf("canceled row %d insert failed: %v", i, err)
		}
	}
}

func TestCancelableBoundary(t *testing.T) {
	date := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	a := Appointment{ProviderID: 3, Date: date}

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"three hours before", date.Add(-3 * time.Hour), true},
		{"exactly two hours before", date.Add(-2 * time.Hour), false},
		{"one hour before", date.Add(-time.Hour), false},
		{"just inside the notice window", date.Add(-2*time.Hour - time.Second), true},
	}
	for _, tc := range cases {
		if got := a.Cancelable(tc.now); got != tc.want {
			t.Errorf("%s: Cancelable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPast(t *testing.T) {
	date := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	a := Appointment{Date: date}

	if a.Past(date.Add(-time.Minute)) {
		t.Error("appointment before its hour should not be past")
	}
	if !a.Past(date) {
		t.Error("appointment exactly at its hour is no longer bookable, should be past")
	}
	if !a.Past(date.Add(time.Minute)) {
		t.Error("appointment after its hour should be past")
	}
}
