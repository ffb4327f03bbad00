package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// CancellationNotice is how far in advance an appointment must be canceled.
const CancellationNotice = 2 * time.Hour

// Appointment is a booking of a provider's hour slot by a user. Date is
// always aligned to the top of an hour, in UTC.
//
// SlotKey is set while the appointment is active and cleared on
// cancellation. Its unique index guarantees at most one active appointment
// per (provider, hour) even when two bookings race past the availability
// check; the losing insert fails with a duplicate-key error.
type Appointment struct {
	gorm.Model
	UserID     uint       `json:"user_id" gorm:"not null;index"`
	ProviderID uint       `json:"provider_id" gorm:"not null;index"`
	Date       time.Time  `json:"date" gorm:"not null;index"`
	CanceledAt *time.Time `json:"canceled_at"`
	SlotKey    *string    `json:"-" gorm:"size:64;uniqueIndex"`

	User     *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Provider *User `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
}

// SlotKeyFor derives the unique key for an active appointment slot.
func SlotKeyFor(providerID uint, date time.Time) string {
	return fmt.Sprintf("%d-%d", providerID, date.Unix())
}

// Past reports whether the appointment's hour has already started.
func (a *Appointment) Past(now time.Time) bool {
	return !a.Date.After(now)
}

// Cancelable reports whether the appointment can still be canceled: strictly
// before the two hour notice deadline. Exactly at the deadline it cannot.
func (a *Appointment) Cancelable(now time.Time) bool {
	return now.Before(a.Date.Add(-CancellationNotice))
}
