package endpoint

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/slotwise/booking-api/model"
	"github.com/slotwise/booking-api/util"
)

// Providers offer fixed hourly slots between these hours, inclusive.
const (
	firstSlotHour = 9
	lastSlotHour  = 17
)

// Slot is one hourly offering within a provider's day.
type Slot struct {
	Time      string `json:"time"`
	Value     string `json:"value"`
	Available bool   `json:"available"`
}

// ListAvailability returns the provider's fixed slot grid for the calendar
// day given as epoch milliseconds, flagging slots that are in the past or
// already booked.
func ListAvailability(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	providerID, err := strconv.Atoi(c.Param("providerId"))
	if err != nil || providerID < 1 {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid request.", Err: fmt.Errorf("bad provider id %q", c.Param("providerId"))})
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid request.", Err: fmt.Errorf("date parameter is required")})
		return
	}
	ms, err := strconv.ParseInt(dateStr, 10, 64)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid request.", Err: fmt.Errorf("date must be epoch milliseconds: %w", err)})
		return
	}

	day := time.UnixMilli(ms).UTC().Truncate(24 * time.Hour)

	var appointments []model.Appointment
	err = db.Where("provider_id = ? AND canceled_at IS NULL AND date >= ? AND date < ?",
		providerID, day, day.Add(24*time.Hour)).
		Find(&appointments).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	taken := make(map[int64]bool, len(appointments))
	for i := range appointments {
		taken[appointments[i].Date.Truncate(time.Hour).Unix()] = true
	}

	util.CallSuccessOK(c, buildDaySchedule(day, time.Now().UTC(), taken))
}

// buildDaySchedule produces the ordered slot grid for one day. A slot is
// available only when its hour is strictly in the future and no active
// appointment occupies it.
func buildDaySchedule(day time.Time, now time.Time, taken map[int64]bool) []Slot {
	slots := make([]Slot, 0, lastSlotHour-firstSlotHour+1)
	for hour := firstSlotHour; hour <= lastSlotHour; hour++ {
		value := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
		slots = append(slots, Slot{
			Time:      fmt.Sprintf("%02d:00", hour),
			Value:     value.Format(time.RFC3339),
			Available: value.After(now) && !taken[value.Unix()],
		})
	}
	return slots
}
