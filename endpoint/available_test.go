package endpoint_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type slotResponse struct {
	Time      string `json:"time"`
	Value     string `json:"value"`
	Available bool   `json:"available"`
}

func getAvailability(t *testing.T, env testEnv, providerID uint, day time.Time, callerID uint) []slotResponse {
	t.Helper()
	path := fmt.Sprintf("/available/%d?date=%d", providerID, day.UnixMilli())
	w := doRequest(env.Router, requestParams{method: "GET", path: path, headers: authHeader(t, callerID)})
	if w.Code != http.StatusOK {
		t.Fatalf("availability request failed: %d %s", w.Code, w.Body.String())
	}
	var slots []slotResponse
	if err := json.Unmarshal(w.Body.Bytes(), &slots); err != nil {
		t.Fatalf("decode slots: %v", err)
	}
	return slots
}

func TestAvailabilityReturnsNineSlots(t *testing.T) {
	env := setupEndpointTest(t)
	client := createTestUser(t, env.DB, "Client", "client@example.com", false)
	provider := createTestUser(t, env.DB, "Barber", "barber@example.com", true)

	day := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	slots := getAvailability(t, env, provider.ID, day.Add(13*time.Hour), client.ID)

	assert.Len(t, slots, 9)
	assert.Equal(t, "09:00", slots[0].Time)
	assert.Equal(t, "17:00", slots[8].Time)
	for i, s := range slots {
		assert.Equal(t, fmt.Sprintf("%02d:00", 9+i), s.Time)
		assert.True(t, s.Available, "slot %s of a free future day should be available", s.Time)

		value, err := time.Parse(time.RFC3339, s.Value)
		if err != nil {
			t.Fatalf("slot %s has unparseable value %q: %v", s.Time, s.Value, err)
		}
		assert.Equal(t, 9+i, value.Hour())
	}
}

func TestAvailabilityMarksBookedSlot(t *testing.T) {
	env := setupEndpointTest(t)
	client := createTestUser(t, env.DB, "Client", "client@example.com", false)
	provider := createTestUser(t, env.DB, "Barber", "barber@example.com", true)

	day := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	createTestAppointment(t, env.DB, client.ID, provider.ID, day.Add(10*time.Hour))

	slots := getAvailability(t, env, provider.ID, day, client.ID)
	for _, s := range slots {
		if s.Time == "10:00" {
			assert.False(t, s.Available, "booked slot must be unavailable")
		} else {
			assert.True(t, s.Available, "slot %s should stay available", s.Time)
		}
	}
}

func TestAvailabilityIgnoresCanceledBooking(t *testing.T) {
	env := setupEndpointTest(t)
	client := createTestUser(t, env.DB, "Client", "client@example.com", false)
	provider := createTestUser(t, env.DB, "Barber", "barber@example.com", true)

	day := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	appointment := createTestAppointment(t, env.DB, client.ID, provider.ID, day.Add(10*time.Hour))
	canceledAt := time.Now().UTC()
	appointment.CanceledAt = &canceledAt
	appointment.SlotKey = nil
	if err := env.DB.Save(&appointment).Error; err != nil {
		t.Fatalf("cancel appointment: %v", err)
	}

	slots := getAvailability(t, env, provider.ID, day, client.ID)
	for _, s := range slots {
		assert.True(t, s.Available, "canceled booking must not block slot %s", s.Time)
	}
}

func TestAvailabilityPastDayAllUnavailable(t *testing.T) {
	env := setupEndpointTest(t)
	client := createTestUser(t, env.DB, "Client", "client@example.com", false)
	provider := createTestUser(t, env.DB, "Barber", "barber@example.com", true)

	day := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	slots := getAvailability(t, env, provider.ID, day, client.ID)

	assert.Len(t, slots, 9)
	for _, s := range slots {
		assert.False(t, s.Available, "past slot %s cannot be available", s.Time)
	}
}

func TestAvailabilityBadRequests(t *testing.T) {
	env := setupEndpointTest(t)
	client := createTestUser(t, env.DB, "Client", "client@example.com", false)

	w := doRequest(env.Router, requestParams{method: "GET", path: "/available/1", headers: authHeader(t, client.ID)})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing date parameter")

	w = doRequest(env.Router, requestParams{method: "GET", path: "/available/1?date=tomorrow", headers: authHeader(t, client.ID)})
	assert.Equal(t, http.StatusBadRequest, w.Code, "non-numeric date parameter")

	w = doRequest(env.Router, requestParams{method: "GET", path: "/available/zero?date=1000", headers: authHeader(t, client.ID)})
	assert.Equal(t, http.StatusBadRequest, w.Code, "non-numeric provider id")
}
