package endpoint

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/slotwise/booking-api/mail"
	"github.com/slotwise/booking-api/middleware"
	"github.com/slotwise/booking-api/model"
	"github.com/slotwise/booking-api/queue"
	"github.com/slotwise/booking-api/util"
)

// appointmentsPageSize is the fixed page size of the appointment listing.
const appointmentsPageSize = 20

type CreateAppointmentRequest struct {
	ProviderID uint      `json:"provider_id" binding:"required" example:"3"`
	Date       time.Time `json:"date" binding:"required" example:"2030-01-01T10:00:00Z"`
}

type appointmentResponse struct {
	model.Appointment
	Past       bool `json:"past"`
	Cancelable bool `json:"cancelable"`
}

// ListAppointments returns the caller's active bookings, oldest date first,
// with the provider identity and avatar attached.
func ListAppointments(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	userID, ok := getUserIDOrRespond(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	var appointments []model.Appointment
	err := db.Where("user_id = ? AND canceled_at IS NULL", userID).
		Order("date asc").
		Limit(appointmentsPageSize).
		Offset((page - 1) * appointmentsPageSize).
		Preload("Provider.Avatar").
		Find(&appointments).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list appointments", Err: err})
		return
	}

	now := time.Now().UTC()
	response := make([]appointmentResponse, 0, len(appointments))
	for i := range appointments {
		response = append(response, appointmentResponse{
			Appointment: appointments[i],
			Past:        appointments[i].Past(now),
			Cancelable:  appointments[i].Cancelable(now),
		})
	}

	util.CallSuccessOK(c, response)
}

// CreateAppointment books a provider's hour slot for the authenticated
// caller. The guard chain short-circuits on the first failure; the SlotKey
// unique index backstops the availability check against concurrent inserts.
func CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request.") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	userID, ok := getUserIDOrRespond(c)
	if !ok {
		return
	}

	if req.ProviderID == userID {
		util.CallUserError(c, util.APIErrorParams{Msg: "Cannot book an appointment with yourself", Err: fmt.Errorf("self booking")})
		return
	}

	provider, ok := loadProviderOrRespond(c, db, req.ProviderID)
	if !ok {
		return
	}

	date := req.Date.UTC().Truncate(time.Hour)
	if !date.After(time.Now().UTC()) {
		util.CallUserError(c, util.APIErrorParams{Msg: "Past dates are not allowed", Err: fmt.Errorf("date %s is not in the future", date)})
		return
	}

	if !slotFreeOrRespond(c, db, req.ProviderID, date) {
		return
	}

	slotKey := model.SlotKeyFor(req.ProviderID, date)
	appointment := model.Appointment{
		UserID:     userID,
		ProviderID: req.ProviderID,
		Date:       date,
		SlotKey:    &slotKey,
	}
	if err := db.Create(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent booking won the slot between the check and the insert.
			util.CallUserError(c, util.APIErrorParams{Msg: "Appointment time is not available", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create appointment", Err: err})
		return
	}

	notifyProvider(c, db, userID, provider.ID, date)

	util.CallSuccessOK(c, appointment)
}

// CancelAppointment cancels one of the caller's bookings and enqueues the
// provider's cancellation mail. The enqueue is fire-and-forget relative to
// the HTTP response.
func CancelAppointment(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	userID, ok := getUserIDOrRespond(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid identifier.", Err: fmt.Errorf("bad appointment id %q", c.Param("id"))})
		return
	}

	var appointment model.Appointment
	err = db.Preload("User").Preload("Provider").First(&appointment, id).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Appointment not found", Err: err})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load appointment", Err: err})
		return
	}

	if appointment.UserID != userID {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "You can only cancel your own appointments", Err: fmt.Errorf("user %d does not own appointment %d", userID, appointment.ID)})
		return
	}

	now := time.Now().UTC()
	if !appointment.Cancelable(now) {
		util.CallUserError(c, util.APIErrorParams{Msg: "Appointments can only be canceled at least two hours in advance", Err: fmt.Errorf("past the cancellation deadline")})
		return
	}

	appointment.CanceledAt = &now
	appointment.SlotKey = nil
	if err := db.Save(&appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to cancel appointment", Err: err})
		return
	}

	enqueueCancellationMail(c, &appointment)

	util.CallSuccessOK(c, appointment)
}

// Schedule returns the provider's own active appointments for one day,
// defaulting to today (UTC).
func Schedule(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	userID, ok := getUserIDOrRespond(c)
	if !ok {
		return
	}

	user, err := loadUserByID(db, userID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load user", Err: err})
		return
	}
	if !user.Provider {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "You are not allowed to view this resource", Err: fmt.Errorf("user %d is not a provider", userID)})
		return
	}

	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "Invalid request.", Err: err})
			return
		}
		dayStart = parsed.UTC()
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	var appointments []model.Appointment
	err = db.Where("provider_id = ? AND canceled_at IS NULL AND date >= ? AND date < ?", userID, dayStart, dayEnd).
		Order("date asc").
		Preload("User.Avatar").
		Find(&appointments).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load schedule", Err: err})
		return
	}

	util.CallSuccessOK(c, appointments)
}

// loadProviderOrRespond loads the booking target and ensures it carries the
// provider flag.
func loadProviderOrRespond(c *gin.Context, db *gorm.DB, providerID uint) (model.User, bool) {
	var provider model.User
	err := db.Where("id = ? AND provider = ?", providerID, true).First(&provider).Error
	if err == gorm.ErrRecordNotFound {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Must create appointments with provider profiles only", Err: fmt.Errorf("user %d is not a provider", providerID)})
		return model.User{}, false
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return model.User{}, false
	}
	return provider, true
}

// slotFreeOrRespond rejects when an active appointment already occupies the
// provider's hour. The unique index catches the remaining race window.
func slotFreeOrRespond(c *gin.Context, db *gorm.DB, providerID uint, date time.Time) bool {
	var count int64
	err := db.Model(&model.Appointment{}).
		Where("provider_id = ? AND date = ? AND canceled_at IS NULL", providerID, date).
		Count(&count).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return false
	}
	if count > 0 {
		util.CallUserError(c, util.APIErrorParams{Msg: "Appointment time is not available", Err: fmt.Errorf("slot taken")})
		return false
	}
	return true
}

// notifyProvider writes the booking notification into the document store.
// A missing store or a failed write is logged but does not undo the booking.
func notifyProvider(c *gin.Context, db *gorm.DB, bookerID, providerID uint, date time.Time) {
	store := middleware.GetNotificationStore(c)
	if store == nil {
		util.Logger().Warn("notification store not configured, skipping booking notification")
		return
	}

	booker, err := loadUserByID(db, bookerID)
	if err != nil {
		util.Logger().Errorf("failed to load booker %d for notification: %v", bookerID, err)
		return
	}

	content := fmt.Sprintf("New appointment from %s on %s", booker.Name, util.FormatAppointmentDate(date))
	if _, err := store.Create(c.Request.Context(), content, providerID); err != nil {
		util.Logger().Errorf("failed to create booking notification: %v", err)
	}
}

// enqueueCancellationMail submits the deferred mail job carrying everything
// the worker needs, so mail delivery never touches the database.
func enqueueCancellationMail(c *gin.Context, appointment *model.Appointment) {
	q := middleware.GetQueue(c)
	if q == nil {
		util.Logger().Warn("job queue not configured, skipping cancellation mail")
		return
	}
	if appointment.User == nil || appointment.Provider == nil {
		util.Logger().Errorf("appointment %d loaded without parties, skipping cancellation mail", appointment.ID)
		return
	}

	msg := mail.CancellationMessage{
		AppointmentID: appointment.ID,
		Date:          appointment.Date,
		UserName:      appointment.User.Name,
		ProviderName:  appointment.Provider.Name,
		ProviderEmail: appointment.Provider.Email,
	}
	job, err := queue.NewJob(queue.CancellationMailJob, msg)
	if err != nil {
		util.Logger().Errorf("failed to build cancellation mail job: %v", err)
		return
	}
	if err := q.Enqueue(c.Request.Context(), job); err != nil {
		util.Logger().Errorf("failed to enqueue cancellation mail: %v", err)
	}
}
