package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const (
	dateLayout          = "2006-01-02"
	defaultScheduleDays = 14
)

// defaultSlots are offered when no availability has been stored yet.
// The last slot is open every day, the others on weekdays only.
var defaultSlots = []string{"08:00 - 11:00", "11:00 - 13:00", "14:00 - 16:00", "16:00 - 18:00"}

type availabilityHandler struct {
	responder        Responder
	logger           zerolog.Logger
	availabilityRepo *database.AvailabilityRepo
	now              func() time.Time
}

func newAvailabilityHandler(availabilityRepo *database.AvailabilityRepo) availabilityHandler {
	logger := log.With().Str("handlerName", "availabilityHandler").Logger()

	return availabilityHandler{
		responder:        NewResponder(logger),
		logger:           logger,
		availabilityRepo: availabilityRepo,
		now:              time.Now,
	}
}

type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// DaySchedule is one calendar day of the public availability calendar
type DaySchedule struct {
	Date  string     `json:"date"`
	Day   string     `json:"day"`
	Slots []TimeSlot `json:"slots"`
}

// groupSchedule groups slots ordered by date into days, keeping their order
func groupSchedule(slots []*models.AvailabilitySlot) []DaySchedule {
	schedule := []DaySchedule{}
	for _, slot := range slots {
		day := time.Time(slot.Date)
		date := day.Format(dateLayout)
		if n := len(schedule); n == 0 || schedule[n-1].Date != date {
			schedule = append(schedule, DaySchedule{Date: date, Day: day.Format("Mon")})
		}
		last := &schedule[len(schedule)-1]
		last.Slots = append(last.Slots, TimeSlot{Time: slot.TimeSlot, Available: slot.Available})
	}
	return schedule
}

// defaultSchedule builds the next days starting today
func defaultSchedule(today time.Time, days int) []DaySchedule {
	schedule := make([]DaySchedule, 0, days)
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		weekday := day.Weekday() != time.Saturday && day.Weekday() != time.Sunday

		slots := make([]TimeSlot, len(defaultSlots))
		for j, label := range defaultSlots {
			slots[j] = TimeSlot{Time: label, Available: weekday || j == len(defaultSlots)-1}
		}
		schedule = append(schedule, DaySchedule{Date: day.Format(dateLayout), Day: day.Format("Mon"), Slots: slots})
	}
	return schedule
}

// getAvailability returns the availability calendar
// @Summary Get availability
// @Description Stored slots grouped by day, or the default two week schedule when none are stored
// @Tags Availability
// @Produce json
// @Success 200 {array} DaySchedule "Schedule"
// @Router /availability [get]
func (h availabilityHandler) getAvailability() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slots, err := h.availabilityRepo.FindAll(r.Context())
		if err != nil {
			// The calendar falls back to its own defaults on an empty list
			h.logger.Error().Err(err).Msg("Failed to fetch availability")
			h.responder.WriteJSON(w, []DaySchedule{})
			return
		}
		if len(slots) == 0 {
			h.responder.WriteJSON(w, defaultSchedule(h.now().UTC(), defaultScheduleDays))
			return
		}
		h.responder.WriteJSON(w, groupSchedule(slots))
	}
}

type slotRequest struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// updateAvailability upserts a list of slots
// @Summary Update availability
// @Tags Availability
// @Accept json
// @Produce json
// @Param slots body []slotRequest true "Slots to store"
// @Success 200 {array} DaySchedule "Stored schedule"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid slot"
// @Router /admin/availability [put]
func (h availabilityHandler) updateAvailability() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req []slotRequest
		if err := readJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		slots := make([]*models.AvailabilitySlot, 0, len(req))
		for i, s := range req {
			day, err := time.Parse(dateLayout, strings.TrimSpace(s.Date))
			if err != nil {
				h.responder.WriteError(w, errs.NewInvalidFieldError(fmt.Sprintf("[%d].date", i), "expected YYYY-MM-DD"))
				return
			}
			label := strings.TrimSpace(s.Time)
			if label == "" {
				h.responder.WriteError(w, errs.NewMissingRequiredFieldError(fmt.Sprintf("[%d].time", i)))
				return
			}
			slots = append(slots, &models.AvailabilitySlot{
				Date:      datatypes.Date(day),
				TimeSlot:  label,
				Available: s.Available,
			})
		}

		if err := h.availabilityRepo.Upsert(r.Context(), slots); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "availability", err))
			return
		}

		stored, err := h.availabilityRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "availability", err))
			return
		}
		h.responder.WriteJSON(w, groupSchedule(stored))
	}
}

// deleteAvailability removes every slot of one date
// @Summary Delete availability for a date
// @Tags Availability
// @Produce json
// @Param date path string true "Date" format(date)
// @Success 200 {object} DeleteResponse "Success message"
// @Failure 404 {object} ErrorResponse "Not Found - No slots on that date"
// @Router /admin/availability/{date} [delete]
func (h availabilityHandler) deleteAvailability() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := time.Parse(dateLayout, chi.URLParam(r, "date"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid date"))
			return
		}

		n, err := h.availabilityRepo.DeleteByDate(r.Context(), day)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "availability", err))
			return
		}
		if n == 0 {
			h.responder.WriteError(w, errs.NewNotFoundError("availability not found"))
			return
		}

		h.responder.WriteJSON(w, DeleteResponse{
			Status:  "success",
			Message: fmt.Sprintf("%d slots deleted for %s", n, day.Format(dateLayout)),
		})
	}
}
