package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"visit-service/internal/model"
	"visit-service/internal/service"
)

func (h *Handler) bookLeg(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body struct {
		TripID string `json:"trip_id" binding:"required"`
		StopID string `json:"stop_id"`
		Leg    string `json:"leg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	tripID, err := parseOptionalID(body.TripID)
	if err != nil || tripID == nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid trip_id"))
		return
	}
	stopID, err := parseOptionalID(body.StopID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid stop_id"))
		return
	}
	leg := model.Direction(strings.ToLower(strings.TrimSpace(body.Leg)))
	if leg == "" {
		leg = model.DirectionArrival
	}

	result, err := h.bookingService.BookLeg(c.Request.Context(), principal, id, service.BookLegInput{
		TripID: *tripID,
		StopID: stopID,
		Leg:    leg,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) confirmBooking(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	req, err := h.bookingService.ConfirmBooking(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(req))
}

func (h *Handler) departureOptions(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	options, err := h.bookingService.DepartureOptions(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(options))
}

func (h *Handler) listTrips(c *gin.Context) {
	opts := service.ListTripsOptions{
		Direction: model.Direction(strings.ToLower(strings.TrimSpace(c.Query("direction")))),
		Limit:     queryInt(c, "limit"),
	}
	var err error
	if opts.DateFrom, err = parseTime(c.Query("date_from")); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid date_from"))
		return
	}
	if opts.DateTo, err = parseTime(c.Query("date_to")); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid date_to"))
		return
	}

	trips, err := h.catalogService.ListUpcoming(c.Request.Context(), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": trips}))
}

func (h *Handler) getTrip(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	trip, err := h.catalogService.GetTrip(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(trip))
}

func (h *Handler) listTripStops(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	leg := model.Direction(strings.ToLower(strings.TrimSpace(c.Query("leg"))))
	stops, err := h.catalogService.ListStops(c.Request.Context(), id, leg)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": stops}))
}

func (h *Handler) listNotifications(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	unread := strings.EqualFold(strings.TrimSpace(c.Query("unread")), "true")
	items, err := h.notificationService.List(c.Request.Context(), principal, unread, queryInt(c, "limit"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": items}))
}

func (h *Handler) markNotificationRead(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "read"}))
}
