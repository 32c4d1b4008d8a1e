package http

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"visit-service/internal/model"
	"visit-service/internal/service"
	"visit-service/internal/workflow"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type createRequestBody struct {
	VisitorName     string `json:"visitor_name" binding:"required"`
	VisitType       string `json:"visit_type" binding:"required"`
	CompanionsCount int    `json:"companions_count"`
	Phone           string `json:"phone"`
	Purpose         string `json:"purpose"`
	Draft           bool   `json:"draft"`
}

func (b createRequestBody) input() service.CreateRequestInput {
	return service.CreateRequestInput{
		VisitorName:     b.VisitorName,
		VisitType:       model.VisitType(strings.ToLower(strings.TrimSpace(b.VisitType))),
		CompanionsCount: b.CompanionsCount,
		Phone:           b.Phone,
		Purpose:         b.Purpose,
		Draft:           b.Draft,
	}
}

func (h *Handler) listRequests(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	opts, err := parseRequestQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	records, err := h.requestService.List(c.Request.Context(), principal, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": records}))
}

func (h *Handler) getRequest(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	record, err := h.requestService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) listRequestEvents(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	events, err := h.requestService.Events(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": events}))
}

func (h *Handler) latestResponse(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	brief, err := h.requestService.LatestResponse(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// data is null when staff have not responded yet.
	c.JSON(http.StatusOK, successResponse(brief))
}

func (h *Handler) createRequest(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	req, err := h.requestService.Create(c.Request.Context(), principal, body.input())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(req))
}

func (h *Handler) adminCreateRequest(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var body struct {
		createRequestBody
		UserID string `json:"user_id" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	owner, err := uuid.Parse(strings.TrimSpace(body.UserID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid user_id"))
		return
	}

	req, err := h.requestService.AdminCreate(c.Request.Context(), principal, owner, body.input(), body.Note)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(req))
}

func (h *Handler) submitRequest(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	req, err := h.requestService.Submit(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(req))
}

func (h *Handler) actOnRequest(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Action  string `json:"action" binding:"required"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	action, err := workflow.ParseAction(body.Action)
	if err != nil {
		h.handleError(c, err)
		return
	}

	req, err := h.requestService.Act(c.Request.Context(), principal, id, workflow.Command{Action: action, Message: body.Message})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(req))
}

func (h *Handler) assignRequest(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body struct {
		SupervisorID string `json:"supervisor_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	// An empty supervisor_id clears the assignment.
	supervisorID, err := parseOptionalID(body.SupervisorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid supervisor_id"))
		return
	}

	req, err := h.requestService.Assign(c.Request.Context(), principal, id, supervisorID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(req))
}

func (h *Handler) respondToRequest(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	req, err := h.requestService.Respond(c.Request.Context(), principal, id, body.Message)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(req))
}

func (h *Handler) attachPayment(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body struct {
		ImageURL string `json:"image_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	req, err := h.requestService.AttachPayment(c.Request.Context(), principal, id, body.ImageURL)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(req))
}

func (h *Handler) exportRequests(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	opts, err := parseRequestQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	var buf bytes.Buffer
	if err := h.requestService.Export(c.Request.Context(), principal, opts, &buf); err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="requests.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func parseRequestQuery(c *gin.Context) (service.ListRequestsOptions, error) {
	var opts service.ListRequestsOptions

	for _, val := range splitCSV(c.Query("status")) {
		opts.Statuses = append(opts.Statuses, model.RequestStatus(strings.ToLower(val)))
	}
	for _, val := range splitCSV(c.Query("visit_type")) {
		opts.VisitTypes = append(opts.VisitTypes, model.VisitType(strings.ToLower(val)))
	}

	var err error
	if opts.AssignedTo, err = parseOptionalID(c.Query("assigned_to")); err != nil {
		return opts, err
	}
	if opts.DateFrom, err = parseTime(c.Query("date_from")); err != nil {
		return opts, err
	}
	if opts.DateTo, err = parseTime(c.Query("date_to")); err != nil {
		return opts, err
	}

	opts.Limit = queryInt(c, "limit")
	opts.Offset = queryInt(c, "offset")
	opts.Search = strings.TrimSpace(c.Query("search"))

	return opts, nil
}
