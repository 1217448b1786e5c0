package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fieldops/duty-assignment-api/internal/dto"
	apperrors "github.com/fieldops/duty-assignment-api/internal/errors"
	"github.com/fieldops/duty-assignment-api/internal/middleware"
	"github.com/fieldops/duty-assignment-api/internal/models"
	"github.com/fieldops/duty-assignment-api/internal/services"
	"github.com/fieldops/duty-assignment-api/internal/utils"
	"github.com/gin-gonic/gin"
)

type AssignmentHandler struct {
	assignments *services.AssignmentService
	transfers   *services.TransferService
	eligibility *services.EligibilityValidator
}

func NewAssignmentHandler(
	assignments *services.AssignmentService,
	transfers *services.TransferService,
	eligibility *services.EligibilityValidator,
) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		transfers:   transfers,
		eligibility: eligibility,
	}
}

// ListAssignments returns assignments filtered by operator, post or status
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	params := utils.ParsePageRequest(c)

	input := services.ListAssignmentsInput{
		Page:     params.Page,
		PageSize: params.PageSize,
	}

	if v := c.Query("operator_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apperrors.BadRequest(c, "Invalid operator_id")
			return
		}
		input.OperatorID = &id
	}
	if v := c.Query("post_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apperrors.BadRequest(c, "Invalid post_id")
			return
		}
		input.PostID = &id
	}
	if v := c.Query("status"); v != "" {
		status := models.AssignmentStatus(v)
		input.Status = &status
	}

	assignments, total, err := h.assignments.ListAssignments(c.Request.Context(), input)
	if err != nil {
		apperrors.RespondDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentListResponse(assignments, params.Page, params.PageSize, total))
}

// GetAssignment returns a specific assignment by ID
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	assignmentID, ok := parseIDParam(c)
	if !ok {
		return
	}

	assignment, err := h.assignments.GetAssignment(c.Request.Context(), assignmentID)
	if err != nil {
		apperrors.RespondDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentDTO(*assignment))
}

// CreateAssignment creates a new assignment
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	type AllowanceRequest struct {
		Type   string  `json:"type" binding:"required"`
		Amount float64 `json:"amount"`
		Reason string  `json:"reason"`
	}

	type CreateAssignmentRequest struct {
		OperatorID          uint64             `json:"operator_id" binding:"required"`
		PostID              uint64             `json:"post_id" binding:"required"`
		SupervisorID        uint64             `json:"supervisor_id" binding:"required"`
		StartDate           time.Time          `json:"start_date" binding:"required"`
		EndDate             *time.Time         `json:"end_date"`
		AssignmentType      string             `json:"assignment_type" binding:"required"`
		ShiftType           string             `json:"shift_type" binding:"required"`
		SpecialInstructions string             `json:"special_instructions"`
		Allowances          []AllowanceRequest `json:"allowances"`
	}

	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	input := services.CreateAssignmentInput{
		OperatorID:          req.OperatorID,
		PostID:              req.PostID,
		SupervisorID:        req.SupervisorID,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		AssignmentType:      models.AssignmentType(req.AssignmentType),
		ShiftType:           models.ShiftType(req.ShiftType),
		SpecialInstructions: req.SpecialInstructions,
		RequestedBy:         actor,
	}
	for _, a := range req.Allowances {
		input.Allowances = append(input.Allowances, services.AllowanceInput{
			Type:   a.Type,
			Amount: a.Amount,
			Reason: a.Reason,
		})
	}

	assignment, err := h.assignments.Create(c.Request.Context(), input)
	if err != nil {
		apperrors.RespondDomain(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAssignmentDTO(*assignment))
}

// ApproveAssignment approves a pending assignment
func (h *AssignmentHandler) ApproveAssignment(c *gin.Context) {
	actor, assignmentID, ok := h.decisionContext(c)
	if !ok {
		return
	}

	assignment, err := h.assignments.Approve(c.Request.Context(), assignmentID, actor)
	if err != nil {
		apperrors.RespondDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentDTO(*assignment))
}

// RejectAssignment rejects a pending assignment
func (h *AssignmentHandler) RejectAssignment(c *gin.Context) {
	actor, assignmentID, ok := h.decisionContext(c)
	if !ok {
		return
	}

	type RejectRequest struct {
		Reason string `json:"reason" binding:"required"`
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Rejection reason is required")
		return
	}

	assignment, err := h.assignments.Reject(c.Request.Context(), assignmentID, actor, req.Reason)
	if err != nil {
		apperrors.RespondDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentDTO(*assignment))
}

// EndAssignment ends an active assignment
func (h *AssignmentHandler) EndAssignment(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	assignmentID, ok := parseIDParam(c)
	if !ok {
		return
	}

	type EndRequest struct {
		EndDate time.Time `json:"end_date" binding:"required"`
		Reason  string    `json:"reason" binding:"required"`
	}

	var req EndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "End date and reason are required")
		return
	}

	assignment, err := h.assignments.End(c.Request.Context(), assignmentID, actor, req.EndDate, req.Reason)
	if err != nil {
		apperrors.RespondDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentDTO(*assignment))
}

// TransferAssignment moves an operator to a new post
func (h *AssignmentHandler) TransferAssignment(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	type TransferRequest struct {
		OperatorID      uint64    `json:"operator_id" binding:"required"`
		NewPostID       uint64    `json:"new_post_id" binding:"required"`
		NewSupervisorID uint64    `json:"new_supervisor_id" binding:"required"`
		NewShiftType    string    `json:"new_shift_type" binding:"required"`
		TransferDate    time.Time `json:"transfer_date" binding:"required"`
		Reason          string    `json:"reason" binding:"required"`
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "")
		return
	}

	assignment, err := h.transfers.Transfer(c.Request.Context(), services.TransferInput{
		OperatorID:      req.OperatorID,
		NewPostID:       req.NewPostID,
		NewSupervisorID: req.NewSupervisorID,
		NewShiftType:    models.ShiftType(req.NewShiftType),
		TransferDate:    req.TransferDate,
		Reason:          req.Reason,
		RequestedBy:     actor,
	})
	if err != nil {
		apperrors.RespondDomain(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAssignmentDTO(*assignment))
}

// CheckEligibility is the pre-flight "can I assign this operator" check
func (h *AssignmentHandler) CheckEligibility(c *gin.Context) {
	operatorIDStr := c.Param("id")
	operatorID, err := strconv.ParseUint(operatorIDStr, 10, 64)
	if err != nil {
		apperrors.BadRequest(c, "Invalid operator ID")
		return
	}

	eligibility, err := h.eligibility.CheckEligible(c.Request.Context(), operatorID)
	if err != nil {
		apperrors.RespondDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, eligibility)
}

// decisionContext resolves the actor and assignment ID for approve/reject and
// enforces that the actor's role carries decision authority.
func (h *AssignmentHandler) decisionContext(c *gin.Context) (services.Actor, uint64, bool) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return services.Actor{}, 0, false
	}

	if !services.CanDecide(actor.Role) {
		apperrors.Forbidden(c, "Your role cannot approve or reject assignments")
		return services.Actor{}, 0, false
	}

	assignmentID, ok := parseIDParam(c)
	if !ok {
		return services.Actor{}, 0, false
	}

	return actor, assignmentID, true
}

func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, "Invalid assignment ID")
		return 0, false
	}
	return id, true
}
