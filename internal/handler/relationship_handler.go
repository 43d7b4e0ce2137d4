package handler

import (
	"errors"
	"net/http"
	"strconv"

	"campusmatch/backend/internal/models"
	"campusmatch/backend/internal/relationship"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// InitiateInput defines the structure for opening a connection request or
// activity ping. The sender is always the authenticated user.
type InitiateInput struct {
	ReceiverID uint   `json:"receiver_id" binding:"required"`
	Kind       string `json:"kind" binding:"required,oneof=connection activity_ping"`
	ActivityID *uint  `json:"activity_id"`
	Message    string `json:"message"`
}

// RespondInput defines the structure for accepting or declining a request.
type RespondInput struct {
	Action   string `json:"action" binding:"required,oneof=accept decline"`
	Response string `json:"response"`
}

// PingBackInput defines the structure for a reciprocal ping. ActivityID is
// optional; when omitted the reciprocal targets the original activity.
type PingBackInput struct {
	ActivityID *uint  `json:"activity_id"`
	Message    string `json:"message"`
}

// RejectionResponse is the envelope for a refused transition. Reason is a
// stable code the client can branch on; Error is ready-to-render text.
type RejectionResponse struct {
	Error  string `json:"error" example:"This request has already been responded to"`
	Reason string `json:"reason" example:"already_resolved"`
}

// endregion

// writeRelationshipError translates an engine error into a response. Typed
// rejections carry their own status and text; anything else is a store fault.
func writeRelationshipError(c *gin.Context, err error) {
	var rej *relationship.Rejection
	if errors.As(err, &rej) {
		c.JSON(rej.HTTPStatus(), RejectionResponse{
			Error:  rej.Message(),
			Reason: string(rej.Reason),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
}

// InitiateRelationship godoc
// @Summary      Send a connection request or activity ping
// @Description  Opens a request from the authenticated user to another user. Mutual activity pings on the same activity resolve to accepted immediately.
// @Tags         relationships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body InitiateInput true "Request Info"
// @Success      201  {object}  relationship.View
// @Failure      400  {object}  RejectionResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  RejectionResponse "Blocked"
// @Failure      409  {object}  RejectionResponse "Already pending or resolved"
// @Router       /relationships [post]
func InitiateRelationship(c *gin.Context) {
	actorID, _ := c.Get("userID")

	var input InitiateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := models.RelationshipKind(input.Kind)
	if kind == models.KindActivityPing && input.ActivityID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "activity_id is required for activity pings"})
		return
	}

	view, err := relationshipService.Initiate(kind, actorID.(uint), input.ReceiverID, input.ActivityID, input.Message)
	if err != nil {
		writeRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// RespondToRelationship godoc
// @Summary      Accept or decline a request
// @Description  Resolves a pending request. Only the receiver may respond, and only once.
// @Tags         relationships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true  "Relationship ID"
// @Param        input body      RespondInput true  "Response Info"
// @Success      200   {object}  relationship.View
// @Failure      403   {object}  RejectionResponse "Not the receiver"
// @Failure      404   {object}  RejectionResponse
// @Failure      409   {object}  RejectionResponse "Already resolved"
// @Router       /relationships/{id}/respond [post]
func RespondToRelationship(c *gin.Context) {
	actorID, _ := c.Get("userID")
	relationshipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	var input RespondInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := relationshipService.Respond(uint(relationshipID), actorID.(uint), input.Action == "accept", input.Response)
	if err != nil {
		writeRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// CancelRelationship godoc
// @Summary      Cancel a pending request
// @Description  Retracts a pending request. Only the sender may cancel; for activity pings this is "unsend". The row is deleted.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Relationship ID"
// @Success      200 {object} map[string]string "{"message": "Request cancelled"}"
// @Failure      403 {object} RejectionResponse "Not the sender"
// @Failure      404 {object} RejectionResponse
// @Failure      409 {object} RejectionResponse "Already resolved"
// @Router       /relationships/{id}/cancel [post]
func CancelRelationship(c *gin.Context) {
	actorID, _ := c.Get("userID")
	relationshipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	if err := relationshipService.Cancel(uint(relationshipID), actorID.(uint)); err != nil {
		writeRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request cancelled"})
}

// PingBack godoc
// @Summary      Send a reciprocal activity ping
// @Description  Pings the sender of a received ping back, optionally on a different activity, and marks the original as pinged back.
// @Tags         relationships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int           true  "Original Relationship ID"
// @Param        input body      PingBackInput false "Ping-back Info"
// @Success      200   {object}  relationship.View
// @Failure      400   {object}  RejectionResponse "Not an activity ping"
// @Failure      403   {object}  RejectionResponse
// @Failure      404   {object}  RejectionResponse
// @Failure      409   {object}  RejectionResponse "Already pinged back"
// @Router       /relationships/{id}/pingback [post]
func PingBack(c *gin.Context) {
	actorID, _ := c.Get("userID")
	relationshipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	// The body is optional: an empty ping-back targets the original activity.
	var input PingBackInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	view, err := relationshipService.PingBack(uint(relationshipID), actorID.(uint), input.ActivityID, input.Message)
	if err != nil {
		writeRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// RemoveInterest godoc
// @Summary      Withdraw from an accepted activity ping
// @Description  Removes an accepted activity ping ("not interested anymore"). Either party may withdraw; the row is deleted. Not valid for connections.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Relationship ID"
// @Success      200 {object} map[string]string "{"message": "Interest removed"}"
// @Failure      400 {object} RejectionResponse "Not an activity ping"
// @Failure      404 {object} RejectionResponse
// @Failure      409 {object} RejectionResponse "Still pending"
// @Router       /relationships/{id}/remove-interest [post]
func RemoveInterest(c *gin.Context) {
	actorID, _ := c.Get("userID")
	relationshipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	if err := relationshipService.RemoveInterest(uint(relationshipID), actorID.(uint)); err != nil {
		writeRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Interest removed"})
}

// BlockRelationship godoc
// @Summary      Block the other party
// @Description  Moves a pending or accepted relationship to the terminal blocked state. Only the receiving side may block.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Relationship ID"
// @Success      200 {object} relationship.View
// @Failure      403 {object} RejectionResponse
// @Failure      404 {object} RejectionResponse
// @Router       /relationships/{id}/block [post]
func BlockRelationship(c *gin.Context) {
	actorID, _ := c.Get("userID")
	relationshipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	view, err := relationshipService.Block(uint(relationshipID), actorID.(uint))
	if err != nil {
		writeRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetMyRelationships godoc
// @Summary      List the current user's relationships
// @Description  Returns the user's relationships of a kind, split into sent and received, optionally filtered by status.
// @Tags         relationships
// @Produce      json
// @Security     BearerAuth
// @Param        kind   query string true  "Relationship kind (connection, activity_ping)"
// @Param        status query string false "Filter by status (pending, accepted, declined, blocked)"
// @Success      200 {object} relationship.RelationshipLists
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /users/me/relationships [get]
func GetMyRelationships(c *gin.Context) {
	actorID, _ := c.Get("userID")

	kind := models.RelationshipKind(c.DefaultQuery("kind", string(models.KindConnection)))
	if kind != models.KindConnection && kind != models.KindActivityPing {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship kind"})
		return
	}

	var status *models.RelationshipStatus
	if raw := c.Query("status"); raw != "" {
		parsed := models.RelationshipStatus(raw)
		switch parsed {
		case models.StatusPending, models.StatusAccepted, models.StatusDeclined, models.StatusBlocked:
			status = &parsed
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship status"})
			return
		}
	}

	lists, err := relationshipService.ListForUser(actorID.(uint), kind, status)
	if err != nil {
		writeRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, lists)
}
