package relationship

import (
	"time"

	"campusmatch/backend/internal/models"
)

// View is the viewer-relative projection of a relationship that the client
// consumes. All Can* fields are derived; the client holds no authoritative
// state of its own.
type View struct {
	ID          uint                      `json:"id"`
	Kind        models.RelationshipKind   `json:"kind"`
	Status      models.RelationshipStatus `json:"status"`
	ActivityID  *uint                     `json:"activity_id,omitempty"`
	PartnerID   uint                      `json:"partner_id"`
	IsSender    bool                      `json:"is_sender"`
	Message     string                    `json:"message,omitempty"`
	Response    string                    `json:"response,omitempty"`
	PingedBack  bool                      `json:"pinged_back"`
	CanRespond  bool                      `json:"can_respond"`
	CanCancel   bool                      `json:"can_cancel"`
	CanPingBack bool                      `json:"can_ping_back"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// Project maps a stored relationship and the viewing user into the fields the
// client renders. Pure mapping; no side effects.
func Project(rel models.Relationship, viewerID uint) View {
	isSender := rel.Initiator == viewerID
	pending := rel.Status == models.StatusPending

	return View{
		ID:         rel.ID,
		Kind:       rel.Kind,
		Status:     rel.Status,
		ActivityID: rel.ActivityID,
		PartnerID:  rel.OtherParty(viewerID),
		IsSender:   isSender,
		Message:    rel.Message,
		Response:   rel.Response,
		PingedBack: rel.PingedBack,
		CanRespond: pending && !isSender,
		CanCancel:  pending && isSender,
		CanPingBack: rel.Kind == models.KindActivityPing && !rel.PingedBack && !isSender &&
			(rel.Status == models.StatusAccepted || pending),
		CreatedAt: rel.CreatedAt,
		UpdatedAt: rel.UpdatedAt,
	}
}
