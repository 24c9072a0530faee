package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/pkg/enums"
)

// PhotoDeletedEvent is emitted after a photo row is removed so the worker can
// clear the stored object. ObjectKey is the authoritative pointer; the photo
// row no longer exists when this event is consumed.
type PhotoDeletedEvent struct {
	PhotoID   uuid.UUID `json:"photo_id"`
	StudioID  uuid.UUID `json:"studio_id"`
	AlbumID   uuid.UUID `json:"album_id"`
	ObjectKey string    `json:"object_key"`
	DeletedBy uuid.UUID `json:"deleted_by"`
	DeletedAt time.Time `json:"deleted_at"`
}

// StudioDeletedEvent carries the object keys orphaned by a studio removal.
type StudioDeletedEvent struct {
	StudioID   uuid.UUID `json:"studio_id"`
	ObjectKeys []string  `json:"object_keys"`
	DeletedBy  uuid.UUID `json:"deleted_by"`
	DeletedAt  time.Time `json:"deleted_at"`
}

// InvitationAcceptedEvent records a redeemed invitation for downstream
// notification fan-out.
type InvitationAcceptedEvent struct {
	InvitationID uuid.UUID            `json:"invitation_id"`
	StudioID     uuid.UUID            `json:"studio_id"`
	UserID       uuid.UUID            `json:"user_id"`
	Type         enums.InvitationType `json:"type"`
	Role         *enums.MemberRole    `json:"role,omitempty"`
	AcceptedAt   time.Time            `json:"accepted_at"`
}
