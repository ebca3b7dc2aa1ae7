// Package events contains the WebSocket event contract: small
// notifications that let a connected UI refresh its view after each
// discrete workspace action.
package events

import "time"

// Type identifies a workspace event.
type Type string

const (
	TypeWorkspaceLoaded   Type = "workspace:loaded"
	TypeWorkspaceSearched Type = "workspace:searched"
	TypeWorkspaceTagged   Type = "workspace:tagged"
	TypeWorkspaceExported Type = "workspace:exported"
)

// Event is the envelope broadcast to every connected client.
type Event struct {
	Type        Type      `json:"type"`
	WorkspaceID string    `json:"workspace_id"`
	Timestamp   time.Time `json:"timestamp"`
	Data        any       `json:"data,omitempty"`
}

// New builds an event stamped with the current time.
func New(t Type, workspaceID string, data any) Event {
	return Event{
		Type:        t,
		WorkspaceID: workspaceID,
		Timestamp:   time.Now().UTC(),
		Data:        data,
	}
}
