package remote

import (
	"time"

	"github.com/bezmoradi/keycycle/internal/metrics"
)

// Request actions sent by clients.
const (
	ActionSet   = "set"
	ActionList  = "list"
	ActionStats = "stats"
)

// Message types sent by the hub.
const (
	TypeSwitched = "switched"
	TypeMappings = "mappings"
	TypeStats    = "stats"
	TypeError    = "error"
)

// Request is a client command.
type Request struct {
	Action string `json:"action"`
	Alias  string `json:"alias,omitempty"`
}

// MappingInfo is one mapping in a mappings reply.
type MappingInfo struct {
	Alias   string   `json:"alias"`
	Hotkeys []string `json:"hotkeys"`
}

// Message is every frame the hub sends. Type selects which fields are set.
type Message struct {
	Type string `json:"type"`

	// switched
	ID       string     `json:"id,omitempty"`
	Alias    string     `json:"alias,omitempty"`
	Previous string     `json:"previous,omitempty"`
	At       *time.Time `json:"at,omitempty"`

	// mappings
	Current  string        `json:"current,omitempty"`
	Mappings []MappingInfo `json:"mappings,omitempty"`

	// stats
	Stats []metrics.AliasStats `json:"stats,omitempty"`

	// error
	Message string `json:"message,omitempty"`
}

func errorMessage(msg string) Message {
	return Message{Type: TypeError, Message: msg}
}
