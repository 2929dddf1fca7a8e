package websocket

import "sync"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
)

type LinkState string

const (
	StateConnecting   LinkState = "connecting"
	StateConnected    LinkState = "connected"
	StateDisconnected LinkState = "disconnected"
)

// Link is one live-chat channel between a customer and an agent, keyed by
// the service request that opened it. At most one client per role.
type Link struct {
	ID               string
	CustomerLanguage string

	mu      sync.Mutex
	State   LinkState
	Clients map[Role]*WSClient
	queue   chan *inboundText
	seq     int64
	closed  bool
}

// Frame is what clients receive. Seq is assigned by the relay and strictly
// increases per link; receivers can rely on it for ordering.
type Frame struct {
	ID        string `json:"id"`
	LinkID    string `json:"linkId"`
	Content   string `json:"content"`
	Sender    string `json:"sender"`
	System    bool   `json:"system,omitempty"`
	Seq       int64  `json:"seq"`
	Timestamp int64  `json:"timestamp"`
	Origin    string `json:"origin,omitempty"`
}

// inboundText is a raw client frame before translation and sequencing.
type inboundText struct {
	LinkID  string
	From    Role
	Content string
}

type remoteFrame struct {
	LinkID string
	Frame  *Frame
}

type inboundPayload struct {
	Content string `json:"content"`
}

type OpenLinkReq struct {
	LinkID           string
	CustomerLanguage string
}

type LinkRes struct {
	ID               string `json:"id"`
	State            string `json:"state"`
	CustomerLanguage string `json:"customerLanguage"`
}
