package sync

// Welcome is the first line every new TCP or WebSocket client receives.
type Welcome struct {
	Type      string `json:"type"` // always "welcome"
	Transport string `json:"transport"`
	Clients   int    `json:"clients"`
}

func newWelcome(transport string, clients int) Welcome {
	return Welcome{Type: "welcome", Transport: transport, Clients: clients}
}
