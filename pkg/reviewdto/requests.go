package reviewdto

// RequestMeta identifies who issued a command and where.
type RequestMeta struct {
	Room     string
	Sender   string
	SenderID string
}

// Identity is the stable per-user key: the sender id when the bridge
// provides one, otherwise the display name.
func (m RequestMeta) Identity() string {
	if m.SenderID != "" {
		return m.SenderID
	}
	return m.Sender
}
