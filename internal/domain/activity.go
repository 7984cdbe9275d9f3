package domain

// Activity is a named extracurricular offering and its participant roster.
// Participants are student emails in signup order.
type Activity struct {
	Name            string   `json:"-" yaml:"name"`
	Description     string   `json:"description" yaml:"description"`
	Schedule        string   `json:"schedule" yaml:"schedule"`
	MaxParticipants int      `json:"max_participants" yaml:"max_participants"` // advisory, never enforced
	Participants    []string `json:"participants" yaml:"participants"`
}

// Clone returns a copy of the activity that shares no memory with a.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = make([]string, len(a.Participants))
	copy(out.Participants, a.Participants)
	return out
}

// IndexOf returns the position of email in the roster, or -1.
// Comparison is exact: emails are case-sensitive and never normalized.
func (a Activity) IndexOf(email string) int {
	for i, p := range a.Participants {
		if p == email {
			return i
		}
	}
	return -1
}

// Confirmation is the payload returned by a successful roster change.
type Confirmation struct {
	Message string `json:"message"`
}
