package extraction

// NATS subjects.
const (
	SubjectActionCreated = "care.action.created"
)
