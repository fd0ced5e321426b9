package ai

// TurnRole identifies the author of a conversation turn sent to the
// generation provider. Unlike core.MessageRole it includes the system
// role, which exists only inside a generation request and is never
// persisted.
type TurnRole string

const (
	TurnRoleSystem    TurnRole = "system"
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// Turn is one entry in the ordered conversation passed to a Generator.
type Turn struct {
	Role    TurnRole
	Content string
}
