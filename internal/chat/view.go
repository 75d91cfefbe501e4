package chat

// View renders turn progress. Calls for one engine are serialized and arrive
// in turn order; implementations must not call back into the engine
// synchronously.
type View interface {
	// TurnStarted shows the user text, a waiting indicator and a stop control.
	TurnStarted(turnID, userText string)
	// Render replaces the turn's response with the full accumulated markdown.
	Render(turnID, content string)
	// Interrupted annotates the turn's response as cut off.
	Interrupted(turnID string)
	// Failed replaces the turn's response with message.
	Failed(turnID, message string)
	// Ready restores the send control once no turn is in flight.
	Ready()
	// Notice posts an assistant-side status line outside any turn.
	Notice(text string)
}

// NopView discards everything.
type NopView struct{}

func (NopView) TurnStarted(string, string) {}
func (NopView) Render(string, string)      {}
func (NopView) Interrupted(string)         {}
func (NopView) Failed(string, string)      {}
func (NopView) Ready()                     {}
func (NopView) Notice(string)              {}
