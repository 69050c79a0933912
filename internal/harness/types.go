package harness

// TraceLine is one command or reply in a scenario trace.
type TraceLine struct {
	Seq  int64  `json:"seq"`
	Text string `json:"text"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if the engine terminated in time and all assertions held.
	Pass bool `json:"pass"`

	// Commands are the submitted command lines in submission order.
	Commands []TraceLine `json:"commands"`

	// Replies are the fetched reply lines, without terminator, in fetch order.
	Replies []TraceLine `json:"replies"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Commands: []TraceLine{},
		Replies:  []TraceLine{},
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCommand records a submitted command.
func (r *Result) AddCommand(text string, seq int64) {
	r.Commands = append(r.Commands, TraceLine{Seq: seq, Text: text})
}

// AddReply records a fetched reply.
func (r *Result) AddReply(text string, seq int64) {
	r.Replies = append(r.Replies, TraceLine{Seq: seq, Text: text})
}

// ReplyTexts returns the reply texts in order.
func (r *Result) ReplyTexts() []string {
	out := make([]string, len(r.Replies))
	for i, l := range r.Replies {
		out[i] = l.Text
	}
	return out
}
