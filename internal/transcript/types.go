package transcript

// Direction tells which way a line crossed the bridge.
type Direction string

const (
	// DirectionIn is a command submitted to the engine.
	DirectionIn Direction = "in"
	// DirectionOut is a reply fetched from the engine.
	DirectionOut Direction = "out"
)

// Session is one recorded engine run.
type Session struct {
	ID         string `json:"id"`
	Engine     string `json:"engine"`
	CreatedSeq int64  `json:"created_seq"`
}

// Line is one recorded command or reply, without terminator.
type Line struct {
	SessionID string    `json:"session_id"`
	Seq       int64     `json:"seq"`
	Direction Direction `json:"direction"`
	Text      string    `json:"text"`
}
