package game

// turnKind names what the player sent to the genie
type turnKind string

const (
	turnStart      turnKind = "start"
	turnAnswer     turnKind = "answer"
	turnCorrection turnKind = "correction"
	turnUndo       turnKind = "undo"
	turnReveal     turnKind = "reveal"
)
