package game

// EventKind identifies a world event front-ends may react to.
type EventKind uint8

const (
	EventStartle EventKind = iota
	EventFoodDrop
	EventRespawn
)

// Event is a notable occurrence during a tick, positioned in world units.
type Event struct {
	Kind EventKind
	X, Y float64
}

// emit queues an event for the front-end.
func (g *Game) emit(kind EventKind, x, y float64) {
	g.events = append(g.events, Event{Kind: kind, X: x, Y: y})
}

// DrainEvents returns the events queued since the last call and clears the queue.
// The returned slice is only valid until the next tick.
func (g *Game) DrainEvents() []Event {
	ev := g.events
	g.events = g.events[:0]
	return ev
}
