package components

// Role is an agent's life stage, biasing its size and speed.
type Role uint8

const (
	RoleHen Role = iota
	RoleChick
	RoleRooster
)

// Body holds physical properties of an agent.
type Body struct {
	Size float64
	Role Role
	// Eye offset toward the heading, in [-1, 1] on each axis.
	EyeX, EyeY float64
}

// Radius returns the collision radius.
func (b *Body) Radius() float64 {
	return b.Size * 0.5
}
