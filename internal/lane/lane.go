package lane

import "fmt"

// Lane identifies one rotating virtual channel. Lanes carry no schedule
// data themselves; slots reference lanes by ID.
type Lane struct {
	// ID is the 1-based lane ordinal.
	ID int
	// Name is the display name, "Lane N".
	Name string
	// Number is the logical channel number exposed to guide consumers.
	Number int
}

// NewLane builds the lane with the given 1-based ordinal.
func NewLane(id, startNumber int) Lane {
	return Lane{
		ID:     id,
		Name:   fmt.Sprintf("Lane %d", id),
		Number: startNumber + id - 1,
	}
}
