package components

import "fmt"

// Coords addresses a tile on the board.
type Coords struct {
	Row, Col int
}

// String implements fmt.Stringer.
func (c Coords) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Step returns the coordinates magnitude tiles away in direction d.
// The result is not bounds checked.
func (c Coords) Step(d Direction, magnitude int) Coords {
	dr, dc := d.Offset()
	return Coords{Row: c.Row + dr*magnitude, Col: c.Col + dc*magnitude}
}

// Direction is one of the 8 compass directions.
type Direction uint8

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// Compass lists all 8 directions clockwise from north.
var Compass = [8]Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// Cardinal lists the 4 cardinal directions in controller output order.
var Cardinal = [4]Direction{North, East, South, West}

var directionOffsets = [8][2]int{
	North:     {-1, 0},
	NorthEast: {-1, 1},
	East:      {0, 1},
	SouthEast: {1, 1},
	South:     {1, 0},
	SouthWest: {1, -1},
	West:      {0, -1},
	NorthWest: {-1, -1},
}

// Offset returns the unit row/col delta for the direction.
func (d Direction) Offset() (dr, dc int) {
	o := directionOffsets[d%8]
	return o[0], o[1]
}

// String returns the compass abbreviation.
func (d Direction) String() string {
	return [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}[d%8]
}

// Position is the board location of an entity.
// Placed is false while the entity is detached from the grid.
type Position struct {
	Coords `inspect:"label"`
	Placed bool `inspect:"bool"`
}
