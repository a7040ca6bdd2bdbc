package render

import "image/color"

// antColors holds the colour of each cell state.
var antColors = [4]color.RGBA{
	{R: 200, G: 0, B: 0, A: 255},
	{R: 0, G: 200, B: 0, A: 255},
	{R: 0, G: 0, B: 200, A: 255},
	{R: 150, G: 100, B: 0, A: 255},
}

// Direction indices, counter-clockwise from east.
const (
	east = iota
	north
	west
	south
)

// Ant is a four-state Langton's ant walking a wrapped grid. It turns a
// quarter counter-clockwise on states 0 and 1, clockwise on 2 and 3, and
// advances the state of each cell it leaves.
type Ant struct {
	width, height int
	x, y          int
	dir           int
	grid          []uint8
}

// NewAnt places an ant in the middle of a width x height grid.
func NewAnt(width, height int) *Ant {
	width = max(width, 1)
	height = max(height, 1)
	return &Ant{
		width:  width,
		height: height,
		x:      width / 2,
		y:      height / 2,
		dir:    east,
		grid:   make([]uint8, width*height),
	}
}

// Step moves the ant once and returns its new position together with the
// colour of the cell it just left.
func (a *Ant) Step() (x, y int, c color.RGBA) {
	cell := &a.grid[a.y*a.width+a.x]
	if *cell < 2 {
		a.dir = (a.dir + 1) % 4
	} else {
		a.dir = (a.dir + 3) % 4
	}
	*cell = (*cell + 1) % 4
	c = antColors[*cell]

	switch a.dir {
	case east:
		a.x = (a.x + 1) % a.width
	case north:
		a.y = (a.y - 1 + a.height) % a.height
	case west:
		a.x = (a.x - 1 + a.width) % a.width
	case south:
		a.y = (a.y + 1) % a.height
	}
	return a.x, a.y, c
}
