package world

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

// Observer receives placement notifications after each board mutation.
// It is the only link between the board and a renderer; implementations own
// whatever visual resources they create.
type Observer interface {
	EntityAdded(e ecs.Entity, species components.Species, at components.Coords)
	EntityMoved(e ecs.Entity, to components.Coords)
	EntityRemoved(e ecs.Entity)
}

// Observers fans notifications out to several observers in order.
type Observers []Observer

func (os Observers) EntityAdded(e ecs.Entity, species components.Species, at components.Coords) {
	for _, o := range os {
		o.EntityAdded(e, species, at)
	}
}

func (os Observers) EntityMoved(e ecs.Entity, to components.Coords) {
	for _, o := range os {
		o.EntityMoved(e, to)
	}
}

func (os Observers) EntityRemoved(e ecs.Entity) {
	for _, o := range os {
		o.EntityRemoved(e)
	}
}
