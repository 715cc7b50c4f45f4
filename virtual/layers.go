package virtual

import "github.com/oomph-ac/physcore/backend"

// Layers is a symmetric table of object layers that do not collide. A nil *Layers lets every layer
// collide with every other layer.
type Layers struct {
	disabled map[[2]uint16]struct{}
}

// Compile time check to make sure Layers implements backend.FilterProvider.
var _ backend.FilterProvider = (*Layers)(nil)

// NewLayers returns a table in which all layers collide.
func NewLayers() *Layers {
	return &Layers{disabled: make(map[[2]uint16]struct{})}
}

func layerPair(a, b uint16) [2]uint16 {
	if a > b {
		a, b = b, a
	}
	return [2]uint16{a, b}
}

// DisableCollision stops layers a and b from colliding.
func (l *Layers) DisableCollision(a, b uint16) {
	l.disabled[layerPair(a, b)] = struct{}{}
}

// EnableCollision lets layers a and b collide again.
func (l *Layers) EnableCollision(a, b uint16) {
	delete(l.disabled, layerPair(a, b))
}

// ShouldCollide ...
func (l *Layers) ShouldCollide(a, b uint16) bool {
	if l == nil {
		return true
	}
	_, disabled := l.disabled[layerPair(a, b)]
	return !disabled
}

// Filters returns filters accepting the layers that collide with layer.
func (l *Layers) Filters(layer uint16) backend.Filters {
	f := layerFilter{layers: l, layer: layer}
	return backend.Filters{BroadPhase: f, Object: f}
}

type layerFilter struct {
	layers *Layers
	layer  uint16
}

// ShouldCollide ...
func (f layerFilter) ShouldCollide(other uint16) bool {
	return f.layers.ShouldCollide(f.layer, other)
}
