package contact

import "github.com/oomph-ac/physcore/backend"

// Kind is the kind of a contact event.
type Kind uint8

const (
	// KindAdd is raised when two bodies start touching.
	KindAdd Kind = iota
	// KindPersist is raised every step two bodies keep touching.
	KindPersist
	// KindValidate is raised before contact points are created, allowing listeners to reject them.
	KindValidate
	// KindRemove is raised when two bodies stop touching.
	KindRemove

	kindCount
)

// String ...
func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindPersist:
		return "persist"
	case KindValidate:
		return "validate"
	case KindRemove:
		return "remove"
	}
	return "unknown"
}

// Pair is a contact pair seen from one of its bodies.
type Pair struct {
	// Self is the body the listener subscribed for.
	Self backend.BodyID
	// Other is the body Self is touching.
	Other backend.BodyID
	// Reversed is true if Self is the second body of the native pair.
	Reversed bool
}

// Handler handles contact events of the bodies it is subscribed for. A Handler is only called for the
// kinds it was subscribed to, so implementations may embed NopHandler and override what they need.
// Handlers are compared by equality when unsubscribing and should therefore be pointers.
type Handler interface {
	// HandleContactAdded handles two bodies starting to touch. s may be modified to change the response.
	HandleContactAdded(pair Pair, s *Settings)
	// HandleContactPersisted handles two bodies that keep touching. s may be modified to change the
	// response.
	HandleContactPersisted(pair Pair, s *Settings)
	// HandleContactValidate may answer whether contacts between the pair are created. Returning false as
	// second value leaves the decision to other listeners.
	HandleContactValidate(pair Pair) (backend.ValidateResult, bool)
	// HandleContactRemoved handles two bodies that stopped touching.
	HandleContactRemoved(pair Pair)
}

// NopHandler implements Handler without doing anything.
type NopHandler struct{}

// Compile time check to make sure NopHandler implements Handler.
var _ Handler = NopHandler{}

func (NopHandler) HandleContactAdded(Pair, *Settings)     {}
func (NopHandler) HandleContactPersisted(Pair, *Settings) {}
func (NopHandler) HandleContactValidate(Pair) (backend.ValidateResult, bool) {
	return backend.AcceptAllContactsForThisBodyPair, false
}
func (NopHandler) HandleContactRemoved(Pair) {}
