package character

import (
	"log/slog"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/physcore/backend"
	"github.com/oomph-ac/physcore/internal/listener"
	"github.com/oomph-ac/physcore/oerror"
	"github.com/oomph-ac/physcore/utils"
)

// ContactKind is the kind of a character contact event.
type ContactKind uint8

const (
	// ContactValidate is raised before the character collides with a body.
	ContactValidate ContactKind = iota
	// ContactAdded is raised when the character starts touching a body.
	ContactAdded
	// AdjustVelocity is raised before the velocity of a touched body is used to resolve the character.
	AdjustVelocity

	contactKindCount
)

// String ...
func (k ContactKind) String() string {
	switch k {
	case ContactValidate:
		return "validate"
	case ContactAdded:
		return "added"
	case AdjustVelocity:
		return "adjustVelocity"
	}
	return "unknown"
}

// ContactHandler handles the contact events of a character with other bodies. Handlers are compared by
// equality when unsubscribing and should therefore be pointers.
type ContactHandler interface {
	// HandleContactValidate may answer whether the character collides with body. Returning false as
	// second value leaves the decision to other handlers.
	HandleContactValidate(body backend.BodyID) (accept bool, answered bool)
	// HandleContactAdded handles the character starting to touch body at position. s may be modified.
	HandleContactAdded(body backend.BodyID, position, normal mgl32.Vec3, s *backend.CharacterContactSettings)
	// HandleAdjustBodyVelocity may modify the velocity of body as seen by the character.
	HandleAdjustBodyVelocity(body backend.BodyID, linear, angular *mgl32.Vec3)
}

// NopContactHandler implements ContactHandler without doing anything.
type NopContactHandler struct{}

// Compile time check to make sure NopContactHandler implements ContactHandler.
var _ ContactHandler = NopContactHandler{}

func (NopContactHandler) HandleContactValidate(backend.BodyID) (bool, bool) { return true, false }
func (NopContactHandler) HandleContactAdded(backend.BodyID, mgl32.Vec3, mgl32.Vec3, *backend.CharacterContactSettings) {
}
func (NopContactHandler) HandleAdjustBodyVelocity(backend.BodyID, *mgl32.Vec3, *mgl32.Vec3) {}

// ContactRouter is the backend.CharacterContactListener of a single character. It fans the native
// callbacks out to the subscribed handlers, filtered by the other body.
type ContactRouter struct {
	self      backend.BodyID
	log       *slog.Logger
	listeners *listener.Registry[ContactHandler]
}

// Compile time check to make sure ContactRouter implements backend.CharacterContactListener.
var _ backend.CharacterContactListener = (*ContactRouter)(nil)

func newContactRouter(self backend.BodyID, log *slog.Logger) *ContactRouter {
	return &ContactRouter{
		self:      self,
		log:       log,
		listeners: listener.New[ContactHandler](int(contactKindCount)),
	}
}

// Subscribe subscribes h to kind events of the character. filter restricts the events to those with one
// of the bodies passed. An empty filter accepts any body. The subscription is active from the next frame.
func (r *ContactRouter) Subscribe(kind ContactKind, filter []backend.BodyID, h ContactHandler) {
	r.listeners.Subscribe(int(kind), r.self, filter, h)
}

// Unsubscribe removes a subscription made with Subscribe. If no such subscription exists a warning is
// logged and false is returned.
func (r *ContactRouter) Unsubscribe(kind ContactKind, filter []backend.BodyID, h ContactHandler) bool {
	if r.listeners.Unsubscribe(int(kind), r.self, filter, h) {
		return true
	}
	data := orderedmap.NewOrderedMap[string, any]()
	data.Set("character", r.self)
	data.Set("kind", kind.String())
	data.Set("filter", filter)
	r.log.Warn(oerror.WarningMissingHandler.String(), utils.OrderedMapToArgs(data)...)
	return false
}

// BeginStep rebuilds the dispatch snapshot from the current subscriptions.
func (r *ContactRouter) BeginStep() {
	r.listeners.Rebuild()
}

// OnCharacterContactValidate returns the first answer of the handlers, or true if none answered.
func (r *ContactRouter) OnCharacterContactValidate(body backend.BodyID) bool {
	var (
		result  = true
		answers []bool
	)
	for _, e := range r.listeners.Listeners(int(ContactValidate), r.self) {
		if !e.Matches(body) {
			continue
		}
		if accept, ok := e.Handler.HandleContactValidate(body); ok {
			if len(answers) == 0 {
				result = accept
			}
			answers = append(answers, accept)
		}
	}
	if len(answers) > 1 {
		data := orderedmap.NewOrderedMap[string, any]()
		data.Set("character", r.self)
		data.Set("body", body)
		data.Set("answers", answers)
		data.Set("result", result)
		r.log.Warn(oerror.WarningAmbiguousValidate.String(), utils.OrderedMapToArgs(data)...)
	}
	return result
}

// OnCharacterContactAdded ...
func (r *ContactRouter) OnCharacterContactAdded(body backend.BodyID, position, normal mgl32.Vec3, s *backend.CharacterContactSettings) {
	for _, e := range r.listeners.Listeners(int(ContactAdded), r.self) {
		if e.Matches(body) {
			e.Handler.HandleContactAdded(body, position, normal, s)
		}
	}
}

// OnAdjustBodyVelocity runs the handlers on a copy of the velocity of body and writes the result back.
func (r *ContactRouter) OnAdjustBodyVelocity(body backend.BodyID, linear, angular *mgl32.Vec3) {
	entries := r.listeners.Listeners(int(AdjustVelocity), r.self)
	if len(entries) == 0 || linear == nil || angular == nil {
		return
	}
	lin, ang := *linear, *angular
	for _, e := range entries {
		if e.Matches(body) {
			e.Handler.HandleAdjustBodyVelocity(body, &lin, &ang)
		}
	}
	*linear, *angular = lin, ang
}
