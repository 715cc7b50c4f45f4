// Package contact routes native contact callbacks of the physics backend to per-body listeners. Every
// native event is delivered to the listeners of both bodies, each seeing the pair and the contact
// settings from its own point of view.
package contact

import (
	"log/slog"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/physcore/backend"
	"github.com/oomph-ac/physcore/internal/listener"
	"github.com/oomph-ac/physcore/oerror"
	"github.com/oomph-ac/physcore/omath"
	"github.com/oomph-ac/physcore/utils"
)

// Router is the contact listener installed on the backend world. Subscriptions may change at any time,
// but dispatch only sees the subscriptions that existed when BeginStep was last called.
type Router struct {
	bodies    backend.Bodies
	log       *slog.Logger
	listeners *listener.Registry[Handler]
}

// Compile time check to make sure Router implements backend.ContactListener.
var _ backend.ContactListener = (*Router)(nil)

// NewRouter returns a Router resolving bodies through bodies. bodies may be nil, in which case surface
// velocities are not folded and remove events are always delivered.
func NewRouter(bodies backend.Bodies, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		bodies:    bodies,
		log:       log,
		listeners: listener.New[Handler](int(kindCount)),
	}
}

// Subscribe subscribes h to kind events of body. filter restricts the events to those where the other
// body is one of the ids passed. An empty filter accepts any body.
func (r *Router) Subscribe(body backend.BodyID, kind Kind, filter []backend.BodyID, h Handler) {
	r.listeners.Subscribe(int(kind), body, filter, h)
}

// Unsubscribe removes a subscription previously made with Subscribe. The filter is compared as a set. If
// no such subscription exists a warning is logged and false is returned.
func (r *Router) Unsubscribe(body backend.BodyID, kind Kind, filter []backend.BodyID, h Handler) bool {
	if r.listeners.Unsubscribe(int(kind), body, filter, h) {
		return true
	}
	data := orderedmap.NewOrderedMap[string, any]()
	data.Set("body", body)
	data.Set("kind", kind.String())
	data.Set("filter", filter)
	r.log.Warn(oerror.WarningMissingHandler.String(), utils.OrderedMapToArgs(data)...)
	return false
}

// Clear empties the dispatch snapshot of every kind.
func (r *Router) Clear() {
	r.listeners.Clear()
}

// RegisterInterest makes body receive kind events until the next Clear, using its subscriptions at the
// time of the call.
func (r *Router) RegisterInterest(body backend.BodyID, kind Kind) {
	r.listeners.RegisterInterest(int(kind), body)
}

// BeginStep rebuilds the dispatch snapshot from the current subscriptions. It must be called before the
// world is stepped.
func (r *Router) BeginStep() {
	r.listeners.Rebuild()
}

// Subscribed returns the amount of subscriptions body has for kind.
func (r *Router) Subscribed(body backend.BodyID, kind Kind) int {
	return r.listeners.Subscribed(int(kind), body)
}

// OnContactValidate ...
func (r *Router) OnContactValidate(body1, body2 backend.BodyID) backend.ValidateResult {
	return r.Dispatch(KindValidate, body1, body2, nil)
}

// OnContactAdded ...
func (r *Router) OnContactAdded(body1, body2 backend.BodyID, s *backend.ContactSettings) {
	r.Dispatch(KindAdd, body1, body2, s)
}

// OnContactPersisted ...
func (r *Router) OnContactPersisted(body1, body2 backend.BodyID, s *backend.ContactSettings) {
	r.Dispatch(KindPersist, body1, body2, s)
}

// OnContactRemoved ...
func (r *Router) OnContactRemoved(body1, body2 backend.BodyID) {
	r.Dispatch(KindRemove, body1, body2, nil)
}

// Dispatch delivers a native event between a and b to the listeners of both bodies. raw is only used for
// add and persist events and is updated with the settings the listeners decided on. The returned result
// is only meaningful for validate events.
func (r *Router) Dispatch(kind Kind, a, b backend.BodyID, raw *backend.ContactSettings) backend.ValidateResult {
	roles := [2]Pair{{Self: a, Other: b}, {Self: b, Other: a, Reversed: true}}
	switch kind {
	case KindValidate:
		return r.validate(roles)
	case KindAdd, KindPersist:
		r.settings(kind, roles, raw)
	case KindRemove:
		r.remove(roles)
	}
	return backend.AcceptAllContactsForThisBodyPair
}

// validate returns the first answer given by any listener of either body.
func (r *Router) validate(roles [2]Pair) backend.ValidateResult {
	var (
		result  = backend.AcceptAllContactsForThisBodyPair
		answers []backend.ValidateResult
	)
	for _, role := range roles {
		for _, e := range r.listeners.Listeners(int(KindValidate), role.Self) {
			if !e.Matches(role.Other) {
				continue
			}
			if res, ok := e.Handler.HandleContactValidate(role); ok {
				if len(answers) == 0 {
					result = res
				}
				answers = append(answers, res)
			}
		}
	}
	if len(answers) > 1 {
		data := orderedmap.NewOrderedMap[string, any]()
		data.Set("body1", roles[0].Self)
		data.Set("body2", roles[1].Self)
		data.Set("answers", answers)
		data.Set("result", result.String())
		r.log.Warn(oerror.WarningAmbiguousValidate.String(), utils.OrderedMapToArgs(data)...)
	}
	return result
}

// decisions tracks which non-vector fields of the canonical settings were already written by a listener
// during one native event.
type decisions struct {
	scalars [len(scalarFields)]bool
	sensor  bool
	first   Settings
}

// settings runs the add or persist listeners of both bodies on their views of raw.
func (r *Router) settings(kind Kind, roles [2]Pair, raw *backend.ContactSettings) {
	var (
		canonical = FromNative(raw)
		written   decisions
		changed   bool
	)
	for _, role := range roles {
		entries := r.listeners.Listeners(int(kind), role.Self)
		if len(entries) == 0 {
			continue
		}
		view := canonical
		if role.Reversed {
			view = view.Reversed()
		}
		view.RelativeLinearSurfaceVelocity = mgl32.Vec3{}
		view.RelativeAngularSurfaceVelocity = mgl32.Vec3{}

		for _, e := range entries {
			if !e.Matches(role.Other) {
				continue
			}
			before := view
			switch kind {
			case KindAdd:
				e.Handler.HandleContactAdded(role, &view)
			case KindPersist:
				e.Handler.HandleContactPersisted(role, &view)
			}
			r.resolve(&written, role, before, &view)
			changed = true
		}

		lin, ang := view.RelativeLinearSurfaceVelocity, view.RelativeAngularSurfaceVelocity
		if role.Reversed {
			view = view.Reversed()
		}
		view.RelativeLinearSurfaceVelocity = canonical.RelativeLinearSurfaceVelocity
		view.RelativeAngularSurfaceVelocity = canonical.RelativeAngularSurfaceVelocity
		canonical = view
		if !omath.IsNearZero(lin) || !omath.IsNearZero(ang) {
			r.fold(&canonical, role, lin, ang)
		}
	}
	if changed {
		canonical.ToNative(raw)
	}
}

// resolve keeps the first value written to every non-vector field during one native event. A later
// listener writing a different value is reverted and logged.
func (r *Router) resolve(d *decisions, role Pair, before Settings, view *Settings) {
	prev, cur := before, *view
	if role.Reversed {
		prev, cur = prev.Reversed(), cur.Reversed()
	}
	for i, f := range scalarFields {
		old, now := *f.ptr(&prev), *f.ptr(&cur)
		if old == now {
			continue
		}
		if !d.scalars[i] {
			d.scalars[i] = true
			*f.ptr(&d.first) = now
			continue
		}
		if first := *f.ptr(&d.first); first != now {
			r.ambiguous(role, f.name, first, now)
			*f.ptr(&cur) = first
		}
	}
	if prev.IsSensor != cur.IsSensor {
		if !d.sensor {
			d.sensor = true
			d.first.IsSensor = cur.IsSensor
		} else if d.first.IsSensor != cur.IsSensor {
			r.ambiguous(role, "IsSensor", d.first.IsSensor, cur.IsSensor)
			cur.IsSensor = d.first.IsSensor
		}
	}
	if role.Reversed {
		cur = cur.Reversed()
	}
	cur.RelativeLinearSurfaceVelocity = view.RelativeLinearSurfaceVelocity
	cur.RelativeAngularSurfaceVelocity = view.RelativeAngularSurfaceVelocity
	*view = cur
}

func (r *Router) ambiguous(role Pair, field string, kept, rejected any) {
	data := orderedmap.NewOrderedMap[string, any]()
	data.Set("self", role.Self)
	data.Set("other", role.Other)
	data.Set("field", field)
	data.Set("kept", kept)
	data.Set("rejected", rejected)
	r.log.Warn(oerror.WarningAmbiguousContact.String(), utils.OrderedMapToArgs(data)...)
}

// fold adds the local surface velocity set by the listeners of role.Self to the world space relative
// surface velocity of s. The surface velocity of body1 is subtracted and that of body2 added. The spin of
// body2 is moved to the centre of mass of body1, which adds ω2 x (com1 - com2) to the linear part.
func (r *Router) fold(s *Settings, role Pair, lin, ang mgl32.Vec3) {
	if r.bodies == nil {
		return
	}
	self, ok := r.bodies.Body(role.Self)
	if !ok {
		r.log.Debug("surface velocity of unresolvable body dropped", "body", role.Self)
		return
	}
	rot := self.Rotation()
	worldLin, worldAng := rot.Rotate(lin), rot.Rotate(ang)
	if !role.Reversed {
		s.RelativeLinearSurfaceVelocity = s.RelativeLinearSurfaceVelocity.Sub(worldLin)
		s.RelativeAngularSurfaceVelocity = s.RelativeAngularSurfaceVelocity.Sub(worldAng)
		return
	}
	if other, ok := r.bodies.Body(role.Other); ok {
		arm := other.CenterOfMass().Sub(self.CenterOfMass())
		worldLin = worldLin.Add(worldAng.Cross(arm))
	}
	s.RelativeLinearSurfaceVelocity = s.RelativeLinearSurfaceVelocity.Add(worldLin)
	s.RelativeAngularSurfaceVelocity = s.RelativeAngularSurfaceVelocity.Add(worldAng)
}

// remove delivers a remove event to both bodies, skipping bodies the backend no longer knows.
func (r *Router) remove(roles [2]Pair) {
	for _, role := range roles {
		entries := r.listeners.Listeners(int(KindRemove), role.Self)
		if len(entries) == 0 {
			continue
		}
		if r.bodies != nil {
			if _, ok := r.bodies.Body(role.Self); !ok {
				r.log.Debug("contact removal of unresolvable body skipped", "body", role.Self)
				continue
			}
		}
		for _, e := range entries {
			if e.Matches(role.Other) {
				e.Handler.HandleContactRemoved(role)
			}
		}
	}
}
