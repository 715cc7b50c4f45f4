package oerror

// Warning is a non-fatal condition that is logged and never returned to the caller.
type Warning string

const (
	// WarningMissingHandler is logged when a listener is unregistered that was never registered with the
	// same handler and filter set.
	WarningMissingHandler Warning = "MissingHandlerWarning"
	// WarningAmbiguousValidate is logged when more than one listener answered a validate event for the
	// same pair. The first answer is used.
	WarningAmbiguousValidate Warning = "AmbiguousValidateWarning"
	// WarningAmbiguousContact is logged when more than one listener wrote a different value to the same
	// contact settings field during one native event. The first written value is kept.
	WarningAmbiguousContact Warning = "AmbiguousContactWarning"
)

// String ...
func (w Warning) String() string {
	return string(w)
}
