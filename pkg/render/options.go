package render

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the service definition.
type RenderOptions struct {
	// Action is the submission target. Renderers fall back to an empty action
	// (post back to the current URL) when unset.
	Action string
	// Method overrides the submission verb. Browsers only speak GET and POST,
	// so other verbs are sent as POST plus a hidden _method input.
	Method string
	// Values pre-populates rendered controls keyed by fieldName, typically the
	// stored applicationData when a citizen edits a returned application.
	Values map[string]any
	// Errors surfaces server-side validation feedback keyed by fieldName. Use
	// MapErrorPayload to normalise arbitrary payload keys first.
	Errors map[string][]string
	// FormErrors are shown above the fields.
	FormErrors []string
	// Hidden carries extra inputs such as the application revision.
	Hidden []HiddenField
	// SubmitLabel overrides the submit button caption.
	SubmitLabel string
}
