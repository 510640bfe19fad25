// Package form instantiates a runtime form from a schema.Schema and derives
// per-field and whole-form validity from the declared constraints. Rules run
// in a fixed precedence (required, option, email, length, number, range,
// pattern); every rule is enforced while the first failure supplies the
// default message unless the field declares validation.message.
//
// A Form moves from pristine to dirty on input and to submitted when Submit
// emits a record. Invalid submissions touch every control and leave the form
// editable; ResetSubmitting re-arms a submitted form after a remote failure.
package form
