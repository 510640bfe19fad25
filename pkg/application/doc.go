// Package application holds the Application aggregate and the rules that
// govern its editable data: full-replace writes, the editing-enabled overlay
// set by staff, and the append-only PreviousVersions history. Persistence
// layers are expected to run EnableEditing and its snapshot append as one
// transaction.
package application
