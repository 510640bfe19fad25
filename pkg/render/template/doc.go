// Package template defines the template engine seam used by markup renderers.
// Renderers depend on TemplateRenderer so the bundled go-template engine can be
// swapped for another implementation in tests or embedding applications.
package template
