// Package openapi describes service form schemas as OpenAPI 3 documents so
// API consumers can generate clients for application submissions. Built on
// kin-openapi.
package openapi
