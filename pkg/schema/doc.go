// Package schema models the runtime form schema administrators attach to a
// Service. A schema is plain data: an ordered list of field descriptors drawn
// from a closed set of field types, each with optional options and validation
// constraints. Schemas are validated as a unit (see Schema.Validate) and
// iterated in ascending Order with ties kept in declaration order. Catalogs of
// services can be loaded from JSON or YAML files with LoadFS.
package schema
