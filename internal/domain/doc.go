// Package domain defines the core types of the Mergington activities service.
//
// Types in this package are plain value objects with no behavior beyond
// copying and lookup helpers. They are the shared language between the
// roster registry, the change feed, and the HTTP handlers.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON/YAML tags are allowed (they're metadata, not behavior)
package domain
