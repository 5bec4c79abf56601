// Package data wires modules to their databases. A Factory turns each
// configured Connection into process-wide Options; a Registry keeps the
// Options and the repository bindings of every module; a Scope hands out
// exactly one Context per module, the repositories bound to it and its
// UnitOfWork.
package data
