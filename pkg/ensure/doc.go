// Package ensure implements the desired-state convergence engine shared by
// every resource-shaped actor. A concrete actor registers one handler per
// managed option (getter or comparator, plus setter) in declaration order;
// the engine precaches remote state, reconciles the top-level present/absent
// state, then walks the attribute table and sets every attribute whose
// comparison fails. Handler completeness is validated at construction, so a
// missing getter or setter is a fatal configuration error long before any
// remote call.
package ensure
