// Package runtime executes dispatches against a compiled table: it reads the
// conversation state, walks the table, evaluates the leaf's content predicates
// and invokes exactly one action.
package runtime
