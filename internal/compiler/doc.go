// Package compiler turns an ordered handler list into the immutable decision
// tree the runtime walks. Levels are fixed: update kind, then command, then
// conversation state. Leaves hold candidates sorted by specificity and
// declaration priority. Identical unconditional triggers are rejected here,
// at build time, instead of being resolved silently at dispatch.
package compiler
