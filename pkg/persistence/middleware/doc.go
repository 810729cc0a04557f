// Package middleware provides StateStore decorators: encryption of stored
// states and a guard against writing states no route knows about.
package middleware
