// Package core holds the small numeric and buffer helpers shared by the
// rendering graph and the effect composites.
package core
