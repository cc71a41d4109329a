// Package effectchain owns the session's pool of effects and rewires them
// into a single serial chain between a global input and output.
//
// Every effect is built once by New and lives for the whole session.
// ConnectNodes validates a requested order before touching the graph, then
// swaps the topology in one atomic step, so a rejected request leaves the
// previous chain untouched.
package effectchain
