// Package graph implements a small pull-based audio node graph.
//
// A [Context] owns every [Unit] created against it and renders the graph in
// fixed-size quanta. Units expose indexed signal ports and named control
// [Param]s. Signals are routed port to port with [Connect] or [ConnectPorts],
// and into parameters with [Modulate]; parameters never appear in a signal
// chain.
//
// Rendering pulls from the destination. Each unit renders at most once per
// quantum, so fan-out is free and feedback loops are legal: a unit reached
// again while it is still rendering contributes its previous quantum.
// Started sources (oscillators, buffer sources) render every quantum even
// when nothing downstream reaches the destination.
//
// All wiring and parameter changes are serialized with rendering by the
// context lock. [Context.Atomically] applies a batch of wiring changes so that
// no quantum observes a half-applied batch.
package graph
