// Package sampler slices a few long recordings into many playable samples.
//
// A Definition maps pad keys to start offsets inside one source file. A
// Sampler binds a decoded buffer to that table and starts one voice per
// trigger. The Manager loads instruments lazily, caches them for the
// session and tracks which one is current, alongside a preview voice that
// plays the whole buffer independently of pad hits.
package sampler
