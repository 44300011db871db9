// Package rules implements the hybrid decision layer that turns a model
// probability and deterministic signals into a category decision and a
// fine-grained status.
//
// Category rules are evaluated in order and the first match wins:
//
//  1. sender domain on the hard-negative list: reject
//  2. subject or body contains a high-precision phrase: accept
//  3. sender domain on the platform list (optionally gated on a subject
//     keyword): accept
//  4. otherwise accept iff probability >= threshold
//
// Accepted items then receive a status from a second ordered list:
// application confirmation, interview, rejection, job opening, other.
//
// All lists and the threshold come from a Config value passed to NewEngine;
// the package holds no mutable global state, so decisions are reproducible
// per call.
package rules
