// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. Beyond domain and ports they only
// depend on small libraries for text folding, edit distance, concurrency
// primitives and tracing.
package services
