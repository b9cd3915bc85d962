// Package env implements the plant-care episode: a pure transition function
// over State values (Model) and a thin stateful wrapper around it (Env).
//
// A Model is immutable after construction and may be shared by goroutines.
// Each State carries its own random stream, so equal seeds and equal action
// sequences reproduce identical trajectories.
package env
