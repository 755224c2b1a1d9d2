package circuit

import "errors"

// Sentinel errors for circuit construction. Every structural mutation is
// all-or-nothing: a rejected Add leaves the circuit untouched.
var (
	// ErrQubitCountMismatch is returned when a gate declares a total qubit
	// count different from the circuit's, or when two circuits of different
	// sizes are concatenated.
	ErrQubitCountMismatch = errors.New("qubit count mismatch")

	// ErrMeasuredQubitReuse is returned when a gate targets a qubit that is
	// already covered by the circuit's measurement gate. Measurement is
	// terminal: a measured qubit cannot appear in any later gate.
	ErrMeasuredQubitReuse = errors.New("qubit is already measured")

	// ErrDuplicateRegister is returned when a measurement register name
	// collides with one already recorded on the circuit.
	ErrDuplicateRegister = errors.New("register name already in use")

	// ErrCircuitFrozen is returned when Add is called after the circuit has
	// been handed to a backend. Execution freezes the circuit permanently.
	ErrCircuitFrozen = errors.New("circuit is frozen after execution")
)
