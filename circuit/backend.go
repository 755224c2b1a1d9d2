package circuit

import "strings"

// Result is what a backend returns for one circuit execution. Counts maps
// measured bit strings to occurrences for backends that sample;
// trace-style backends fill Program and Instructions only.
type Result struct {
	Backend      string
	Counts       map[string]int
	Program      string
	Instructions int
}

// Backend consumes a finalized circuit and produces a result. How the
// queue is evolved (state vector, samples, remote hardware) is entirely
// backend-defined.
type Backend interface {
	Name() string
	Run(c *Circuit) (*Result, error)
}

// Execute hands the circuit to a backend. On success the circuit
// transitions to the frozen state and rejects all further structural
// mutation; a failed run leaves it in the building state.
func (c *Circuit) Execute(b Backend) (*Result, error) {
	res, err := b.Run(c)
	if err != nil {
		return nil, err
	}
	c.frozen = true
	return res, nil
}

// TraceBackend lowers the circuit to its OpenQASM program without
// simulating it. It is the reference implementation of the execution
// contract and is used by the composer's execute action and the tests.
type TraceBackend struct{}

// Name implements Backend.
func (TraceBackend) Name() string { return "trace" }

// Run implements Backend by serializing the circuit and counting its
// instruction lines.
func (TraceBackend) Run(c *Circuit) (*Result, error) {
	program := c.ToQASM()
	instructions := 0
	for _, line := range strings.Split(program, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") ||
			strings.HasPrefix(line, "qreg") || strings.HasPrefix(line, "creg") {
			continue
		}
		instructions++
	}
	return &Result{
		Backend:      "trace",
		Program:      program,
		Instructions: instructions,
	}, nil
}

// InitialStateGrad adapts an upstream gradient flowing into a backend's
// initial-state preparation. The preparation injects a fixed basis state,
// so the contribution into the reference amplitude at index 0 is zeroed
// and the rest passes through unchanged.
func InitialStateGrad(grad []complex128) []complex128 {
	out := make([]complex128, len(grad))
	copy(out, grad)
	if len(out) > 0 {
		out[0] = 0
	}
	return out
}
