// Package circuit implements a symbolic quantum circuit: an ordered queue
// of gate operations over a fixed number of qubits, with measurement
// register bookkeeping, circuit concatenation and OpenQASM 2.0
// serialization.
//
// The circuit performs no numeric evolution itself; executing the queue is
// delegated to a Backend. A circuit is mutable while it is being built and
// becomes permanently read-only after a successful execution handoff.
package circuit

import "fmt"

// register is one named view over a subset of measured qubits. Views may
// overlap; names are unique for the lifetime of the circuit.
type register struct {
	name   string
	qubits []int
}

// Circuit holds an ordered queue of unitary gates plus at most one merged
// measurement gate. Gates are referenced, not copied.
//
// Circuit is not safe for concurrent mutation. Build it on one goroutine;
// after Execute it is read-only and may be shared freely.
type Circuit struct {
	nqubits   int
	queue     []*Gate
	measure   *Gate
	registers []register
	frozen    bool
}

// New creates an empty circuit over nqubits qubits.
func New(nqubits int) (*Circuit, error) {
	if nqubits <= 0 {
		return nil, fmt.Errorf("circuit needs at least one qubit, got %d: %w",
			nqubits, ErrQubitCountMismatch)
	}
	return &Circuit{nqubits: nqubits}, nil
}

// Add appends one gate to the circuit. Preconditions are checked in order:
// the circuit must not be frozen, the gate's total qubit count must be
// unset or equal to the circuit's, and no target qubit may already be
// measured. Measurement gates are routed into the register bookkeeping
// instead of the queue. A failed Add leaves the circuit unchanged.
func (c *Circuit) Add(g *Gate) error {
	if c.frozen {
		return fmt.Errorf("add %s: %w", g.name, ErrCircuitFrozen)
	}
	if err := g.bind(c.nqubits); err != nil {
		return err
	}
	if err := c.checkMeasured(g); err != nil {
		return err
	}
	if g.kind == KindMeasure {
		return c.addMeasurement(g)
	}
	c.queue = append(c.queue, g)
	return nil
}

// checkMeasured rejects any gate that touches a qubit already covered by
// the measurement gate. Measurement collapses a qubit; there is no
// re-allocation, so the qubit is frozen against every later gate.
func (c *Circuit) checkMeasured(g *Gate) error {
	if c.measure == nil {
		return nil
	}
	for _, q := range g.Qubits() {
		for _, t := range c.measure.targets {
			if q == t {
				return fmt.Errorf("gate %s targets qubit %d: %w", g.name, q, ErrMeasuredQubitReuse)
			}
		}
	}
	return nil
}

// addMeasurement records a measurement gate. The first measurement becomes
// the circuit's single merged measurement gate and fixes the measurement
// basis; later ones are absorbed into it target-wise, their own basis
// ignored. Each call records one named register view over the incoming
// gate's own targets.
func (c *Circuit) addMeasurement(g *Gate) error {
	if len(g.targets) == 0 {
		return fmt.Errorf("measurement needs at least one target qubit: %w", ErrQubitCountMismatch)
	}
	name := g.register
	if name == "" {
		name = fmt.Sprintf("Register%d", len(c.registers))
	}
	for _, r := range c.registers {
		if r.name == name {
			return fmt.Errorf("register %q: %w", name, ErrDuplicateRegister)
		}
	}
	g.register = name

	if c.measure == nil {
		c.measure = g
	} else {
		c.measure.absorb(g.targets)
	}
	qubits := make([]int, len(g.targets))
	copy(qubits, g.targets)
	c.registers = append(c.registers, register{name: name, qubits: qubits})
	return nil
}

// Concat returns a fresh circuit containing this circuit's gates followed
// by other's. Both operands must have the same qubit count and are left
// unmodified. Every gate is replayed through Add, so all construction
// invariants are re-validated on the combined sequence; in particular,
// register names must be unique across both operands.
func (c *Circuit) Concat(other *Circuit) (*Circuit, error) {
	if c.nqubits != other.nqubits {
		return nil, fmt.Errorf("cannot concatenate a %d-qubit circuit with a %d-qubit circuit: %w",
			c.nqubits, other.nqubits, ErrQubitCountMismatch)
	}
	out, err := New(c.nqubits)
	if err != nil {
		return nil, err
	}
	for _, src := range []*Circuit{c, other} {
		for _, g := range src.queue {
			if err := out.Add(g); err != nil {
				return nil, err
			}
		}
		if err := out.replayMeasurements(src); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// replayMeasurements re-adds src's measurement registers one by one, so
// the combined circuit re-validates register names and measured-qubit
// freezing exactly as direct construction would.
func (c *Circuit) replayMeasurements(src *Circuit) error {
	for _, r := range src.registers {
		g := M(r.qubits...).Named(r.name)
		g.basis = src.measure.basis
		if err := c.Add(g); err != nil {
			return err
		}
	}
	return nil
}

// Size returns the total number of qubits in the circuit.
func (c *Circuit) Size() int { return c.nqubits }

// Depth returns the number of queued gate operations. The measurement gate
// is not part of the queue.
func (c *Circuit) Depth() int { return len(c.queue) }

// Gates returns the queued unitary gates in execution order. The returned
// slice is owned by the circuit.
func (c *Circuit) Gates() []*Gate { return c.queue }

// Measurement returns the circuit's merged measurement gate, or nil when no
// qubit is measured.
func (c *Circuit) Measurement() *Gate { return c.measure }

// RegisterNames returns the measurement register names in the order they
// were created.
func (c *Circuit) RegisterNames() []string {
	names := make([]string, len(c.registers))
	for i, r := range c.registers {
		names[i] = r.name
	}
	return names
}

// Register returns the qubits recorded under the given register name, in
// first-seen order, or nil when the name is unknown.
func (c *Circuit) Register(name string) []int {
	for _, r := range c.registers {
		if r.name == name {
			qubits := make([]int, len(r.qubits))
			copy(qubits, r.qubits)
			return qubits
		}
	}
	return nil
}

// Frozen reports whether the circuit has been handed to a backend. A frozen
// circuit rejects all structural mutation.
func (c *Circuit) Frozen() bool { return c.frozen }
