package circuit

import (
	"fmt"
	"strings"
)

// Kind distinguishes ordinary unitary gates from measurements, which the
// circuit routes through its register bookkeeping instead of the queue.
type Kind int

const (
	KindUnitary Kind = iota
	KindMeasure
)

// Basis selects the measurement basis. X and Y measurements lower to a
// basis change followed by a computational-basis measurement.
type Basis int

const (
	BasisZ Basis = iota
	BasisX
	BasisY
)

// Gate is one symbolic quantum operation: an opcode, the qubits it acts on
// and, for measurements, a register name. Gates carry no matrices; numeric
// evolution belongs to a Backend.
//
// A gate's qubit data is immutable once the gate has been added to a
// circuit. Only the total qubit count and the register name may be
// back-filled by the circuit, and only when unset.
type Gate struct {
	name     string // QASM opcode: "h", "cx", "rx", "measure", ...
	kind     Kind
	targets  []int
	controls []int
	params   []float64
	basis    Basis
	register string
	nqubits  int // 0 until bound to a circuit
}

func single(name string, q int) *Gate {
	return &Gate{name: name, targets: []int{q}}
}

func rotation(name string, q int, params ...float64) *Gate {
	return &Gate{name: name, targets: []int{q}, params: params}
}

func controlled(name string, control, target int, params ...float64) *Gate {
	return &Gate{name: name, controls: []int{control}, targets: []int{target}, params: params}
}

// H is the Hadamard gate on qubit q.
func H(q int) *Gate { return single("h", q) }

// X is the Pauli X gate on qubit q.
func X(q int) *Gate { return single("x", q) }

// Y is the Pauli Y gate on qubit q.
func Y(q int) *Gate { return single("y", q) }

// Z is the Pauli Z gate on qubit q.
func Z(q int) *Gate { return single("z", q) }

// I is the identity gate on qubit q.
func I(q int) *Gate { return single("id", q) }

// S is the phase gate on qubit q.
func S(q int) *Gate { return single("s", q) }

// T is the pi/8 gate on qubit q.
func T(q int) *Gate { return single("t", q) }

// RX rotates qubit q around the X axis by theta.
func RX(q int, theta float64) *Gate { return rotation("rx", q, theta) }

// RY rotates qubit q around the Y axis by theta.
func RY(q int, theta float64) *Gate { return rotation("ry", q, theta) }

// RZ rotates qubit q around the Z axis by theta.
func RZ(q int, theta float64) *Gate { return rotation("rz", q, theta) }

// U1 is the first general unitary gate on qubit q.
func U1(q int, theta float64) *Gate { return rotation("u1", q, theta) }

// U2 is the second general unitary gate on qubit q.
func U2(q int, phi, lam float64) *Gate { return rotation("u2", q, phi, lam) }

// U3 is the third general unitary gate on qubit q.
func U3(q int, theta, phi, lam float64) *Gate { return rotation("u3", q, theta, phi, lam) }

// CNOT is the controlled-NOT gate with control q0 and target q1.
func CNOT(q0, q1 int) *Gate { return controlled("cx", q0, q1) }

// CZ is the controlled-phase gate with control q0 and target q1.
func CZ(q0, q1 int) *Gate { return controlled("cz", q0, q1) }

// CRX is the controlled X rotation with control q0 and target q1.
func CRX(q0, q1 int, theta float64) *Gate { return controlled("crx", q0, q1, theta) }

// CRY is the controlled Y rotation with control q0 and target q1.
func CRY(q0, q1 int, theta float64) *Gate { return controlled("cry", q0, q1, theta) }

// CRZ is the controlled Z rotation with control q0 and target q1.
func CRZ(q0, q1 int, theta float64) *Gate { return controlled("crz", q0, q1, theta) }

// CU1 is the controlled first general unitary with control q0 and target q1.
func CU1(q0, q1 int, theta float64) *Gate { return controlled("cu1", q0, q1, theta) }

// CU3 is the controlled third general unitary with control q0 and target q1.
func CU3(q0, q1 int, theta, phi, lam float64) *Gate {
	return controlled("cu3", q0, q1, theta, phi, lam)
}

// SWAP exchanges qubits q0 and q1.
func SWAP(q0, q1 int) *Gate {
	return &Gate{name: "swap", targets: []int{q0, q1}}
}

// TOFFOLI is the doubly-controlled NOT gate with controls q0, q1 and
// target q2.
func TOFFOLI(q0, q1, q2 int) *Gate {
	return &Gate{name: "ccx", controls: []int{q0, q1}, targets: []int{q2}}
}

// M measures the given qubits in the computational basis. The register name
// is assigned by the circuit at add time unless set with Named.
func M(qubits ...int) *Gate {
	return &Gate{name: "measure", kind: KindMeasure, targets: qubits}
}

// MX measures the given qubits in the X basis.
func MX(qubits ...int) *Gate {
	g := M(qubits...)
	g.basis = BasisX
	return g
}

// MY measures the given qubits in the Y basis.
func MY(qubits ...int) *Gate {
	g := M(qubits...)
	g.basis = BasisY
	return g
}

// Named sets the measurement register name and returns the gate for
// chaining. It has no effect on non-measurement gates.
func (g *Gate) Named(name string) *Gate {
	if g.kind == KindMeasure {
		g.register = name
	}
	return g
}

// Name returns the gate's QASM opcode.
func (g *Gate) Name() string { return g.name }

// Kind reports whether the gate is a unitary or a measurement.
func (g *Gate) Kind() Kind { return g.kind }

// Targets returns the ordered target qubits. Order matters for asymmetric
// gates. The returned slice is owned by the gate and must not be mutated.
func (g *Gate) Targets() []int { return g.targets }

// Controls returns the control qubits, if any.
func (g *Gate) Controls() []int { return g.controls }

// Qubits returns every qubit the gate acts on: controls first, then targets.
func (g *Gate) Qubits() []int {
	qubits := make([]int, 0, len(g.controls)+len(g.targets))
	qubits = append(qubits, g.controls...)
	qubits = append(qubits, g.targets...)
	return qubits
}

// Params returns the gate's angle parameters, if any.
func (g *Gate) Params() []float64 { return g.params }

// Basis returns the measurement basis. Meaningful for measurement gates only.
func (g *Gate) Basis() Basis { return g.basis }

// NQubits returns the total qubit count the gate is bound to, or 0 when the
// gate has not been added to a circuit yet.
func (g *Gate) NQubits() int { return g.nqubits }

// RegisterName returns the measurement register name, or "" when unset.
func (g *Gate) RegisterName() string { return g.register }

// bind fixes the gate's total qubit count. The count can be set exactly
// once; a second bind succeeds only with the same value.
func (g *Gate) bind(nqubits int) error {
	if g.nqubits == 0 {
		g.nqubits = nqubits
		return nil
	}
	if g.nqubits != nqubits {
		return fmt.Errorf("gate %s declares %d total qubits, circuit has %d: %w",
			g.name, g.nqubits, nqubits, ErrQubitCountMismatch)
	}
	return nil
}

// absorb merges another measurement gate's targets into this one,
// preserving first-seen order. Used by the circuit when several measurement
// gates are added under different register names. Only targets merge: the
// receiver's basis stays in force for every absorbed qubit.
func (g *Gate) absorb(qubits []int) {
	for _, q := range qubits {
		seen := false
		for _, t := range g.targets {
			if t == q {
				seen = true
				break
			}
		}
		if !seen {
			g.targets = append(g.targets, q)
		}
	}
}

// QASM projects the gate to its symbolic opcode and operand qubits. X and Y
// basis measurements report the MX/MY pseudo-opcodes that ToQASM expands
// into a basis change plus a measure instruction.
func (g *Gate) QASM() (string, []int) {
	if g.kind == KindMeasure {
		switch g.basis {
		case BasisX:
			return "MX", g.targets
		case BasisY:
			return "MY", g.targets
		default:
			return "measure", g.targets
		}
	}
	op := g.name
	if len(g.params) > 0 {
		formatted := make([]string, len(g.params))
		for i, p := range g.params {
			formatted[i] = FormatParam(p)
		}
		op = fmt.Sprintf("%s(%s)", g.name, strings.Join(formatted, ", "))
	}
	return op, g.Qubits()
}
