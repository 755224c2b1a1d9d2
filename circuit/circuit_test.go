package circuit

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func mustNew(t *testing.T, nqubits int) *Circuit {
	t.Helper()
	c, err := New(nqubits)
	if err != nil {
		t.Fatalf("New(%d): %v", nqubits, err)
	}
	return c
}

func mustAdd(t *testing.T, c *Circuit, gates ...*Gate) {
	t.Helper()
	for _, g := range gates {
		if err := c.Add(g); err != nil {
			t.Fatalf("Add(%s): %v", g.Name(), err)
		}
	}
}

func TestEmptyCircuit(t *testing.T) {
	for _, n := range []int{1, 2, 5, 11} {
		c := mustNew(t, n)
		if c.Size() != n {
			t.Errorf("Size() = %d, want %d", c.Size(), n)
		}
		if c.Depth() != 0 {
			t.Errorf("Depth() = %d, want 0", c.Depth())
		}
	}
}

func TestNewRejectsBadQubitCount(t *testing.T) {
	for _, n := range []int{0, -1, -7} {
		if _, err := New(n); !errors.Is(err, ErrQubitCountMismatch) {
			t.Errorf("New(%d): err = %v, want ErrQubitCountMismatch", n, err)
		}
	}
}

func TestAddDisjointGates(t *testing.T) {
	c := mustNew(t, 2)
	mustAdd(t, c, H(0), X(1))
	if c.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", c.Depth())
	}
}

func TestAddBindsQubitCount(t *testing.T) {
	g := H(0)
	if g.NQubits() != 0 {
		t.Fatalf("fresh gate NQubits() = %d, want 0", g.NQubits())
	}
	c := mustNew(t, 3)
	mustAdd(t, c, g)
	if g.NQubits() != 3 {
		t.Errorf("bound gate NQubits() = %d, want 3", g.NQubits())
	}

	// A gate bound to 3 qubits is reusable in another 3-qubit circuit...
	c2 := mustNew(t, 3)
	mustAdd(t, c2, g)

	// ...but not in a circuit of a different size.
	c4 := mustNew(t, 4)
	if err := c4.Add(g); !errors.Is(err, ErrQubitCountMismatch) {
		t.Errorf("Add to 4-qubit circuit: err = %v, want ErrQubitCountMismatch", err)
	}
}

func TestMeasuredQubitReuse(t *testing.T) {
	c := mustNew(t, 2)
	mustAdd(t, c, M(0))

	if err := c.Add(H(0)); !errors.Is(err, ErrMeasuredQubitReuse) {
		t.Errorf("H on measured qubit: err = %v, want ErrMeasuredQubitReuse", err)
	}
	if err := c.Add(CNOT(0, 1)); !errors.Is(err, ErrMeasuredQubitReuse) {
		t.Errorf("CNOT using measured control: err = %v, want ErrMeasuredQubitReuse", err)
	}
	// Re-measuring under a new register name is still a reuse.
	if err := c.Add(M(0).Named("again")); !errors.Is(err, ErrMeasuredQubitReuse) {
		t.Errorf("re-measure: err = %v, want ErrMeasuredQubitReuse", err)
	}
	if c.Depth() != 0 {
		t.Errorf("rejected gates leaked into queue, Depth() = %d", c.Depth())
	}
	if got := len(c.RegisterNames()); got != 1 {
		t.Errorf("rejected register leaked, have %d registers", got)
	}
}

func TestRegisterNames(t *testing.T) {
	c := mustNew(t, 4)
	mustAdd(t, c, M(0).Named("out"))

	if err := c.Add(M(1).Named("out")); !errors.Is(err, ErrDuplicateRegister) {
		t.Errorf("duplicate name: err = %v, want ErrDuplicateRegister", err)
	}
	mustAdd(t, c, M(1, 2).Named("pair"))

	names := c.RegisterNames()
	if len(names) != 2 || names[0] != "out" || names[1] != "pair" {
		t.Errorf("RegisterNames() = %v, want [out pair]", names)
	}
	if got := c.Register("out"); len(got) != 1 || got[0] != 0 {
		t.Errorf(`Register("out") = %v, want [0]`, got)
	}
	if got := c.Register("pair"); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf(`Register("pair") = %v, want [1 2]`, got)
	}
	if c.Register("missing") != nil {
		t.Errorf("unknown register should be nil")
	}
}

func TestDefaultRegisterNames(t *testing.T) {
	c := mustNew(t, 3)
	mustAdd(t, c, M(0), M(1))

	names := c.RegisterNames()
	if len(names) != 2 || names[0] != "Register0" || names[1] != "Register1" {
		t.Errorf("RegisterNames() = %v, want [Register0 Register1]", names)
	}
}

func TestEmptyMeasurementRejected(t *testing.T) {
	c := mustNew(t, 2)
	if err := c.Add(M()); !errors.Is(err, ErrQubitCountMismatch) {
		t.Errorf("M(): err = %v, want ErrQubitCountMismatch", err)
	}
	if c.Measurement() != nil || len(c.RegisterNames()) != 0 {
		t.Errorf("rejected measurement leaked into the circuit")
	}
	// Lowering a circuit after the rejection must not see a measurement.
	if got := c.ToQASM(); strings.Contains(got, "measure") || strings.Contains(got, "creg") {
		t.Errorf("ToQASM emitted measurement artifacts:\n%s", got)
	}
}

func TestMeasurementMergeKeepsFirstBasis(t *testing.T) {
	c := mustNew(t, 2)
	mustAdd(t, c, M(0), MX(1).Named("xreg"))

	m := c.Measurement()
	if m.Basis() != BasisZ {
		t.Errorf("merged basis = %v, want the first gate's BasisZ", m.Basis())
	}
	if len(m.Targets()) != 2 {
		t.Errorf("merged targets = %v, want both qubits", m.Targets())
	}
}

func TestMeasurementMerge(t *testing.T) {
	c := mustNew(t, 4)
	mustAdd(t, c, M(2), M(0, 1).Named("pair"))

	m := c.Measurement()
	if m == nil {
		t.Fatal("Measurement() = nil")
	}
	targets := m.Targets()
	want := []int{2, 0, 1}
	if len(targets) != len(want) {
		t.Fatalf("merged targets = %v, want %v", targets, want)
	}
	for i := range want {
		if targets[i] != want[i] {
			t.Fatalf("merged targets = %v, want %v", targets, want)
		}
	}
}

// flatten renders a circuit's full gate sequence (queue plus measurement
// registers) as comparable strings.
func flatten(c *Circuit) []string {
	var out []string
	for _, g := range c.Gates() {
		out = append(out, fmt.Sprintf("%s%v", g.Name(), g.Qubits()))
	}
	for _, name := range c.RegisterNames() {
		out = append(out, fmt.Sprintf("measure:%s%v", name, c.Register(name)))
	}
	return out
}

func TestConcatAssociative(t *testing.T) {
	build := func() (*Circuit, *Circuit, *Circuit) {
		a := mustNew(t, 3)
		mustAdd(t, a, H(0), CNOT(0, 1))
		b := mustNew(t, 3)
		mustAdd(t, b, X(2), RZ(1, 0.5))
		c := mustNew(t, 3)
		mustAdd(t, c, M(2).Named("out"))
		return a, b, c
	}

	a, b, c := build()
	ab, err := a.Concat(b)
	if err != nil {
		t.Fatalf("a+b: %v", err)
	}
	left, err := ab.Concat(c)
	if err != nil {
		t.Fatalf("(a+b)+c: %v", err)
	}

	a, b, c = build()
	bc, err := b.Concat(c)
	if err != nil {
		t.Fatalf("b+c: %v", err)
	}
	right, err := a.Concat(bc)
	if err != nil {
		t.Fatalf("a+(b+c): %v", err)
	}

	lf, rf := flatten(left), flatten(right)
	if len(lf) != len(rf) {
		t.Fatalf("flattened sequences differ: %v vs %v", lf, rf)
	}
	for i := range lf {
		if lf[i] != rf[i] {
			t.Fatalf("flattened sequences differ at %d: %v vs %v", i, lf, rf)
		}
	}
}

func TestConcatDoesNotMutateOperands(t *testing.T) {
	a := mustNew(t, 2)
	mustAdd(t, a, H(0), M(1).Named("out"))
	b := mustNew(t, 2)
	mustAdd(t, b, X(0))

	out, err := a.Concat(b)
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	if out.Depth() != 2 {
		t.Errorf("combined Depth() = %d, want 2", out.Depth())
	}
	if a.Depth() != 1 || b.Depth() != 1 {
		t.Errorf("operands mutated: a.Depth()=%d b.Depth()=%d", a.Depth(), b.Depth())
	}
	if len(a.RegisterNames()) != 1 || len(b.RegisterNames()) != 0 {
		t.Errorf("operand registers mutated")
	}
}

func TestConcatQubitCountMismatch(t *testing.T) {
	a := mustNew(t, 2)
	b := mustNew(t, 3)
	if _, err := a.Concat(b); !errors.Is(err, ErrQubitCountMismatch) {
		t.Errorf("Concat: err = %v, want ErrQubitCountMismatch", err)
	}
}

func TestConcatRegisterCollision(t *testing.T) {
	a := mustNew(t, 2)
	mustAdd(t, a, M(0).Named("out"))
	b := mustNew(t, 2)
	mustAdd(t, b, M(1).Named("out"))

	if _, err := a.Concat(b); !errors.Is(err, ErrDuplicateRegister) {
		t.Errorf("Concat: err = %v, want ErrDuplicateRegister", err)
	}
}

func TestConcatMeasuredQubitCollision(t *testing.T) {
	a := mustNew(t, 2)
	mustAdd(t, a, M(0).Named("first"))
	b := mustNew(t, 2)
	mustAdd(t, b, H(0))

	if _, err := a.Concat(b); !errors.Is(err, ErrMeasuredQubitReuse) {
		t.Errorf("Concat: err = %v, want ErrMeasuredQubitReuse", err)
	}
}

func TestFrozenCircuitRejectsAdd(t *testing.T) {
	c := mustNew(t, 2)
	mustAdd(t, c, H(0), M(1).Named("out"))

	if _, err := c.Execute(TraceBackend{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !c.Frozen() {
		t.Fatal("circuit not frozen after Execute")
	}

	depth, registers := c.Depth(), len(c.RegisterNames())
	if err := c.Add(X(0)); !errors.Is(err, ErrCircuitFrozen) {
		t.Errorf("Add after execute: err = %v, want ErrCircuitFrozen", err)
	}
	if err := c.Add(M(0).Named("late")); !errors.Is(err, ErrCircuitFrozen) {
		t.Errorf("measure after execute: err = %v, want ErrCircuitFrozen", err)
	}
	if c.Depth() != depth || len(c.RegisterNames()) != registers {
		t.Errorf("frozen circuit mutated: depth %d->%d registers %d->%d",
			depth, c.Depth(), registers, len(c.RegisterNames()))
	}
}
