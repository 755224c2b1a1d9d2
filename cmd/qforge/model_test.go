package main

import (
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"qforge/circuit"
)

func testModel(t *testing.T, nqubits int) *Model {
	t.Helper()
	c, err := circuit.New(nqubits)
	if err != nil {
		t.Fatalf("New(%d): %v", nqubits, err)
	}
	m := initialModel(c, zerolog.Nop())
	return &m
}

func TestBuildPendingGates(t *testing.T) {
	m := testModel(t, 3)

	m.pending = menuItem{gateType: "H"}
	m.cursorQubit = 1
	g, err := m.buildPending()
	if err != nil {
		t.Fatalf("H: %v", err)
	}
	if g.Name() != "h" || g.Qubits()[0] != 1 {
		t.Errorf("H: got %s on %v", g.Name(), g.Qubits())
	}

	m.pending = menuItem{gateType: "RX", needsParams: true}
	m.params = []float64{math.Pi / 2}
	g, err = m.buildPending()
	if err != nil {
		t.Fatalf("RX: %v", err)
	}
	if g.Name() != "rx" || g.Params()[0] != math.Pi/2 {
		t.Errorf("RX: got %s(%v)", g.Name(), g.Params())
	}

	// Missing parameters must fail before the gate reaches the circuit.
	m.params = nil
	if _, err := m.buildPending(); err == nil {
		t.Error("RX without params should fail")
	}

	m.pending = menuItem{gateType: "CCX"}
	m.cursorQubit = 0
	m.controlQubit = 1
	m.targetQubit = 2
	g, err = m.buildPending()
	if err != nil {
		t.Fatalf("CCX: %v", err)
	}
	if g.Name() != "ccx" || len(g.Controls()) != 2 {
		t.Errorf("CCX: got %s controls %v", g.Name(), g.Controls())
	}

	m.pending = menuItem{gateType: "MX", needsRegister: true}
	m.registerInput = "out"
	g, err = m.buildPending()
	if err != nil {
		t.Fatalf("MX: %v", err)
	}
	if g.Kind() != circuit.KindMeasure || g.Basis() != circuit.BasisX || g.RegisterName() != "out" {
		t.Errorf("MX: kind=%v basis=%v register=%q", g.Kind(), g.Basis(), g.RegisterName())
	}
}

func TestPlaceGateSurfacesCircuitErrors(t *testing.T) {
	m := testModel(t, 2)

	m.pending = menuItem{gateType: "M", needsRegister: true}
	m.cursorQubit = 0
	m.placeGate()
	if m.statusMsg != "" {
		t.Fatalf("first measure rejected: %q", m.statusMsg)
	}

	// A gate on the measured qubit must be rejected and reported, not
	// silently dropped.
	m.pending = menuItem{gateType: "H"}
	m.cursorQubit = 0
	m.placeGate()
	if m.statusMsg == "" {
		t.Fatal("expected a status message for measured-qubit reuse")
	}
	if m.circuit.Depth() != 0 {
		t.Errorf("rejected gate reached the queue, depth %d", m.circuit.Depth())
	}
}

func TestQASMEditSyncsCircuit(t *testing.T) {
	m := testModel(t, 2)

	m.qasmEditor.SetValue("qreg q[2];\nh q[0];\ncx q[0], q[1];")
	m.parseQASMInput()
	if m.circuit.Depth() != 2 {
		t.Fatalf("edited circuit depth = %d, want 2", m.circuit.Depth())
	}

	// A broken edit keeps the last good circuit and reports the line.
	m.qasmEditor.SetValue("qreg q[2];\nfrobnicate q[0];")
	m.parseQASMInput()
	if m.circuit.Depth() != 2 {
		t.Errorf("broken edit replaced the circuit")
	}
	if !strings.Contains(m.statusMsg, "line 2") {
		t.Errorf("statusMsg = %q, want line-numbered parse error", m.statusMsg)
	}
}

func TestExecuteFreezesComposerCircuit(t *testing.T) {
	m := testModel(t, 2)

	m.pending = menuItem{gateType: "H"}
	m.cursorQubit = 0
	m.placeGate()

	m.execute()
	if m.result == nil {
		t.Fatalf("no result after execute: %q", m.statusMsg)
	}
	if !m.circuit.Frozen() {
		t.Error("circuit not frozen after execute")
	}

	m.pending = menuItem{gateType: "X"}
	m.placeGate()
	if m.statusMsg == "" {
		t.Error("expected frozen-circuit status message")
	}
	if m.circuit.Depth() != 1 {
		t.Errorf("frozen circuit grew to depth %d", m.circuit.Depth())
	}
}
