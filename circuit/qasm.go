package circuit

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const qasmHeader = "// Generated by qforge"

// Pre-compiled regexps for QASM parsing.
var (
	qasmQregRegex        = regexp.MustCompile(`^qreg\s+(\w+)\[(\d+)\];?$`)
	qasmCregRegex        = regexp.MustCompile(`^creg\s+(\w+)\[(\d+)\];?$`)
	qasmMeasureRegex     = regexp.MustCompile(`^measure\s+q\[(\d+)\]\s*->\s*(\w+)\[(\d+)\];?$`)
	qasmSingleRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\];?$`)
	qasmSingleParamRegex = regexp.MustCompile(`^(\w+)\s*\(\s*(` + paramPattern + `(?:\s*,\s*` + paramPattern + `)*)\s*\)\s+q\[(\d+)\];?$`)
	qasmTwoRegex         = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	qasmTwoParamRegex    = regexp.MustCompile(`^(\w+)\s*\(\s*(` + paramPattern + `(?:\s*,\s*` + paramPattern + `)*)\s*\)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	qasmThreeRegex       = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\],\s*q\[(\d+)\];?$`)
)

// ToQASM serializes the circuit to OpenQASM 2.0 text: a header comment, the
// version pragma, the standard include, the qubit register declaration and
// one instruction per gate in queue order, with the merged measurement gate
// lowered last. When any measure instruction is emitted, a one-bit
// classical register declaration is inserted directly after the qreg line.
// All measure instructions target c[0].
func (c *Circuit) ToQASM() string {
	code := []string{
		qasmHeader,
		"OPENQASM 2.0;",
		`include "qelib1.inc";`,
		fmt.Sprintf("qreg q[%d];", c.nqubits),
	}
	measured := false

	emit := func(g *Gate) {
		op, ids := g.QASM()
		switch op {
		case "MX":
			code = append(code, fmt.Sprintf("h q[%d];", ids[0]))
			code = append(code, fmt.Sprintf("measure q[%d] -> c[0];", ids[0]))
			measured = true
		case "MY":
			if len(ids) > 1 {
				code = append(code, fmt.Sprintf("swap q[%d], q[%d];", ids[0], ids[1]))
			}
			code = append(code, fmt.Sprintf("h q[%d];", ids[0]))
			code = append(code, fmt.Sprintf("measure q[%d] -> c[0];", ids[0]))
			measured = true
		case "measure":
			code = append(code, fmt.Sprintf("measure q[%d] -> c[0];", ids[0]))
			measured = true
		default:
			operands := make([]string, len(ids))
			for i, q := range ids {
				operands[i] = fmt.Sprintf("q[%d]", q)
			}
			code = append(code, fmt.Sprintf("%s %s;", op, strings.Join(operands, ", ")))
		}
	}

	for _, g := range c.queue {
		emit(g)
	}
	if c.measure != nil {
		emit(c.measure)
	}

	if measured {
		code = slices.Insert(code, 4, "creg c[1];")
	}
	return strings.Join(code, "\n")
}

// Parse rebuilds a circuit from the OpenQASM 2.0 subset this package
// emits: a qreg declaration, optional creg declarations, the supported
// gate instructions and measure lines. Measurements are collected per
// classical register name and installed as measurement gates once the
// whole text has been read, since measurement is terminal in this model.
// Unrecognized statements produce a line-numbered error.
func Parse(src string) (*Circuit, error) {
	var c *Circuit

	type pending struct {
		name   string
		qubits []int
	}
	var measures []pending
	record := func(name string, qubit int) {
		for i := range measures {
			if measures[i].name == name {
				measures[i].qubits = append(measures[i].qubits, qubit)
				return
			}
		}
		measures = append(measures, pending{name: name, qubits: []int{qubit}})
	}

	for i, raw := range strings.Split(src, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") {
			continue
		}
		if matches := qasmQregRegex.FindStringSubmatch(line); matches != nil {
			n, _ := strconv.Atoi(matches[2])
			var err error
			c, err = New(n)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			continue
		}
		if qasmCregRegex.MatchString(line) {
			// Register names are recovered from the measure lines.
			continue
		}
		if c == nil {
			return nil, fmt.Errorf("line %d: statement before qreg declaration", i+1)
		}
		if matches := qasmMeasureRegex.FindStringSubmatch(line); matches != nil {
			qubit, _ := strconv.Atoi(matches[1])
			record(matches[2], qubit)
			continue
		}

		g, err := parseInstruction(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if err := c.Add(g); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	if c == nil {
		return nil, fmt.Errorf("missing qreg declaration")
	}
	for _, p := range measures {
		if err := c.Add(M(p.qubits...).Named(p.name)); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// parseInstruction matches one gate statement against the supported forms.
func parseInstruction(line string) (*Gate, error) {
	if matches := qasmTwoParamRegex.FindStringSubmatch(line); matches != nil {
		params := ParseParams(matches[2])
		if params == nil {
			return nil, fmt.Errorf("invalid parameters %q", matches[2])
		}
		q0, _ := strconv.Atoi(matches[3])
		q1, _ := strconv.Atoi(matches[4])
		return buildGate(matches[1], params, q0, q1)
	}
	if matches := qasmThreeRegex.FindStringSubmatch(line); matches != nil {
		q0, _ := strconv.Atoi(matches[2])
		q1, _ := strconv.Atoi(matches[3])
		q2, _ := strconv.Atoi(matches[4])
		return buildGate(matches[1], nil, q0, q1, q2)
	}
	if matches := qasmTwoRegex.FindStringSubmatch(line); matches != nil {
		q0, _ := strconv.Atoi(matches[2])
		q1, _ := strconv.Atoi(matches[3])
		return buildGate(matches[1], nil, q0, q1)
	}
	if matches := qasmSingleParamRegex.FindStringSubmatch(line); matches != nil {
		params := ParseParams(matches[2])
		if params == nil {
			return nil, fmt.Errorf("invalid parameters %q", matches[2])
		}
		q, _ := strconv.Atoi(matches[3])
		return buildGate(matches[1], params, q)
	}
	if matches := qasmSingleRegex.FindStringSubmatch(line); matches != nil {
		q, _ := strconv.Atoi(matches[2])
		return buildGate(matches[1], nil, q)
	}
	return nil, fmt.Errorf("unrecognized statement %q", line)
}

// buildGate maps a lowered opcode back to its constructor.
func buildGate(name string, params []float64, qubits ...int) (*Gate, error) {
	bad := func() (*Gate, error) {
		return nil, fmt.Errorf("gate %s does not take %d qubits and %d parameters",
			name, len(qubits), len(params))
	}
	one := func(build func(int) *Gate) (*Gate, error) {
		if len(qubits) != 1 || len(params) != 0 {
			return bad()
		}
		return build(qubits[0]), nil
	}
	rot := func(build func(int, float64) *Gate) (*Gate, error) {
		if len(qubits) != 1 || len(params) != 1 {
			return bad()
		}
		return build(qubits[0], params[0]), nil
	}
	two := func(build func(int, int) *Gate) (*Gate, error) {
		if len(qubits) != 2 || len(params) != 0 {
			return bad()
		}
		return build(qubits[0], qubits[1]), nil
	}
	ctrlRot := func(build func(int, int, float64) *Gate) (*Gate, error) {
		if len(qubits) != 2 || len(params) != 1 {
			return bad()
		}
		return build(qubits[0], qubits[1], params[0]), nil
	}

	switch strings.ToLower(name) {
	case "h":
		return one(H)
	case "x":
		return one(X)
	case "y":
		return one(Y)
	case "z":
		return one(Z)
	case "id", "i":
		return one(I)
	case "s":
		return one(S)
	case "t":
		return one(T)
	case "rx":
		return rot(RX)
	case "ry":
		return rot(RY)
	case "rz":
		return rot(RZ)
	case "u1":
		return rot(U1)
	case "u2":
		if len(qubits) != 1 || len(params) != 2 {
			return bad()
		}
		return U2(qubits[0], params[0], params[1]), nil
	case "u3":
		if len(qubits) != 1 || len(params) != 3 {
			return bad()
		}
		return U3(qubits[0], params[0], params[1], params[2]), nil
	case "cx":
		return two(CNOT)
	case "cz":
		return two(CZ)
	case "swap":
		return two(SWAP)
	case "crx":
		return ctrlRot(CRX)
	case "cry":
		return ctrlRot(CRY)
	case "crz":
		return ctrlRot(CRZ)
	case "cu1":
		return ctrlRot(CU1)
	case "cu3":
		if len(qubits) != 2 || len(params) != 3 {
			return bad()
		}
		return CU3(qubits[0], qubits[1], params[0], params[1], params[2]), nil
	case "ccx":
		if len(qubits) != 3 || len(params) != 0 {
			return bad()
		}
		return TOFFOLI(qubits[0], qubits[1], qubits[2]), nil
	default:
		return nil, fmt.Errorf("unsupported gate %q", name)
	}
}
