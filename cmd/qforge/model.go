package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"qforge/circuit"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusQASM
	focusMenu
	focusSelectTarget
	focusSelectControl
	focusInputParam
	focusInputRegister
)

// Model represents the TUI application state. The circuit queue is the
// single source of truth; the grid view and the QASM editor are both
// derived from it.
type Model struct {
	circuit *circuit.Circuit
	log     zerolog.Logger

	cursorQubit int
	viewStart   int // first queue column currently visible
	width       int
	height      int
	qasmEditor  textarea.Model
	focus       focus
	lastQASM    string
	statusMsg   string

	// Menu state
	menuCat  int
	menuItem int

	// Pending-placement state
	pending       menuItem
	params        []float64
	paramInput    string
	registerInput string
	targetQubit   int
	controlQubit  int
	haveControl   bool

	// Execution state
	result *circuit.Result
}

func initialModel(c *circuit.Circuit, log zerolog.Logger) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.KeyMap.InsertNewline.SetEnabled(true)

	m := Model{
		circuit: c,
		log:     log,
		focus:   focusCircuit,
	}
	m.qasmEditor = ta
	m.syncQASM()
	return m
}

// syncQASM refreshes the editor pane from the circuit.
func (m *Model) syncQASM() {
	qasm := m.circuit.ToQASM()
	m.qasmEditor.SetValue(qasm)
	m.lastQASM = qasm
}

// parseQASMInput rebuilds the circuit from edited QASM text. A parse
// failure keeps the current circuit and surfaces the error in the status
// line, so a half-typed edit never destroys the composed queue.
func (m *Model) parseQASMInput() {
	qasm := m.qasmEditor.Value()
	if qasm == m.lastQASM {
		return
	}
	parsed, err := circuit.Parse(qasm)
	if err != nil {
		m.statusMsg = fmt.Sprintf("QASM: %v", err)
		return
	}
	m.circuit = parsed
	m.lastQASM = qasm
	m.result = nil
	m.cursorQubit = min(m.cursorQubit, parsed.Size()-1)
	m.log.Debug().Int("depth", parsed.Depth()).Msg("circuit rebuilt from QASM")
}

// clearPending resets all in-flight placement state.
func (m *Model) clearPending() {
	m.pending = menuItem{}
	m.params = nil
	m.paramInput = ""
	m.registerInput = ""
	m.haveControl = false
}

// buildPending constructs the gate described by the pending menu item and
// the collected target/control/parameter state.
func (m *Model) buildPending() (*circuit.Gate, error) {
	q := m.cursorQubit
	p := m.params
	need := func(n int) error {
		if len(p) != n {
			return fmt.Errorf("%s needs %d parameter(s), got %d", m.pending.gateType, n, len(p))
		}
		return nil
	}

	switch m.pending.gateType {
	case "H":
		return circuit.H(q), nil
	case "X":
		return circuit.X(q), nil
	case "Y":
		return circuit.Y(q), nil
	case "Z":
		return circuit.Z(q), nil
	case "I":
		return circuit.I(q), nil
	case "S":
		return circuit.S(q), nil
	case "T":
		return circuit.T(q), nil
	case "RX":
		if err := need(1); err != nil {
			return nil, err
		}
		return circuit.RX(q, p[0]), nil
	case "RY":
		if err := need(1); err != nil {
			return nil, err
		}
		return circuit.RY(q, p[0]), nil
	case "RZ":
		if err := need(1); err != nil {
			return nil, err
		}
		return circuit.RZ(q, p[0]), nil
	case "U1":
		if err := need(1); err != nil {
			return nil, err
		}
		return circuit.U1(q, p[0]), nil
	case "U2":
		if err := need(2); err != nil {
			return nil, err
		}
		return circuit.U2(q, p[0], p[1]), nil
	case "U3":
		if err := need(3); err != nil {
			return nil, err
		}
		return circuit.U3(q, p[0], p[1], p[2]), nil
	case "CX":
		return circuit.CNOT(q, m.targetQubit), nil
	case "CZ":
		return circuit.CZ(q, m.targetQubit), nil
	case "SWAP":
		return circuit.SWAP(q, m.targetQubit), nil
	case "CCX":
		return circuit.TOFFOLI(q, m.controlQubit, m.targetQubit), nil
	case "CRX":
		if err := need(1); err != nil {
			return nil, err
		}
		return circuit.CRX(q, m.targetQubit, p[0]), nil
	case "CRY":
		if err := need(1); err != nil {
			return nil, err
		}
		return circuit.CRY(q, m.targetQubit, p[0]), nil
	case "CRZ":
		if err := need(1); err != nil {
			return nil, err
		}
		return circuit.CRZ(q, m.targetQubit, p[0]), nil
	case "CU1":
		if err := need(1); err != nil {
			return nil, err
		}
		return circuit.CU1(q, m.targetQubit, p[0]), nil
	case "M", "MX", "MY":
		var g *circuit.Gate
		switch m.pending.gateType {
		case "MX":
			g = circuit.MX(q)
		case "MY":
			g = circuit.MY(q)
		default:
			g = circuit.M(q)
		}
		if m.registerInput != "" {
			g.Named(m.registerInput)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown gate %s", m.pending.gateType)
	}
}

// placeGate appends the pending gate to the circuit queue and surfaces
// any construction error in the status line.
func (m *Model) placeGate() {
	g, err := m.buildPending()
	if err == nil {
		err = m.circuit.Add(g)
	}
	if err != nil {
		m.statusMsg = err.Error()
		m.log.Warn().Err(err).Str("gate", m.pending.gateType).Msg("placement rejected")
	} else {
		m.log.Debug().Str("gate", g.Name()).Ints("qubits", g.Qubits()).Msg("gate placed")
		m.result = nil
		m.syncQASM()
		// Follow the newest column; the renderer clamps to what fits.
		m.viewStart = m.circuit.Depth()
	}
	m.clearPending()
	m.focus = focusCircuit
}

// startPlacement moves the pending item through its input stages:
// parameters, then control, then target, then register, then placement.
func (m *Model) startPlacement(item menuItem) {
	m.pending = item

	if item.needsParams && m.params == nil {
		m.paramInput = ""
		m.focus = focusInputParam
		return
	}
	if item.needsControl && !m.haveControl {
		if m.circuit.Size() < 3 {
			m.statusMsg = "Toffoli needs at least 3 qubits"
			m.clearPending()
			m.focus = focusCircuit
			return
		}
		m.focus = focusSelectControl
		m.controlQubit = m.nextFreeQubit(m.cursorQubit)
		return
	}
	if item.needsTarget {
		if m.circuit.Size() < 2 {
			m.statusMsg = "Not enough qubits for a two-qubit gate"
			m.clearPending()
			m.focus = focusCircuit
			return
		}
		m.focus = focusSelectTarget
		m.targetQubit = m.nextFreeQubit(m.cursorQubit, m.controlQubit)
		return
	}
	if item.needsRegister {
		m.registerInput = ""
		m.focus = focusInputRegister
		return
	}
	m.placeGate()
}

// nextFreeQubit picks the first qubit not already occupied by the
// placement in progress.
func (m *Model) nextFreeQubit(taken ...int) int {
	for q := 0; q < m.circuit.Size(); q++ {
		used := false
		for _, t := range taken {
			if q == t {
				used = true
				break
			}
		}
		if !used {
			return q
		}
	}
	return 0
}

// moveSelection steps the target/control selection up or down, skipping
// qubits already taken by the placement.
func (m *Model) moveSelection(sel int, delta int, taken ...int) int {
	for next := sel + delta; next >= 0 && next < m.circuit.Size(); next += delta {
		used := false
		for _, t := range taken {
			if next == t {
				used = true
				break
			}
		}
		if !used {
			return next
		}
	}
	return sel
}

// reset replaces the circuit with a fresh one of the given size.
func (m *Model) reset(nqubits int) {
	c, err := circuit.New(nqubits)
	if err != nil {
		m.statusMsg = err.Error()
		return
	}
	m.circuit = c
	m.result = nil
	m.viewStart = 0
	m.cursorQubit = min(m.cursorQubit, nqubits-1)
	m.syncQASM()
	m.log.Info().Int("qubits", nqubits).Msg("circuit reset")
}

// execute hands the circuit to the trace backend. On success the circuit
// freezes and the result summary appears in the status line.
func (m *Model) execute() {
	res, err := m.circuit.Execute(circuit.TraceBackend{})
	if err != nil {
		m.statusMsg = fmt.Sprintf("Execute: %v", err)
		m.log.Warn().Err(err).Msg("execution failed")
		return
	}
	m.result = res
	m.statusMsg = fmt.Sprintf("Executed on %s backend: %d instructions. Circuit is now frozen.",
		res.Backend, res.Instructions)
	m.log.Info().Str("backend", res.Backend).Int("instructions", res.Instructions).Msg("circuit executed")
}

// save writes the lowered QASM program to circuit.qasm.
func (m *Model) save() {
	qasm := m.circuit.ToQASM()
	if err := os.WriteFile("circuit.qasm", []byte(qasm), 0o644); err != nil {
		m.statusMsg = fmt.Sprintf("Save error: %v", err)
	} else {
		m.statusMsg = "Saved circuit.qasm"
	}
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		qasmW := max(msg.Width/3-6, 20)
		m.qasmEditor.SetWidth(qasmW)
		ctrlH := 6
		circH := msg.Height - ctrlH - 4
		editorH := max(circH-8, 4)
		m.qasmEditor.SetHeight(editorH)

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusQASM
				m.qasmEditor.Focus()
			case "ctrl+r":
				m.reset(m.circuit.Size())
			case "ctrl+s":
				m.save()
			case "ctrl+e":
				m.execute()
			case "up", "k":
				if m.cursorQubit > 0 {
					m.cursorQubit--
				}
			case "down", "j":
				if m.cursorQubit < m.circuit.Size()-1 {
					m.cursorQubit++
				}
			case "left", "h":
				if m.viewStart > 0 {
					m.viewStart--
				}
			case "right", "l":
				if m.viewStart < m.circuit.Depth() {
					m.viewStart++
				}
			case "+", "=":
				// The queue binds gates to the qubit count, so resizing
				// is only possible before any gate is placed.
				if m.circuit.Depth() == 0 && m.circuit.Measurement() == nil {
					m.reset(m.circuit.Size() + 1)
				} else {
					m.statusMsg = "Resize only an empty circuit (^R to reset)"
				}
			case "-":
				if m.circuit.Size() > 1 && m.circuit.Depth() == 0 && m.circuit.Measurement() == nil {
					m.reset(m.circuit.Size() - 1)
				} else if m.circuit.Size() > 1 {
					m.statusMsg = "Resize only an empty circuit (^R to reset)"
				}
			case "a":
				m.focus = focusMenu
				m.menuCat = 0
				m.menuItem = 0
			}

		case focusMenu:
			switch key {
			case "esc":
				m.focus = focusCircuit
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				cat := gateMenu[m.menuCat]
				if m.menuItem < len(cat.items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(gateMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				m.startPlacement(gateMenu[m.menuCat].items[m.menuItem])
			}

		case focusSelectControl:
			switch key {
			case "esc":
				m.clearPending()
				m.focus = focusCircuit
			case "up", "k":
				m.controlQubit = m.moveSelection(m.controlQubit, -1, m.cursorQubit)
			case "down", "j":
				m.controlQubit = m.moveSelection(m.controlQubit, +1, m.cursorQubit)
			case "enter":
				m.haveControl = true
				m.startPlacement(m.pending)
			}

		case focusSelectTarget:
			taken := []int{m.cursorQubit}
			if m.haveControl {
				taken = append(taken, m.controlQubit)
			}
			switch key {
			case "esc":
				m.clearPending()
				m.focus = focusCircuit
			case "up", "k":
				m.targetQubit = m.moveSelection(m.targetQubit, -1, taken...)
			case "down", "j":
				m.targetQubit = m.moveSelection(m.targetQubit, +1, taken...)
			case "enter":
				m.placeGate()
			}

		case focusInputParam:
			switch key {
			case "esc":
				m.clearPending()
				m.focus = focusCircuit
			case "backspace":
				if len(m.paramInput) > 0 {
					m.paramInput = m.paramInput[:len(m.paramInput)-1]
				}
			case "enter":
				params := circuit.ParseParams(m.paramInput)
				if params == nil {
					m.statusMsg = "Invalid parameter — use numbers or pi expressions (e.g. pi/2, 3*pi/4)"
					break
				}
				m.params = params
				m.startPlacement(m.pending)
			default:
				if len(key) == 1 {
					ch := key[0]
					if (ch >= '0' && ch <= '9') || ch == '.' || ch == ',' || ch == '-' || ch == 'e' || ch == 'E' || ch == '+' ||
						ch == 'p' || ch == 'i' || ch == '*' || ch == '/' {
						m.paramInput += key
					}
				}
			}

		case focusInputRegister:
			switch key {
			case "esc":
				m.clearPending()
				m.focus = focusCircuit
			case "backspace":
				if len(m.registerInput) > 0 {
					m.registerInput = m.registerInput[:len(m.registerInput)-1]
				}
			case "enter":
				m.placeGate()
			default:
				if len(key) == 1 {
					ch := key[0]
					if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_' {
						m.registerInput += key
					}
				}
			}

		case focusQASM:
			switch key {
			case "tab":
				m.focus = focusCircuit
				m.qasmEditor.Blur()
			default:
				var cmd tea.Cmd
				m.qasmEditor, cmd = m.qasmEditor.Update(msg)
				cmds = append(cmds, cmd)
				m.parseQASMInput()
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	qasmWidth := m.width / 3
	circuitWidth := m.width - qasmWidth - 4
	controlsHeight := 6
	circuitHeight := max(m.height-controlsHeight-2, 6)

	circuitPanel := m.renderCircuitPanel(circuitWidth, circuitHeight)
	qasmPanel := m.renderQASMPanel(qasmWidth, circuitHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, qasmPanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	if m.focus == focusMenu {
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	}
	if m.focus == focusInputParam {
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	}
	if m.focus == focusInputRegister {
		frame = overlayAt(frame, m.renderRegisterInput(), 2, 2)
	}

	return frame
}

// renderParamInput renders the parameter input overlay.
func (m Model) renderParamInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Enter Parameter"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Value: %s_", m.paramInput))
	sb.WriteString("\n\n")
	hint := m.pending.paramHint
	if hint == "" {
		hint = "pi/2, 3*pi/4, 1.57"
	}
	sb.WriteString(dimStyle.Render(fmt.Sprintf("Examples: %s", hint)))
	return menuBorderStyle.Render(sb.String())
}

// renderRegisterInput renders the measurement register name overlay.
func (m Model) renderRegisterInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Register Name"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Name: %s_", m.registerInput))
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Empty for a default name. Names must be unique."))
	return menuBorderStyle.Render(sb.String())
}
