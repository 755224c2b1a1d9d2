package main

import (
	"fmt"
	"strings"

	"qforge/circuit"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

func containsQubit(qubits []int, q int) bool {
	for _, x := range qubits {
		if x == q {
			return true
		}
	}
	return false
}

// span returns the lowest and highest qubit a gate touches.
func span(qubits []int) (lo, hi int) {
	lo, hi = qubits[0], qubits[0]
	for _, q := range qubits[1:] {
		if q < lo {
			lo = q
		}
		if q > hi {
			hi = q
		}
	}
	return
}

// measureLabel returns the box label for a measurement gate.
func measureLabel(b circuit.Basis) string {
	switch b {
	case circuit.BasisX:
		return "Mx"
	case circuit.BasisY:
		return "My"
	default:
		return "M"
	}
}

// wireSymbol returns the on-wire symbol for one qubit of a multi-qubit
// gate.
func wireSymbol(g *circuit.Gate, qubit int) string {
	if g.Name() == "swap" {
		return "×"
	}
	if containsQubit(g.Controls(), qubit) {
		return "●"
	}
	if g.Name() == "cz" {
		return "●"
	}
	return "⊕"
}

// ──────────────────────────── Cell rendering ────────────────────────────

// boxLines renders a 3-line gate box with wire stubs on the middle line.
func boxLines(label string) (top, mid, bot string) {
	margin := (cellW - gateBoxW) / 2
	rightMargin := cellW - margin - gateBoxW
	name := padCenter(label, gateNameW)
	top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
	mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
	bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
	return
}

// columnCell renders the 3-line cell for one gate column on one qubit
// wire. Each line is exactly cellW visual characters wide.
func columnCell(g *circuit.Gate, qubit int, isMeasure bool) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	wireRow := strings.Repeat("─", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	if isMeasure {
		if containsQubit(g.Targets(), qubit) {
			return boxLines(measureLabel(g.Basis()))
		}
		return emptyRow, wireRow, emptyRow
	}

	qubits := g.Qubits()
	if !containsQubit(qubits, qubit) {
		lo, hi := span(qubits)
		if qubit > lo && qubit < hi {
			// An uninvolved wire inside a multi-qubit gate's span.
			return vertRow, strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR), vertRow
		}
		return emptyRow, wireRow, emptyRow
	}

	// Boxed single-qubit gate.
	if len(qubits) == 1 {
		return boxLines(strings.ToUpper(g.Name()))
	}

	// Multi-qubit gate: symbol on the wire with vertical connectors.
	lo, hi := span(qubits)
	top = emptyRow
	if qubit > lo {
		top = vertRow
	}
	bot = emptyRow
	if qubit < hi {
		bot = vertRow
	}
	mid = strings.Repeat("─", dashL) + gateStyle.Render(wireSymbol(g, qubit)) + strings.Repeat("─", dashR)
	return
}

// cursorCell renders the append-position cell, boxed when highlighted.
func cursorCell(highlight cellHighlight) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	wireRow := strings.Repeat("─", cellW)
	if highlight == hlNone {
		return emptyRow, wireRow, emptyRow
	}
	bdr := cursorBoxStyle
	if highlight == hlTargetSelect {
		bdr = targetSelectStyle
	}
	innerW := cellW - 2
	top = bdr.Render("╔" + strings.Repeat("═", innerW) + "╗")
	mid = bdr.Render("║") + strings.Repeat("─", innerW) + bdr.Render("║")
	bot = bdr.Render("╚" + strings.Repeat("═", innerW) + "╝")
	return
}

type cellHighlight int

const (
	hlNone cellHighlight = iota
	hlCursor
	hlTargetSelect
)

// ──────────────────────────── Panel rendering ────────────────────────────

// renderCircuitPanel renders the circuit grid: one column per queued gate
// in execution order, the merged measurement column, then the append
// position under the cursor.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	title := "Quantum Circuit"
	if m.circuit.Frozen() {
		title += " [FROZEN]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")

	type column struct {
		gate    *circuit.Gate
		measure bool
		slot    bool // the empty append position
	}
	var cols []column
	for _, g := range m.circuit.Gates() {
		cols = append(cols, column{gate: g})
	}
	measureCol := -1
	if mg := m.circuit.Measurement(); mg != nil {
		measureCol = len(cols)
		cols = append(cols, column{gate: mg, measure: true})
	}
	if !m.circuit.Frozen() {
		cols = append(cols, column{slot: true})
	}

	availWidth := width - labelVisualW - 4
	maxCols := max(availWidth/cellW, 1)
	maxStart := max(len(cols)-maxCols, 0)
	start := min(m.viewStart, maxStart)
	shown := min(len(cols)-start, maxCols)

	if start > 0 {
		fmt.Fprintf(&sb, "  ◀ showing columns %d–%d\n", start, start+shown-1)
	}

	// Column index header
	header := strings.Repeat(" ", labelVisualW)
	for i := start; i < start+shown; i++ {
		label := fmt.Sprintf("%d", i)
		if cols[i].measure {
			label = "M"
		} else if cols[i].slot {
			label = "+"
		}
		header += dimStyle.Render(padCenter(label, cellW))
	}
	sb.WriteString(header + "\n")

	selecting := m.focus == focusSelectTarget || m.focus == focusSelectControl

	for qubit := 0; qubit < m.circuit.Size(); qubit++ {
		topLine := strings.Repeat(" ", labelVisualW)
		label := fmt.Sprintf("q[%d]", qubit)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for i := start; i < start+shown; i++ {
			var top, mid, bot string
			switch {
			case cols[i].slot:
				hl := hlNone
				if qubit == m.cursorQubit {
					hl = hlCursor
				} else if selecting {
					if m.focus == focusSelectTarget && qubit == m.targetQubit {
						hl = hlTargetSelect
					}
					if m.focus == focusSelectControl && qubit == m.controlQubit {
						hl = hlTargetSelect
					}
					if m.haveControl && m.focus == focusSelectTarget && qubit == m.controlQubit {
						hl = hlCursor
					}
				}
				top, mid, bot = cursorCell(hl)
			default:
				top, mid, bot = columnCell(cols[i].gate, qubit, cols[i].measure)
			}
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	// ── Classical wire (single line, fed by the measurement column) ──
	registers := m.circuit.RegisterNames()
	if len(registers) > 0 {
		sepLine := strings.Repeat(" ", labelVisualW)
		cbitLine := cbitLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("c%d", len(registers)))) + cbitWireStyle.Render("══")
		halfW := cellW / 2
		for i := start; i < start+shown; i++ {
			if i == measureCol {
				sepLine += strings.Repeat(" ", halfW) + cbitConnectorStyle.Render("║") + strings.Repeat(" ", cellW-halfW-1)
				dashL := (cellW - 1) / 2
				dashR := cellW - dashL - 1
				cbitLine += cbitWireStyle.Render(strings.Repeat("═", dashL)) +
					cbitConnectorStyle.Render("╩") +
					cbitWireStyle.Render(strings.Repeat("═", dashR))
			} else {
				sepLine += strings.Repeat(" ", cellW)
				cbitLine += cbitWireStyle.Render(strings.Repeat("═", cellW))
			}
		}
		sb.WriteString(sepLine + "\n")
		sb.WriteString(cbitLine + "\n")
	}

	// Status line
	switch {
	case m.focus == focusSelectControl:
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "  %s", activeGateStyle.Render(m.pending.gateType))
		sb.WriteString("  Select second control: ")
		fmt.Fprintf(&sb, "%s", targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.controlQubit)))
		sb.WriteString(dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel"))
	case m.focus == focusSelectTarget:
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "  %s", activeGateStyle.Render(m.pending.gateType))
		sb.WriteString("  Select target qubit: ")
		fmt.Fprintf(&sb, "%s", targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQubit)))
		sb.WriteString(dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel"))
	default:
		fmt.Fprintf(&sb, "\n  Qubit %d, %d gates", m.cursorQubit, m.circuit.Depth())
		if m.statusMsg != "" {
			fmt.Fprintf(&sb, "  │  %s", activeGateStyle.Render(m.statusMsg))
		}
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderQASMPanel renders the QASM editor panel.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	title := "QASM Editor"
	if m.focus == focusQASM {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.qasmEditor.View())

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Move qubit  ←→/hl Scroll  +/- Qubits")
	sb.WriteString("    ")
	sb.WriteString(activeGateStyle.Render("a"))
	sb.WriteString(" Add gate\n")

	sb.WriteString(activeGateStyle.Render("Actions:  "))
	sb.WriteString("Tab Switch focus  ^E Execute  ^R Reset  ^S Save  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at
// position (x, y). It handles ANSI escape sequences by tracking visible
// column positions.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces visible columns starting at position x in bgLine
// with overlay content, skipping over ANSI escape sequences.
func spliceLineAt(bgLine, overlay string, x int) string {
	runes := []rune(bgLine)
	ovWidth := visibleLen(overlay)

	var prefix strings.Builder
	var suffix strings.Builder

	col := 0
	i := 0
	inEsc := false

	// Collect prefix: everything up to visible column x
	for i < len(runes) && col < x {
		if runes[i] == '\x1b' {
			inEsc = true
			for i < len(runes) {
				prefix.WriteRune(runes[i])
				if inEsc && runes[i] != '\x1b' && runes[i] != '[' && ((runes[i] >= 'A' && runes[i] <= 'Z') || (runes[i] >= 'a' && runes[i] <= 'z')) {
					inEsc = false
					i++
					break
				}
				i++
			}
		} else {
			prefix.WriteRune(runes[i])
			col++
			i++
		}
	}

	// Pad prefix if bg line is shorter than x
	for col < x {
		prefix.WriteRune(' ')
		col++
	}

	// Skip over ovWidth visible columns in the background
	skipped := 0
	for i < len(runes) && skipped < ovWidth {
		if runes[i] == '\x1b' {
			for i < len(runes) {
				i++
				if i > 0 && runes[i-1] != '\x1b' && runes[i-1] != '[' && ((runes[i-1] >= 'A' && runes[i-1] <= 'Z') || (runes[i-1] >= 'a' && runes[i-1] <= 'z')) {
					break
				}
			}
		} else {
			skipped++
			i++
		}
	}

	// Collect suffix: rest of the background line
	for i < len(runes) {
		suffix.WriteRune(runes[i])
		i++
	}

	return prefix.String() + overlay + suffix.String()
}

// visibleLen returns the number of visible (non-ANSI-escape) characters
// in a string.
func visibleLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}
