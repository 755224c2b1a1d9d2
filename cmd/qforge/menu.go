package main

import (
	"fmt"
	"strings"
)

// menuItem represents a single gate choice in the picker.
type menuItem struct {
	name          string
	gateType      string
	symbol        string
	needsTarget   bool
	needsControl  bool // second control qubit (Toffoli)
	needsParams   bool
	needsRegister bool
	paramHint     string
}

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// gateMenu defines the gate picker categories and items.
var gateMenu = []menuCategory{
	{
		name: "Single Qubit",
		items: []menuItem{
			{name: "Hadamard", gateType: "H", symbol: "H"},
			{name: "Pauli-X (NOT)", gateType: "X", symbol: "X"},
			{name: "Pauli-Y", gateType: "Y", symbol: "Y"},
			{name: "Pauli-Z", gateType: "Z", symbol: "Z"},
			{name: "Identity", gateType: "I", symbol: "I"},
			{name: "Phase (S)", gateType: "S", symbol: "S"},
			{name: "T Gate", gateType: "T", symbol: "T"},
		},
	},
	{
		name: "Rotation",
		items: []menuItem{
			{name: "Rotate X", gateType: "RX", symbol: "RX", needsParams: true, paramHint: "pi/2"},
			{name: "Rotate Y", gateType: "RY", symbol: "RY", needsParams: true, paramHint: "pi/2"},
			{name: "Rotate Z", gateType: "RZ", symbol: "RZ", needsParams: true, paramHint: "pi/2"},
			{name: "Universal U1", gateType: "U1", symbol: "U1", needsParams: true, paramHint: "lambda"},
			{name: "Universal U2", gateType: "U2", symbol: "U2", needsParams: true, paramHint: "phi,lambda"},
			{name: "Universal U3", gateType: "U3", symbol: "U3", needsParams: true, paramHint: "theta,phi,lambda"},
		},
	},
	{
		name: "Multi Qubit",
		items: []menuItem{
			{name: "CNOT", gateType: "CX", symbol: "●─⊕", needsTarget: true},
			{name: "Controlled-Z", gateType: "CZ", symbol: "●─●", needsTarget: true},
			{name: "SWAP", gateType: "SWAP", symbol: "×─×", needsTarget: true},
			{name: "Toffoli (CCX)", gateType: "CCX", symbol: "●─●─⊕", needsTarget: true, needsControl: true},
			{name: "C-Rotate X", gateType: "CRX", symbol: "●─RX", needsTarget: true, needsParams: true, paramHint: "pi/2"},
			{name: "C-Rotate Y", gateType: "CRY", symbol: "●─RY", needsTarget: true, needsParams: true, paramHint: "pi/2"},
			{name: "C-Rotate Z", gateType: "CRZ", symbol: "●─RZ", needsTarget: true, needsParams: true, paramHint: "pi/2"},
			{name: "C-Phase (CU1)", gateType: "CU1", symbol: "●─U1", needsTarget: true, needsParams: true, paramHint: "lambda"},
		},
	},
	{
		name: "Measurement",
		items: []menuItem{
			{name: "Measure (Z)", gateType: "M", symbol: "M", needsRegister: true},
			{name: "Measure X basis", gateType: "MX", symbol: "Mx", needsRegister: true},
			{name: "Measure Y basis", gateType: "MY", symbol: "My", needsRegister: true},
		},
	},
}

// renderMenu renders the floating gate-picker popup.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Add Gate"))
	sb.WriteString("\n")

	// Category tabs
	for i, cat := range gateMenu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeGateStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(gateMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 42)))
	sb.WriteString("\n")

	// Items in the selected category
	cat := gateMenu[m.menuCat]
	for i, item := range cat.items {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(gateStyle.Render(item.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		if item.needsTarget {
			sb.WriteString(dimStyle.Render(" →target"))
		}
		if item.needsParams {
			sb.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", item.paramHint)))
		}
		if item.needsRegister {
			sb.WriteString(dimStyle.Render(" →register"))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}
