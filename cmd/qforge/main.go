package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"qforge/circuit"
)

func main() {
	nqubits := flag.Int("n", 3, "number of qubits")
	flag.Parse()

	log := zerolog.Nop()
	if os.Getenv("QFORGE_DEBUG") != "" {
		f, err := os.OpenFile("qforge.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "qforge: open debug log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log = zerolog.New(f).With().Timestamp().Logger()
	}

	c, err := circuit.New(*nqubits)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qforge: %v\n", err)
		os.Exit(1)
	}
	log.Info().Int("qubits", *nqubits).Msg("composer starting")

	p := tea.NewProgram(initialModel(c, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("composer exited")
		fmt.Fprintf(os.Stderr, "qforge: %v\n", err)
		os.Exit(1)
	}
}
