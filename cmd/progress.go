package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
)

// spinnerProgress ticks a spinner once per batch of items moved.
type spinnerProgress struct {
	spinner *pterm.SpinnerPrinter
	batches int
}

func newSpinnerProgress(spinner *pterm.SpinnerPrinter) *spinnerProgress {
	return &spinnerProgress{
		spinner: spinner,
	}
}

func (p *spinnerProgress) Increment() {
	p.batches++
	if p.spinner == nil {
		return
	}
	p.spinner.UpdateText(fmt.Sprintf("merging folders (%d batches moved)", p.batches))
}
