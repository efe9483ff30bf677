package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/quillworks/quillai/internal/domain"
	"github.com/quillworks/quillai/internal/ports"
)

// Prompter implements ports.RedactionConfirmer using stdin/stdout.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter constructs a prompter referencing stdio.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Enabled indicates the prompter is interactive.
func (p *Prompter) Enabled() bool {
	return true
}

// Confirm shows the scrubbed prompt and asks the user to approve sending it.
func (p *Prompter) Confirm(outcome domain.RedactionOutcome) (bool, error) {
	fmt.Fprintln(p.out, "\nSensitive content was redacted before sending:")
	for _, applied := range outcome.Applied {
		fmt.Fprintf(p.out, " - %s: %d\n", applied.Category, applied.Count)
	}
	fmt.Fprintf(p.out, "Prompt as it will be sent:\n  %s\n", outcome.Text)
	return p.ask("[y/N]: ")
}

func (p *Prompter) ask(prompt string) (bool, error) {
	fmt.Fprint(p.out, "Send? ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes", nil
}

var _ ports.RedactionConfirmer = (*Prompter)(nil)
