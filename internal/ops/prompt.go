package ops

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// prompter reads trimmed answers from a line-oriented input.
type prompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	if in == nil {
		in = strings.NewReader("")
	}
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &prompter{sc: sc, out: out}
}

// readLine prints prompt and returns the next line. ok is false at EOF.
func (p *prompter) readLine(prompt string) (line string, ok bool) {
	_, _ = fmt.Fprint(p.out, prompt)
	if !p.sc.Scan() {
		_, _ = fmt.Fprintln(p.out)
		return "", false
	}
	return strings.TrimSpace(p.sc.Text()), true
}

// confirm asks a yes/no question. Only y, yes, д and да are yes.
func (p *prompter) confirm(prompt string) bool {
	line, ok := p.readLine(prompt)
	if !ok {
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes", "д", "да":
		return true
	}
	return false
}
