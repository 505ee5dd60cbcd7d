package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/levmv/takeoutsort/config"
)

// prompter asks the questions of an interactive run. With assumeYes every
// question takes its default without reading input.
type prompter struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func newPrompter(in io.Reader, out io.Writer, assumeYes bool) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

// line reads one answer. End of input counts as an empty answer.
func (p *prompter) line() (string, error) {
	s, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func (p *prompter) YesNo(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	if p.assumeYes {
		fmt.Fprintf(p.out, "%s [%s] %s\n", question, hint, yesNo(def))
		return def, nil
	}
	for {
		fmt.Fprintf(p.out, "%s [%s] ", question, hint)
		s, err := p.line()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(s) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Path asks for a directory. An empty answer keeps def; "~" is expanded.
func (p *prompter) Path(question, def string) (string, error) {
	label := question
	if def != "" {
		label = fmt.Sprintf("%s [%s]", question, def)
	}
	if p.assumeYes {
		fmt.Fprintf(p.out, "%s: %s\n", label, def)
		return def, nil
	}
	fmt.Fprintf(p.out, "%s: ", label)
	s, err := p.line()
	if err != nil {
		return "", err
	}
	if s == "" {
		return def, nil
	}
	return config.ExpandPath(strings.Trim(s, `"'`))
}

// Mode asks for the folder layout: 1 for year, 2 for year/month.
func (p *prompter) Mode(def string) (string, error) {
	defNum := "1"
	if def == config.ModeMonth {
		defNum = "2"
	}
	question := "Folder layout: 1) YYYY/  2) YYYY/month/"
	if p.assumeYes {
		fmt.Fprintf(p.out, "%s [%s] %s\n", question, defNum, defNum)
		return def, nil
	}
	for {
		fmt.Fprintf(p.out, "%s [%s] ", question, defNum)
		s, err := p.line()
		if err != nil {
			return "", err
		}
		switch strings.ToLower(s) {
		case "":
			return def, nil
		case "1", config.ModeYear:
			return config.ModeYear, nil
		case "2", config.ModeMonth:
			return config.ModeMonth, nil
		}
		fmt.Fprintln(p.out, "Please answer 1 or 2.")
	}
}
