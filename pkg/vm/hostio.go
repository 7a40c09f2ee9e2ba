package vm

import (
	"bufio"
	"fmt"
	"io"
)

// HostIO is the one line in, one line out collaborator inp_op and out_op
// talk to. Swapping it is how a caller redirects a run's console without
// touching the executor (a websocket-fed REPL, a test harness capturing
// output, stdin/stdout for the CLI).
type HostIO interface {
	ReadLine() (string, error)
	WriteLine(string) error
}

// StdIO is the default HostIO, scanning an io.Reader a line at a time the
// way this project's original CLI front end read from stdin with
// bufio.Scanner.
type StdIO struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewStdIO(in io.Reader, out io.Writer) *StdIO {
	return &StdIO{in: bufio.NewScanner(in), out: out}
}

func (s *StdIO) ReadLine() (string, error) {
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.in.Text(), nil
}

func (s *StdIO) WriteLine(line string) error {
	_, err := fmt.Fprintln(s.out, line)
	return err
}
