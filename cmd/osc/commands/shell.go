package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/oscwire/osc-go/pkg/inspect"
	"github.com/oscwire/osc-go/pkg/osc"
)

// Shell is an interactive prompt that converts between the OSC text and
// binary forms.
type Shell struct {
	codec     osc.Config
	formatter *inspect.Formatter
	logger    *slog.Logger

	// last holds the most recent packet encoding for :inspect and :get.
	last []byte
}

// NewShell creates a shell using codec for parsing and decoding.
func NewShell(codec osc.Config, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Shell{
		codec:     codec,
		formatter: inspect.NewFormatter(),
		logger:    logger,
	}
}

// Run reads lines from the terminal until :quit, EOF or an error.
// historyFile may be empty.
func (s *Shell) Run(historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "osc> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	s.printHelp(rl.Stdout())

	for {
		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			return nil
		}
		if s.Process(line, rl.Stdout()) {
			return nil
		}
	}
}

// Process handles one input line and reports whether the shell should
// exit. Lines starting with ':' are commands; anything else is parsed as
// a text packet.
func (s *Shell) Process(line string, w io.Writer) (quit bool) {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	if !strings.HasPrefix(input, ":") {
		s.encode(input, w)
		return false
	}

	parts := strings.Fields(input[1:])
	if len(parts) == 0 {
		s.printHelp(w)
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "h", "?":
		s.printHelp(w)

	case "decode", "d":
		s.cmdDecode(args, w)

	case "inspect", "i":
		s.cmdInspect(args, w)

	case "get", "g":
		s.cmdGet(args, w)

	case "depth":
		s.cmdDepth(args, w)

	case "raw":
		s.cmdRaw(args, w)

	case "quit", "q", "exit":
		return true

	default:
		fmt.Fprintf(w, "Unknown command: %s (try :help)\n", cmd)
	}
	return false
}

func (s *Shell) encode(text string, w io.Writer) {
	p, err := s.codec.Parse(text)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	data, err := s.codec.Encode(p)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	s.last = data
	s.logger.Debug("encoded packet", "size", len(data))

	fmt.Fprintln(w, describe(p))
	fmt.Fprintln(w, inspect.FormatHex(data))
}

func (s *Shell) cmdDecode(args []string, w io.Writer) {
	if len(args) == 0 {
		fmt.Fprintln(w, "Usage: :decode <hex>")
		return
	}
	data, err := ParseHex(strings.Join(args, " "))
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	p, err := s.codec.Decode(data)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	s.last = data
	fmt.Fprintln(w, osc.Format(p))
}

func (s *Shell) cmdInspect(args []string, w io.Writer) {
	data := s.last
	if len(args) > 0 {
		var err error
		if data, err = ParseHex(strings.Join(args, " ")); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return
		}
	}
	if len(data) == 0 {
		fmt.Fprintln(w, "Nothing to inspect: enter a packet or pass hex bytes")
		return
	}

	ins := &inspect.Inspector{MaxDepth: s.codec.MaxDepth}
	fields, err := ins.Layout(data)
	io.WriteString(w, s.formatter.FormatLayout(fields))
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

func (s *Shell) cmdGet(args []string, w io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(w, "Usage: :get <path>")
		return
	}
	if len(s.last) == 0 {
		fmt.Fprintln(w, "No packet: enter or decode one first")
		return
	}
	path, err := inspect.ParsePath(args[0])
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	p, err := s.codec.Decode(s.last)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	node, err := inspect.Resolve(p, path)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, node.String())
}

func (s *Shell) cmdDepth(args []string, w io.Writer) {
	if len(args) == 0 {
		depth := s.codec.MaxDepth
		if depth <= 0 {
			depth = osc.DefaultMaxDepth
		}
		fmt.Fprintf(w, "Max depth: %d\n", depth)
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		fmt.Fprintf(w, "Invalid depth: %s\n", args[0])
		return
	}
	s.codec.MaxDepth = n
	fmt.Fprintf(w, "Max depth: %d\n", n)
}

func (s *Shell) cmdRaw(args []string, w io.Writer) {
	if len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "on":
			s.formatter.ShowRaw = true
		case "off":
			s.formatter.ShowRaw = false
		default:
			fmt.Fprintln(w, "Usage: :raw on|off")
			return
		}
	}
	state := "off"
	if s.formatter.ShowRaw {
		state = "on"
	}
	fmt.Fprintf(w, "Raw bytes: %s\n", state)
}

func (s *Shell) printHelp(w io.Writer) {
	fmt.Fprint(w, `
Enter a packet in text form to encode it, for example:
  /mixer/fader1, 0.5f, "main"
  #bundle, immediate, { /a, 1 }, { /b, 2 }

Commands:
  :decode <hex>    Decode a binary packet
  :inspect [hex]   Show the byte layout (default: last packet)
  :get <path>      Print a bundle element or argument of the last packet
  :depth [n]       Show or set the maximum nesting depth
  :raw on|off      Include raw bytes in layouts
  :help            Show this help
  :quit            Exit
`)
}
