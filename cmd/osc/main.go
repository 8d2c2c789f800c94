// Command osc converts OSC packets between their text and binary forms.
//
// Usage:
//
//	osc <command> [flags] [args]
//
// Commands:
//
//	encode   Encode text packets to hex, raw bytes or a framed stream
//	decode   Decode hex lines, raw bytes or a framed stream to text
//	inspect  Show the annotated byte layout of a binary packet
//	shell    Interactive encode/decode prompt
//
// Examples:
//
//	# Encode a message to hex
//	osc encode '/mixer/fader1, 0.5f'
//
//	# Decode a SLIP framed capture
//	osc decode --format stream --framing slip < capture.bin
//
//	# Show the layout of a packet
//	osc inspect 2f610000 2c690000 00000001
//
//	# Write a protocol capture while decoding
//	osc decode --config osc.yaml --format stream < capture.bin
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/oscwire/osc-go/cmd/osc/commands"
	"github.com/oscwire/osc-go/pkg/config"
	"github.com/oscwire/osc-go/pkg/log"
)

const usage = `osc - OSC packet codec tool

Usage:
  osc <command> [flags] [args]

Commands:
  encode   Encode text packets to hex, raw bytes or a framed stream
  decode   Decode hex lines, raw bytes or a framed stream to text
  inspect  Show the annotated byte layout of a binary packet
  shell    Interactive encode/decode prompt

Use "osc <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "encode":
		runEncode(args)
	case "decode":
		runDecode(args)
	case "inspect":
		runInspect(args)
	case "shell":
		runShell(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// common holds the flags shared by every command.
type common struct {
	configPath string
	framing    string
	maxDepth   int
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "Config file (YAML)")
	fs.StringVar(&c.framing, "framing", "", "Stream framing (length-prefix, slip); overrides config")
	fs.IntVar(&c.maxDepth, "max-depth", 0, "Maximum array and bundle nesting; overrides config")
}

// load reads the config file and applies flag overrides.
func (c *common) load() config.Config {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		fatal(err)
	}
	if c.framing != "" {
		cfg.Framing = c.framing
	}
	if c.maxDepth != 0 {
		cfg.MaxDepth = c.maxDepth
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}
	return cfg
}

// console returns the stderr logger at the configured level.
func console(cfg config.Config) *slog.Logger {
	level, err := cfg.Level()
	if err != nil {
		fatal(err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// options builds the command options, opening the protocol capture when
// configured. The returned function closes it.
func options(cfg config.Config, format string) (commands.Options, func()) {
	streamOpts, err := cfg.StreamOptions()
	if err != nil {
		fatal(err)
	}
	logger := console(cfg)
	protoLog, closeFn, err := cfg.ProtocolLogger(logger)
	if err != nil {
		fatal(err)
	}

	opts := commands.Options{
		Format:    format,
		Stream:    streamOpts,
		Logger:    protoLog,
		SessionID: log.NewSessionID(),
	}
	logger.Debug("session started", "session", opts.SessionID, "framing", streamOpts.Framing.String(), "format", format)

	return opts, func() {
		if err := closeFn(); err != nil {
			logger.Error("closing protocol log", "error", err)
		}
	}
}

func runEncode(args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `osc encode - Encode text packets

Reads packets from the arguments, or one per line from stdin.

Usage:
  osc encode [flags] [packet...]

Flags:
`)
		fs.PrintDefaults()
	}

	var c common
	c.register(fs)
	format := fs.String("format", commands.FormatHex, "Output format (hex, raw, stream)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := c.load()
	opts, done := options(cfg, *format)
	defer done()

	texts := fs.Args()
	if len(texts) == 0 {
		var err error
		if texts, err = commands.ReadLines(os.Stdin); err != nil {
			fatal(err)
		}
	}

	if _, err := commands.RunEncode(texts, opts, os.Stdout); err != nil {
		done()
		fatal(err)
	}
}

func runDecode(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `osc decode - Decode binary packets

Reads stdin, or the file named by the argument.

Usage:
  osc decode [flags] [file]

Flags:
`)
		fs.PrintDefaults()
	}

	var c common
	c.register(fs)
	format := fs.String("format", commands.FormatHex, "Input format (hex, raw, stream)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := c.load()
	opts, done := options(cfg, *format)
	defer done()

	in := openInput(fs)
	defer in.Close()

	res, err := commands.RunDecode(in, opts, os.Stdout)
	if err != nil {
		done()
		fatal(err)
	}
	if res.Failures > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d packets failed to decode\n", res.Failures, res.Packets+res.Failures)
		done()
		os.Exit(1)
	}
}

func runInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `osc inspect - Show the byte layout of a binary packet

Reads hex from the arguments, or hex or raw bytes from stdin.

Usage:
  osc inspect [flags] [hex...]

Flags:
`)
		fs.PrintDefaults()
	}

	var c common
	c.register(fs)
	format := fs.String("format", commands.FormatHex, "Stdin format (hex, raw)")
	raw := fs.Bool("raw", false, "Include raw bytes for each field")
	path := fs.String("path", "", "Print the element or argument at this path (e.g. 0/2) instead of the layout")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := c.load()
	data, err := commands.ReadInspectInput(fs.Args(), *format, os.Stdin)
	if err != nil {
		fatal(err)
	}

	opts := commands.InspectOptions{Codec: cfg.Codec(), ShowRaw: *raw, Path: *path}
	if err := commands.RunInspect(data, opts, os.Stdout); err != nil {
		fatal(err)
	}
}

func runShell(args []string) {
	fs := flag.NewFlagSet("shell", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `osc shell - Interactive encode/decode prompt

Usage:
  osc shell [flags]

Flags:
`)
		fs.PrintDefaults()
	}

	var c common
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := c.load()
	sh := commands.NewShell(cfg.Codec(), console(cfg))
	if err := sh.Run(cfg.HistoryPath()); err != nil {
		fatal(err)
	}
}

// openInput returns the file named by the first argument, or stdin.
func openInput(fs *flag.FlagSet) io.ReadCloser {
	if fs.NArg() == 0 {
		return io.NopCloser(os.Stdin)
	}
	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fatal(err)
	}
	return f
}
