// Command sixfiveasm assembles a single MOS 6502 source file into a
// raw binary image.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"gopkg.in/Sirupsen/logrus.v0"

	"github.com/ochaton/sixfiveasm/assembler"
	"github.com/ochaton/sixfiveasm/config"
)

type CLI struct {
	Input string `arg:"" name:"input" help:"Path to the top-level source file." type:"existingfile"`

	Target     string `name:"target" help:"Write the assembled binary image to this path."`
	BinaryDump bool   `name:"binary-dump" help:"Print a hex dump of the assembled image to stdout."`
	TokenDump  bool   `name:"token-dump" help:"Print the token stream of the top-level file and exit."`
	Silent     bool   `name:"silent" help:"Suppress non-error diagnostic output."`
	ConfigPath string `name:"config" help:"Path to a sixfiveasm.toml configuration file." type:"path"`
	Verbose    bool   `name:"verbose" help:"Enable verbose trace logging."`
}

var vars = kong.Vars{
	"description": "MOS 6502 cross-assembler.",
}

func main() {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("sixfiveasm"),
		kong.Description("${description}"),
		kong.UsageOnError(),
		vars)
	if err != nil {
		panic(err)
	}
	if _, err := parser.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cli.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else if cli.Silent {
		logrus.SetLevel(logrus.ErrorLevel)
	}

	cfg, err := config.Load(cli.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sixfiveasm: cannot load config: %v\n", err)
		os.Exit(1)
	}

	if cli.TokenDump {
		if err := dumpTokens(cli.Input); err != nil {
			fmt.Fprintf(os.Stderr, "sixfiveasm: %v\n", err)
			os.Exit(1)
		}
		return
	}

	opts := assembler.Options{
		Origin:      cfg.Assemble.Origin,
		Fillvalue:   byte(cfg.Assemble.Fillvalue),
		SearchPaths: cfg.Assemble.IncludePaths,
		Verbose:     cli.Verbose,
	}

	provider := &assembler.FileSourceProvider{SearchPaths: opts.SearchPaths}
	result, err := assembler.Assemble(cli.Input, provider, opts)
	if err != nil {
		if asmErr, ok := err.(*assembler.AssemblyError); ok {
			printDiagnostics(asmErr.Diagnostics, cli.Silent)
		} else {
			fmt.Fprintf(os.Stderr, "sixfiveasm: %v\n", err)
		}
		os.Exit(1)
	}

	printDiagnostics(result.Diagnostics, cli.Silent)

	if cli.Target != "" {
		if err := os.WriteFile(cli.Target, result.Image, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "sixfiveasm: %v\n", err)
			os.Exit(1)
		}
	}

	if cli.BinaryDump {
		dumpHex(os.Stdout, result.Image)
	}
}

func printDiagnostics(diagnostics []assembler.Diagnostic, silent bool) {
	for _, d := range diagnostics {
		if silent && d.Severity == assembler.SevWarning {
			continue
		}
		fmt.Fprintln(os.Stderr, d.String())
	}
}

func dumpHex(w *os.File, data []byte) {
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(w, "%04X: ", i)
		for _, b := range data[i:end] {
			fmt.Fprintf(w, "%02X ", b)
		}
		fmt.Fprintln(w)
	}
}

func dumpTokens(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lexer := assembler.NewLexer(0)
	tokens, err := lexer.Lex(string(data))
	if err != nil {
		return err
	}
	for _, t := range tokens {
		fmt.Printf("%4d:%-3d %-14s %q\n", t.Line, t.Column+1, t.Kind, t.Lexeme)
	}
	return nil
}
