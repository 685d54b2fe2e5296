package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/teris-io/cli"

	"minic/pkg/asmgen"
	"minic/pkg/check"
	"minic/pkg/ir"
	"minic/pkg/parser"
	"minic/pkg/token"
)

var Description = strings.ReplaceAll(`
The mini-c Compiler translates a single source file written in the language
through tokenizing, parsing, type checking, IR lowering and x86-64 assembly
emission, writing the resulting AT&T-syntax listing to stdout or --out.
`, "\n", " ")

var MiniC = cli.New(Description).
	WithArg(cli.NewArg("input", "The source file to be compiled")).
	WithOption(cli.NewOption("out", "Writes the compiled assembly to this file instead of stdout").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("emit-ir", "Prints the lowered three-address IR instead of assembly").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("typecheck-only", "Stops after the typecheck pass and reports success or failure").
		WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("%s Not enough arguments provided, use --help\n", color.RedString("ERROR:"))
		return -1
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("%s Unable to open input file: %s\n", color.RedString("ERROR:"), err)
		return -1
	}

	// Tokenizing never fails: malformed input simply turns into an Other
	// token, caught by the parser in the 'parsing' pass below.
	tokens := token.Tokenize(string(source))

	tree, err := parser.Parse(tokens)
	if err != nil {
		fmt.Printf("%s Unable to complete 'parsing' pass: %s\n", color.RedString("ERROR:"), err)
		return -1
	}

	if _, err := check.Check(tree); err != nil {
		fmt.Printf("%s Unable to complete 'typecheck' pass: %s\n", color.RedString("ERROR:"), err)
		return -1
	}

	if _, typecheckOnly := options["typecheck-only"]; typecheckOnly {
		fmt.Printf("%s %s type-checks\n", color.GreenString("ok:"), args[0])
		return 0
	}

	// Lowers the type-checked AST to its flat three-address instruction list.
	instructions, err := ir.Generate(tree)
	if err != nil {
		fmt.Printf("%s Unable to complete 'lowering' pass: %s\n", color.RedString("ERROR:"), err)
		return -1
	}

	var rendered string
	if _, emitIR := options["emit-ir"]; emitIR {
		var b strings.Builder
		for _, instr := range instructions {
			fmt.Fprintf(&b, "%s\n", instr)
		}
		rendered = b.String()
	} else {
		// Now instantiates an assembly generator for the (compiled) program.
		assembly, err := asmgen.Generate(instructions)
		if err != nil {
			fmt.Printf("%s Unable to complete 'codegen' pass: %s\n", color.RedString("ERROR:"), err)
			return -1
		}
		rendered = assembly
	}

	output := os.Stdout
	if path, wantsFile := options["out"]; wantsFile {
		f, err := os.Create(path)
		if err != nil {
			fmt.Printf("%s Unable to open output file: %s\n", color.RedString("ERROR:"), err)
			return -1
		}
		defer f.Close()
		output = f
	}

	if _, err := output.WriteString(rendered); err != nil {
		fmt.Printf("%s Unable to write output: %s\n", color.RedString("ERROR:"), err)
		return -1
	}

	if output != os.Stdout {
		fmt.Printf("%s compiled %s\n", color.GreenString("ok:"), args[0])
	}
	return 0
}

func main() { os.Exit(MiniC.Run(os.Args, os.Stdout)) }
