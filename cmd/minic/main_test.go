package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestMiniCCompilesEndToEnd drives the whole pipeline through Handler, the
// way cmd/jack_compiler/main_test.go and cmd/hack_assembler/main_test.go
// drive their own Handler against fixture programs, adapted here to source
// text generated per-case since this language has no on-disk fixture corpus.
func TestMiniCCompilesEndToEnd(t *testing.T) {
	test := func(source string, wantContains ...string) string {
		t.Helper()
		dir := t.TempDir()
		in := filepath.Join(dir, "program.mc")
		out := filepath.Join(dir, "program.s")
		if err := os.WriteFile(in, []byte(source), 0o644); err != nil {
			t.Fatalf("writing fixture source: %v", err)
		}

		status := Handler([]string{in}, map[string]string{"out": out})
		if status != 0 {
			t.Fatalf("unexpected exit status: expected 0 got %d", status)
		}

		got, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("reading compiled output: %v", err)
		}
		asm := string(got)
		for _, want := range wantContains {
			if !strings.Contains(asm, want) {
				t.Errorf("source %q: expected assembly to contain %q, got:\n%s", source, want, asm)
			}
		}
		return asm
	}

	t.Run("sum prints via print_int", func(t *testing.T) {
		test("1 + 2", ".globl main", "callq print_int")
	})

	t.Run("or short-circuit prints via print_bool", func(t *testing.T) {
		test("true or false", ".Lor_right:", ".Lor_skip:", ".Lor_end:", "callq print_bool")
	})

	t.Run("function-typed var calls indirectly", func(t *testing.T) {
		test("var f: (Int) => Unit = print_int; f(123)", "call *%rax")
	})

	t.Run("collatz-shaped program reads, loops, and prints", func(t *testing.T) {
		source := `
			var n = read_int();
			print_int(n);
			while n > 1 do {
				if n % 2 == 0 then {
					n = n / 2;
				} else {
					n = 3 * n + 1;
				};
				print_int(n);
			}
		`
		test(source,
			".Lwhile_start:",
			".Lwhile_end:",
			"callq read_int",
			"callq print_int",
			"cqto",
		)
	})
}

func TestMiniCTypecheckOnlyReportsFailureWithoutWritingOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.mc")
	out := filepath.Join(dir, "bad.s")
	if err := os.WriteFile(in, []byte("if 1 then 2 else 3"), 0o644); err != nil {
		t.Fatalf("writing fixture source: %v", err)
	}

	status := Handler([]string{in}, map[string]string{"typecheck-only": "true", "out": out})
	if status == 0 {
		t.Fatalf("expected a non-zero exit status for a type error, got 0")
	}
	if _, err := os.Stat(out); err == nil {
		t.Fatalf("typecheck-only should not have produced an output file")
	}
}

func TestMiniCEmitIRPrintsInstructionListing(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "ok.mc")
	out := filepath.Join(dir, "ok.ir")
	if err := os.WriteFile(in, []byte("1 + 2"), 0o644); err != nil {
		t.Fatalf("writing fixture source: %v", err)
	}

	status := Handler([]string{in}, map[string]string{"emit-ir": "true", "out": out})
	if status != 0 {
		t.Fatalf("unexpected exit status: expected 0 got %d", status)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading IR listing: %v", err)
	}
	if !strings.Contains(string(got), "call print_int") {
		t.Errorf("expected IR listing to mention the terminal print_int call, got:\n%s", got)
	}
}
