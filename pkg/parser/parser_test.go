package parser

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/raymyers/subcc/pkg/cabs"
	"github.com/raymyers/subcc/pkg/diag"
	"gopkg.in/yaml.v3"
)

// TestSpec represents a test case from parse.yaml
type TestSpec struct {
	Name      string   `yaml:"name"`
	Input     string   `yaml:"input"`
	Expect    []string `yaml:"expect"`
	ExpectNot []string `yaml:"expect_not"`
	Warnings  *int     `yaml:"warnings"`
	Globals   []string `yaml:"globals"`
	Literals  []string `yaml:"literals"`
	Error     string   `yaml:"error"`
}

// TestFile represents the parse.yaml file structure
type TestFile struct {
	Tests []TestSpec `yaml:"tests"`
}

func TestParseYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/parse.yaml")
	if err != nil {
		t.Fatalf("failed to read parse.yaml: %v", err)
	}

	var testFile TestFile
	if err := yaml.Unmarshal(data, &testFile); err != nil {
		t.Fatalf("failed to parse parse.yaml: %v", err)
	}
	if len(testFile.Tests) == 0 {
		t.Fatal("parse.yaml has no tests")
	}

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			prog, err := ParseString(tc.Input, Options{})

			if tc.Error != "" {
				want, ok := diag.ParseKind(tc.Error)
				if !ok {
					t.Fatalf("unknown error kind %q in fixture", tc.Error)
				}
				if err == nil {
					t.Fatalf("expected %s error, parse succeeded", tc.Error)
				}
				if got, _ := diag.KindOf(err); got != want {
					t.Fatalf("expected %s error, got %v (%v)", want, got, err)
				}
				if prog != nil {
					t.Error("a failed parse must not return a Program")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if tc.Warnings != nil && len(prog.Warnings) != *tc.Warnings {
				t.Errorf("expected %d warnings, got %d: %v", *tc.Warnings, len(prog.Warnings), prog.Warnings)
			}

			if tc.Globals != nil {
				var names []string
				for _, v := range prog.Globals {
					names = append(names, v.Name)
				}
				if strings.Join(names, ",") != strings.Join(tc.Globals, ",") {
					t.Errorf("expected globals %v, got %v", tc.Globals, names)
				}
			}
			if tc.Literals != nil && strings.Join(prog.Literals, "\x00") != strings.Join(tc.Literals, "\x00") {
				t.Errorf("expected literals %q, got %q", tc.Literals, prog.Literals)
			}

			var buf bytes.Buffer
			cabs.NewPrinter(&buf).PrintProgram(prog)
			out := buf.String()
			for _, want := range tc.Expect {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q\n%s", want, out)
				}
			}
			for _, unwanted := range tc.ExpectNot {
				if strings.Contains(out, unwanted) {
					t.Errorf("output unexpectedly contains %q\n%s", unwanted, out)
				}
			}
		})
	}
}
