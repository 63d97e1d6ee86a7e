package linter

import (
	"strings"
	"testing"

	"github.com/lhaig/anfc/internal/diagnostic"
	"github.com/lhaig/anfc/internal/parser"
)

const prelude = `data List[a] =
  | Nil
  | Cons[a, List[a]]
end

data Color = | Red | Green | Blue end
`

func parseAndLint(t *testing.T, source string) []diagnostic.Diagnostic {
	t.Helper()
	p := parser.New(source)
	prog := p.Parse()

	if p.Diagnostics().HasErrors() {
		t.Fatalf("Parser errors: %s", p.Diagnostics().Format("test"))
	}

	diag := Lint(prog)
	if diag.HasErrors() {
		t.Fatalf("linter must only warn, got: %s", diag.Format("test"))
	}
	return diag.All()
}

func messages(diags []diagnostic.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.Message)
	}
	return out
}

func containsWarning(diags []diagnostic.Diagnostic, substr string) bool {
	for _, d := range diags {
		if strings.Contains(d.Message, substr) || strings.Contains(d.Hint, substr) {
			return true
		}
	}
	return false
}

// --- Case coverage ---

func TestNonExhaustiveCase(t *testing.T) {
	source := prelude + `
fun f(c) = case c of | Red => 1 | Blue => 3 end`
	diags := parseAndLint(t, source)
	if !containsWarning(diags, "not exhaustive") {
		t.Fatalf("Expected non-exhaustive warning, got: %v", messages(diags))
	}
	if !containsWarning(diags, "'Green'") {
		t.Errorf("Expected Green as the missing value, got: %v", diags)
	}
}

func TestNestedWitness(t *testing.T) {
	source := prelude + `
fun f(l) = case l of
  | Nil => 0
  | Cons(Red, _) => 1
  | Cons(Green, _) => 2
  end`
	diags := parseAndLint(t, source)
	if !containsWarning(diags, "'Cons(Blue, _)'") {
		t.Errorf("Expected Cons(Blue, _) as the missing value, got: %v", diags)
	}
}

func TestLiteralCaseNeedsDefault(t *testing.T) {
	source := `fun f(n) = case n of | 0 => 1 | 1 => 2 end`
	diags := parseAndLint(t, source)
	if !containsWarning(diags, "'_'") {
		t.Errorf("Expected a wildcard witness, got: %v", diags)
	}
}

func TestExhaustiveCasesNoWarning(t *testing.T) {
	sources := []string{
		prelude + `fun f(c) = case c of | Red => 1 | Green => 2 | Blue => 3 end`,
		prelude + `fun f(l) = case l of | Nil => 0 | Cons(_, _) => 1 end`,
		`fun f(b) = case b of | true => 1 | false => 0 end`,
		`fun f(u) = case u of | () => 1 end`,
		`fun f(n) = case n of | 0 => 1 | k => k end`,
	}
	for _, src := range sources {
		diags := parseAndLint(t, src)
		if containsWarning(diags, "not exhaustive") {
			t.Errorf("Did not expect non-exhaustive warning for %q, got: %v", src, messages(diags))
		}
	}
}

func TestUnreachableRule(t *testing.T) {
	source := prelude + `
fun f(l) = case l of
  | Cons(Red, _) => 1
  | x => 2
  | Cons(Red, _) => 3
  end`
	diags := parseAndLint(t, source)
	if !containsWarning(diags, "rule 3 can never match") {
		t.Errorf("Expected unreachable rule warning, got: %v", messages(diags))
	}
	if containsWarning(diags, "rule 2 can never match") {
		t.Errorf("Did not expect rule 2 to be unreachable, got: %v", messages(diags))
	}
}

func TestDuplicateRule(t *testing.T) {
	source := prelude + `
fun f(c) = case c of | Red => 1 | Red => 2 | _ => 3 end`
	diags := parseAndLint(t, source)
	if !containsWarning(diags, "rule 2 can never match") {
		t.Errorf("Expected duplicate rule to be unreachable, got: %v", messages(diags))
	}
}

func TestCoveredByConstructors(t *testing.T) {
	source := `fun f(b) = case b of | true => 1 | false => 0 | _ => 2 end`
	diags := parseAndLint(t, source)
	if !containsWarning(diags, "rule 3 can never match") {
		t.Errorf("Expected the wildcard after true/false to be unreachable, got: %v", messages(diags))
	}
}

// --- Unused names ---

func TestUnusedParam(t *testing.T) {
	diags := parseAndLint(t, `fun f(x, y) = x`)
	if !containsWarning(diags, "parameter 'y' in 'f' is never used") {
		t.Errorf("Expected unused parameter warning, got: %v", messages(diags))
	}
	if containsWarning(diags, "parameter 'x'") {
		t.Errorf("Did not expect warning for x, got: %v", messages(diags))
	}
}

func TestUnderscoreParamIgnored(t *testing.T) {
	diags := parseAndLint(t, `fun f(x, _y) = x`)
	if len(diags) != 0 {
		t.Errorf("Expected no warnings, got: %v", messages(diags))
	}
}

func TestUnusedVariable(t *testing.T) {
	diags := parseAndLint(t, `fun f(x) = let y = @iadd(x, 1); x`)
	if !containsWarning(diags, "variable 'y' is declared but never used") {
		t.Errorf("Expected unused variable warning, got: %v", messages(diags))
	}
}

func TestUnusedLambdaParam(t *testing.T) {
	diags := parseAndLint(t, `fun f() = fn (a, b) { a }`)
	if !containsWarning(diags, "parameter 'b' of anonymous function") {
		t.Errorf("Expected unused lambda parameter warning, got: %v", messages(diags))
	}
}

func TestUncalledLocalFunction(t *testing.T) {
	diags := parseAndLint(t, `fun f() = letrec
  fun helper(n) = n
in
  1
end`)
	if !containsWarning(diags, "local function 'helper' is never called") {
		t.Errorf("Expected uncalled local function warning, got: %v", messages(diags))
	}
}

// --- Naming ---

func TestFunctionNaming(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"snake_case", false},
		{"len", false},
		{"map2", false},
		{"camelCase", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := parseAndLint(t, "fun "+tt.name+"() = 1")
			got := containsWarning(diags, "snake_case")
			if got != tt.want {
				t.Errorf("naming warning for %s: expected %v, got %v", tt.name, tt.want, got)
			}
		})
	}
}

func TestConstructorNaming(t *testing.T) {
	diags := parseAndLint(t, `data T = | Good | Not_good end`)
	if !containsWarning(diags, "constructor 'Not_good'") {
		t.Errorf("Expected constructor naming warning, got: %v", messages(diags))
	}
	if containsWarning(diags, "constructor 'Good'") {
		t.Errorf("Did not expect warning for Good, got: %v", messages(diags))
	}
}

func TestCleanProgramNoWarnings(t *testing.T) {
	source := prelude + `
fun len(l) = case l of
  | Nil => 0
  | Cons(_, xs) => @iadd(1, len(xs))
  end`
	diags := parseAndLint(t, source)
	if len(diags) != 0 {
		t.Errorf("Expected no warnings, got: %v", messages(diags))
	}
}

// --- Naming helpers ---

func TestIsSnakeCase(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"hello", true},
		{"hello_world", true},
		{"a1", true},
		{"helloWorld", false},
		{"", false},
		{"1abc", false},
	}
	for _, tt := range tests {
		if got := isSnakeCase(tt.input); got != tt.want {
			t.Errorf("isSnakeCase(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsPascalCase(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Hello", true},
		{"HelloWorld", true},
		{"hello", false},
		{"Hello_World", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isPascalCase(tt.input); got != tt.want {
			t.Errorf("isPascalCase(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
