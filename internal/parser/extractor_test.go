package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the extractor:
// - Python: classes, methods under classes, docstrings, decorators, constants
// - JavaScript: functions, classes, methods, preceding-comment docstrings,
//   anonymous arrow functions skipped
// - TypeScript: interfaces, type aliases, enums as kind "type"
// - Go: functions, methods, type declarations via the type_spec wrapper
// - Rust: structs/traits as types, unnamed impl blocks skipped, attributes
// - Java: classes with nested methods, constructors as methods
// - Kind promotion: nested function becomes method
// - Qualified names compose parent.qualified + "." + name
// - Constants only recognized at top level, never inside a symbol
// - Unsupported language returns empty result without error
// - Syntax-error subtrees excluded while later symbols survive
// - Determinism, pre-order parent invariant, byte-range soundness
// - Invalid UTF-8 surfaces ErrInvalidEncoding

func TestExtractPythonClassWithMethod(t *testing.T) {
	t.Parallel()

	src := "class C:\n    \"\"\"Doc.\"\"\"\n    def m(self):\n        \"\"\"M doc.\"\"\"\n        return 1\n"
	symbols, err := Extract([]byte(src), "test.py", "python")
	require.NoError(t, err)
	require.Len(t, symbols, 2)

	c := symbols[0]
	assert.Equal(t, "C", c.Name)
	assert.Equal(t, "C", c.QualifiedName)
	assert.Equal(t, KindClass, c.Kind)
	assert.Equal(t, "Doc.", c.Docstring)
	assert.Empty(t, c.Parent)
	assert.Equal(t, "test-py::C", c.ID)
	assert.Equal(t, 1, c.Line)
	assert.Equal(t, "class C", c.Signature)

	m := symbols[1]
	assert.Equal(t, "m", m.Name)
	assert.Equal(t, "C.m", m.QualifiedName)
	assert.Equal(t, KindMethod, m.Kind)
	assert.Equal(t, "M doc.", m.Docstring)
	assert.Equal(t, c.ID, m.Parent)
	assert.Equal(t, 3, m.Line)
	assert.Equal(t, "def m(self)", m.Signature)
}

func TestExtractPythonDecorators(t *testing.T) {
	t.Parallel()

	src := "@app.route('/login')\n@cached\ndef login(user):\n    return user\n"
	symbols, err := Extract([]byte(src), "routes.py", "python")
	require.NoError(t, err)
	require.Len(t, symbols, 1)

	assert.Equal(t, "login", symbols[0].Name)
	assert.Equal(t, []string{"@app.route('/login')", "@cached"}, symbols[0].Decorators)
}

func TestExtractPythonTopLevelConstant(t *testing.T) {
	t.Parallel()

	src := "MAX_SIZE = 100\n\nDefault_Timeout = 30\n\nlowercase = 1\n"
	symbols, err := Extract([]byte(src), "config.py", "python")
	require.NoError(t, err)
	require.Len(t, symbols, 2)

	assert.Equal(t, "MAX_SIZE", symbols[0].Name)
	assert.Equal(t, KindConstant, symbols[0].Kind)
	assert.Equal(t, "MAX_SIZE = 100", symbols[0].Signature)
	assert.Empty(t, symbols[0].Parent)

	// Mixed case starting upper with an underscore is accepted too.
	assert.Equal(t, "Default_Timeout", symbols[1].Name)
}

func TestExtractPythonConstantInsideFunctionIgnored(t *testing.T) {
	t.Parallel()

	src := "def f():\n    MAX_SIZE = 100\n    return MAX_SIZE\n"
	symbols, err := Extract([]byte(src), "f.py", "python")
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "f", symbols[0].Name)
	assert.Equal(t, KindFunction, symbols[0].Kind)
}

func TestExtractPythonNestedFunctionPromotedToMethod(t *testing.T) {
	t.Parallel()

	src := "def outer():\n    def inner():\n        pass\n    return inner\n"
	symbols, err := Extract([]byte(src), "nest.py", "python")
	require.NoError(t, err)
	require.Len(t, symbols, 2)

	assert.Equal(t, KindFunction, symbols[0].Kind)
	assert.Equal(t, "inner", symbols[1].Name)
	assert.Equal(t, "outer.inner", symbols[1].QualifiedName)
	assert.Equal(t, KindMethod, symbols[1].Kind)
	assert.Equal(t, symbols[0].ID, symbols[1].Parent)
}

func TestExtractJavaScript(t *testing.T) {
	t.Parallel()

	src := `// Adds numbers.
function add(a, b) {
  return a + b;
}

class Calculator {
  // Runs the op.
  compute(op) {
    return op();
  }
}
`
	symbols, err := Extract([]byte(src), "calc.js", "javascript")
	require.NoError(t, err)
	require.Len(t, symbols, 3)

	add := symbols[0]
	assert.Equal(t, "add", add.Name)
	assert.Equal(t, KindFunction, add.Kind)
	assert.Equal(t, "Adds numbers.", add.Docstring)
	assert.Equal(t, "function add(a, b)", add.Signature)

	calc := symbols[1]
	assert.Equal(t, "Calculator", calc.Name)
	assert.Equal(t, KindClass, calc.Kind)

	compute := symbols[2]
	assert.Equal(t, "compute", compute.Name)
	assert.Equal(t, KindMethod, compute.Kind)
	assert.Equal(t, "Calculator.compute", compute.QualifiedName)
	assert.Equal(t, calc.ID, compute.Parent)
	assert.Equal(t, "Runs the op.", compute.Docstring)
}

func TestExtractJavaScriptAnonymousArrowSkipped(t *testing.T) {
	t.Parallel()

	// The arrow function's name belongs to the assignment, not to the
	// function value; this core skips it as anonymous.
	src := "const double = (x) => x * 2;\n"
	symbols, err := Extract([]byte(src), "arrow.js", "javascript")
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestExtractTypeScriptTypes(t *testing.T) {
	t.Parallel()

	src := `/** User shape. */
interface User {
  name: string;
}

type ID = string;

enum Color {
  Red,
  Green,
}
`
	symbols, err := Extract([]byte(src), "types.ts", "typescript")
	require.NoError(t, err)
	require.Len(t, symbols, 3)

	user := symbols[0]
	assert.Equal(t, "User", user.Name)
	assert.Equal(t, KindType, user.Kind)
	assert.Equal(t, "User shape.", user.Docstring)

	id := symbols[1]
	assert.Equal(t, "ID", id.Name)
	assert.Equal(t, KindType, id.Kind)
	assert.True(t, strings.HasPrefix(id.Signature, "type ID = string"))

	color := symbols[2]
	assert.Equal(t, "Color", color.Name)
	assert.Equal(t, KindType, color.Kind)
	assert.Equal(t, "enum Color", color.Signature)
}

func TestExtractGo(t *testing.T) {
	t.Parallel()

	src := `package people

// Person holds a name.
type Person struct {
	Name string
}

// Greet does X.
func (p *Person) Greet() {}

// Wave waves.
func Wave() {}
`
	symbols, err := Extract([]byte(src), "person.go", "go")
	require.NoError(t, err)
	require.Len(t, symbols, 3)

	person := symbols[0]
	assert.Equal(t, "Person", person.Name)
	assert.Equal(t, KindType, person.Kind)
	assert.Equal(t, "Person holds a name.", person.Docstring)
	assert.True(t, strings.HasPrefix(person.Signature, "type Person struct"))

	greet := symbols[1]
	assert.Equal(t, "Greet", greet.Name)
	assert.Equal(t, KindMethod, greet.Kind)
	assert.Equal(t, "Greet does X.", greet.Docstring)
	assert.Equal(t, "func (p *Person) Greet()", greet.Signature)
	assert.Empty(t, greet.Parent)

	wave := symbols[2]
	assert.Equal(t, KindFunction, wave.Kind)
	assert.Equal(t, "func Wave()", wave.Signature)
}

func TestExtractGoMultiLineComment(t *testing.T) {
	t.Parallel()

	src := `package p

// Sum adds all values.
// It returns zero for empty input.
func Sum(vals ...int) int {
	total := 0
	for _, v := range vals {
		total += v
	}
	return total
}
`
	symbols, err := Extract([]byte(src), "sum.go", "go")
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "Sum adds all values.\nIt returns zero for empty input.", symbols[0].Docstring)
}

func TestExtractRust(t *testing.T) {
	t.Parallel()

	src := `/// Point in 2D.
struct Point {
    x: i32,
    y: i32,
}

impl Point {
    /// Returns x.
    fn x(&self) -> i32 {
        self.x
    }
}
`
	symbols, err := Extract([]byte(src), "point.rs", "rust")
	require.NoError(t, err)
	require.Len(t, symbols, 2)

	point := symbols[0]
	assert.Equal(t, "Point", point.Name)
	assert.Equal(t, KindType, point.Kind)
	assert.Equal(t, "Point in 2D.", point.Docstring)

	// The impl block has no direct name, so it contributes no symbol and
	// its functions keep top-level context.
	x := symbols[1]
	assert.Equal(t, "x", x.Name)
	assert.Equal(t, KindFunction, x.Kind)
	assert.Equal(t, "fn x(&self) -> i32", x.Signature)
	assert.Equal(t, "Returns x.", x.Docstring)
	assert.Empty(t, x.Parent)
}

func TestExtractRustAttributes(t *testing.T) {
	t.Parallel()

	src := "#[derive(Debug)]\nstruct Config {\n    debug: bool,\n}\n"
	symbols, err := Extract([]byte(src), "config.rs", "rust")
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, []string{"#[derive(Debug)]"}, symbols[0].Decorators)
}

func TestExtractJava(t *testing.T) {
	t.Parallel()

	src := `// Greets people.
public class Greeter {
    public Greeter() {
    }

    // Says hello.
    public String hello(String name) {
        return "Hello " + name;
    }
}
`
	symbols, err := Extract([]byte(src), "Greeter.java", "java")
	require.NoError(t, err)
	require.Len(t, symbols, 3)

	greeter := symbols[0]
	assert.Equal(t, "Greeter", greeter.Name)
	assert.Equal(t, KindClass, greeter.Kind)
	assert.Equal(t, "Greets people.", greeter.Docstring)

	ctor := symbols[1]
	assert.Equal(t, "Greeter", ctor.Name)
	assert.Equal(t, KindMethod, ctor.Kind)
	assert.Equal(t, "Greeter.Greeter", ctor.QualifiedName)
	assert.Equal(t, greeter.ID, ctor.Parent)

	hello := symbols[2]
	assert.Equal(t, "hello", hello.Name)
	assert.Equal(t, KindMethod, hello.Kind)
	assert.Equal(t, "Greeter.hello", hello.QualifiedName)
	assert.Equal(t, "Says hello.", hello.Docstring)
	assert.Equal(t, "public String hello(String name)", hello.Signature)
}

func TestExtractJavaMultiLineBlockComment(t *testing.T) {
	t.Parallel()

	src := `/**
 * Parses input.
 * Returns a token list.
 */
public class Parser {
}
`
	symbols, err := Extract([]byte(src), "Parser.java", "java")
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "Parses input.\nReturns a token list.", symbols[0].Docstring)
}

func TestExtractUnsupportedLanguage(t *testing.T) {
	t.Parallel()

	symbols, err := Extract([]byte("IDENTIFICATION DIVISION."), "f.x", "cobol")
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestExtractEmptySource(t *testing.T) {
	t.Parallel()

	symbols, err := Extract(nil, "empty.py", "python")
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestExtractSkipsErrorSubtree(t *testing.T) {
	t.Parallel()

	src := "def broken(:\n    pass\n\ndef fine():\n    return 1\n"
	symbols, err := Extract([]byte(src), "broken.py", "python")
	require.NoError(t, err)

	names := make([]string, 0, len(symbols))
	for _, s := range symbols {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "fine")
	assert.NotContains(t, names, "broken")
}

func TestExtractDeterminism(t *testing.T) {
	t.Parallel()

	src := "class A:\n    def m(self):\n        pass\n\nLIMIT = 5\n"
	first, err := Extract([]byte(src), "a.py", "python")
	require.NoError(t, err)
	second, err := Extract([]byte(src), "a.py", "python")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtractPreOrderParentInvariant(t *testing.T) {
	t.Parallel()

	src := `class Outer:
    class Inner:
        def deep(self):
            pass

    def shallow(self):
        pass
`
	symbols, err := Extract([]byte(src), "nested.py", "python")
	require.NoError(t, err)
	require.NotEmpty(t, symbols)

	seen := map[string]bool{}
	for _, s := range symbols {
		if s.Parent != "" {
			assert.True(t, seen[s.Parent], "parent of %s must precede it", s.QualifiedName)
		}
		seen[s.ID] = true
	}

	// Qualified names compose along the ancestor chain.
	byID := map[string]Symbol{}
	for _, s := range symbols {
		byID[s.ID] = s
	}
	for _, s := range symbols {
		if s.Parent == "" {
			continue
		}
		parent, ok := byID[s.Parent]
		require.True(t, ok)
		assert.Equal(t, parent.QualifiedName+"."+s.Name, s.QualifiedName)
	}
}

func TestExtractByteRangeSoundness(t *testing.T) {
	t.Parallel()

	sources := map[string][2]string{
		"s.py": {"python", "class C:\n    \"\"\"Doc.\"\"\"\n    def m(self):\n        return 1\n\nLIMIT = 10\n"},
		"s.go": {"go", "package p\n\n// F does f.\nfunc F() int {\n\treturn 1\n}\n"},
		"s.js": {"javascript", "function f(a) {\n  return a;\n}\n"},
	}

	for file, pair := range sources {
		lang, src := pair[0], pair[1]
		symbols, err := Extract([]byte(src), file, lang)
		require.NoError(t, err, file)
		require.NotEmpty(t, symbols, file)

		for _, s := range symbols {
			require.GreaterOrEqual(t, s.ByteOffset, 0, s.ID)
			require.LessOrEqual(t, s.ByteOffset+s.ByteLength, len(src), s.ID)
			span := src[s.ByteOffset : s.ByteOffset+s.ByteLength]
			// The signature is always a prefix of the node's own text.
			assert.True(t, strings.HasPrefix(span, s.Signature), "%s: %q not a prefix of %q", s.ID, s.Signature, span)
		}
	}
}

func TestInvalidEncodingSurfaces(t *testing.T) {
	t.Parallel()

	w := &walker{source: []byte{0xff, 0xfe, 0x01}}
	_, err := w.sliceText(0, 3)
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestIsConstantName(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"MAX_SIZE":        true,
		"VERSION":         true,
		"Default_Timeout": true,
		"lowercase":       false,
		"camelCase":       false,
		"Mixed":           false,
		"_private":        false,
		"":                false,
	}
	for name, want := range cases {
		assert.Equal(t, want, IsConstantName(name), name)
	}
}

func TestStripQuotes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Doc.", stripQuotes(`"""Doc."""`))
	assert.Equal(t, "Doc.", stripQuotes("'''Doc.'''"))
	assert.Equal(t, "Doc.", stripQuotes(`"Doc."`))
	assert.Equal(t, "Doc.", stripQuotes("'Doc.'"))
	assert.Equal(t, "no quotes", stripQuotes("no quotes"))
}

func TestCleanCommentMarkers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Line doc.", cleanCommentMarkers("// Line doc."))
	assert.Equal(t, "Rust doc.", cleanCommentMarkers("/// Rust doc."))
	assert.Equal(t, "Module doc.", cleanCommentMarkers("//! Module doc."))
	assert.Equal(t, "Block doc.", cleanCommentMarkers("/* Block doc. */"))
	assert.Equal(t, "First.\nSecond.", cleanCommentMarkers("/**\n * First.\n * Second.\n */"))

	// A closing line that is nothing but */ must vanish, not leave a
	// stray slash behind.
	assert.Equal(t, "Doc.", cleanCommentMarkers("/**\n * Doc.\n*/"))
	assert.Equal(t, "Tail.", cleanCommentMarkers("/** Tail. */"))
}

func TestExtractGoFixtureFile(t *testing.T) {
	t.Parallel()

	src, err := os.ReadFile(filepath.Join("testdata", "server.go"))
	require.NoError(t, err)

	symbols, err := Extract(src, "internal/server/server.go", "go")
	require.NoError(t, err)

	byName := map[string]Symbol{}
	for _, sym := range symbols {
		byName[sym.Name] = sym
	}

	require.Contains(t, byName, "Config")
	require.Contains(t, byName, "Handler")
	require.Contains(t, byName, "NewHandler")
	require.Contains(t, byName, "ServeHTTP")

	assert.Equal(t, KindType, byName["Config"].Kind)
	assert.Equal(t, "Config holds server settings.", byName["Config"].Docstring)
	assert.Equal(t, KindFunction, byName["NewHandler"].Kind)
	assert.Equal(t, "NewHandler builds a Handler around config.", byName["NewHandler"].Docstring)
	assert.Equal(t, KindMethod, byName["ServeHTTP"].Kind)
	assert.Equal(t, "internal-server-server-go::ServeHTTP", byName["ServeHTTP"].ID)
}
