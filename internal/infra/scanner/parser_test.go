package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFileSkipsNonTools(t *testing.T) {
	source := `
class Incomplete:
    def get_name(self):
        return "incomplete"

def get_name():
    return "module level function, not a class"
`
	s := New(nil, nil, nil)
	records, err := s.parseFile(context.Background(), "incomplete.py", []byte(source))
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestParseFileNestedClass(t *testing.T) {
	source := `
class Outer:
    class InnerTool:
        def get_name(self):
            return "inner_tool"

        def get_description(self):
            return "Declared inside another class."

        def execute(self):
            return None
`
	s := New(nil, nil, nil)
	records, err := s.parseFile(context.Background(), "nested.py", []byte(source))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "inner_tool", records[0].Name)
	require.Equal(t, "InnerTool", records[0].ClassName)
}

func TestParseFileToleratesSyntaxErrors(t *testing.T) {
	s := New(nil, nil, nil)
	records, err := s.parseFile(context.Background(), "broken.py", []byte("class Broken(\n    def oops(\n"))
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestUnquotePython(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"double", `"hello"`, "hello"},
		{"single", `'hello'`, "hello"},
		{"triple double", `"""multi line"""`, "multi line"},
		{"triple single", `'''multi line'''`, "multi line"},
		{"raw prefix", `r"C:\path"`, `C:\path`},
		{"fstring prefix", `f"hello"`, "hello"},
		{"byte raw prefix", `rb"data"`, "data"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, unquotePython(tc.raw))
		})
	}
}
