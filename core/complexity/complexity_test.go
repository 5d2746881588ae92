package complexity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeyadhassan/codepulse/schema"
)

const javaScore = `public int score(int a) {
    if (a > 0) {
        return 1;
    }
    for (int i = 0; i < a; i++) {
        a--;
    }
    return a;
}`

const pythonProcess = `def process(items):
    for item in items:
        if item and item.ok:
            print(item)
        elif item:
            pass
    return None

def simple():
    return 1`

func TestCalculateBraceFamily(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		want      []schema.ComplexityIssue
	}{
		{
			name:      "at threshold is included",
			threshold: 3,
			want: []schema.ComplexityIssue{{
				Line: 0, Complexity: 3, FunctionName: "score",
				Message: "Block 'score' has high cyclomatic complexity (3)",
			}},
		},
		{
			name:      "below threshold is excluded",
			threshold: 4,
			want:      []schema.ComplexityIssue{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Calculate(javaScore, schema.Java, tt.threshold))
		})
	}
}

func TestCalculateBraceSkipsCommentsAndUnclosed(t *testing.T) {
	text := "void f() {\n    // if for while switch\n    return;\n}"
	issues := Calculate(text, schema.C, 1)
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Complexity)
	assert.Equal(t, "f", issues[0].FunctionName)

	unclosed := "void g() {\n    if (x) {\n        y();\n"
	assert.Empty(t, Calculate(unclosed, schema.CPP, 1))
}

func TestCalculateCSharpUsesBraceStrategy(t *testing.T) {
	text := "public void Run() {\n    if (a) { }\n}"
	issues := Calculate(text, schema.CSharp, 2)
	require.Len(t, issues, 1)
	assert.Equal(t, "Block 'Run' has high cyclomatic complexity (2)", issues[0].Message)
}

func TestCalculateScriptFamily(t *testing.T) {
	text := "const pick = (x) => x > 0 ? x : 0;"

	issues := Calculate(text, schema.TypeScript, 2)
	require.Len(t, issues, 1)
	assert.Equal(t, schema.ComplexityIssue{
		Line: 0, Complexity: 2, FunctionName: "pick",
		Message: "Function 'pick' has high cyclomatic complexity (2)",
	}, issues[0])

	assert.Empty(t, Calculate(text, schema.JavaScript, 3))
}

func TestCalculateScriptNestedBlocks(t *testing.T) {
	text := `function check(a, b) {
  if (a && b) {
    return 1;
  }
  return 0;
}`
	issues := Calculate(text, schema.JavaScriptReact, 3)

	names := make([]string, 0, len(issues))
	for _, is := range issues {
		names = append(names, is.FunctionName)
		assert.Equal(t, 3, is.Complexity)
	}
	// The declaration matches both the function and method patterns, and the
	// conditional line looks like a call followed by a brace.
	assert.Equal(t, []string{"check", "check", "if"}, names)
}

func TestCalculateScriptSkipsComments(t *testing.T) {
	text := "function f() {\n  // if (a && b) {\n  /* while (x) */\n  * case 1\n}"
	issues := Calculate(text, schema.JavaScript, 1)
	for _, is := range issues {
		assert.Equal(t, 1, is.Complexity)
	}
}

func TestCalculateIndentFamily(t *testing.T) {
	issues := Calculate(pythonProcess, schema.Python, 4)
	require.Len(t, issues, 1)
	assert.Equal(t, schema.ComplexityIssue{
		Line: 0, Complexity: 4, FunctionName: "process",
		Message: "Function 'process' has high cyclomatic complexity (4)",
	}, issues[0])

	all := Calculate(pythonProcess, schema.Python, 1)
	require.Len(t, all, 2)
	assert.Equal(t, "simple", all[1].FunctionName)
	assert.Equal(t, 1, all[1].Complexity)
	assert.Equal(t, 8, all[1].Line)
}

func TestCalculateIndentFamilyDedentEndsFunction(t *testing.T) {
	text := "def a():\n    if x:\n        pass\ny = 1\nif y:\n    pass"
	issues := Calculate(text, schema.Python, 1)
	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].Complexity)
}

func TestCalculateEdgeCases(t *testing.T) {
	for _, lang := range []schema.Language{schema.JavaScript, schema.Python, schema.Java, schema.CSharp, schema.Unknown} {
		issues := Calculate("", lang, 10)
		assert.NotNil(t, issues)
		assert.Empty(t, issues)
	}

	plain := strings.Repeat("x = 1\n", 60)
	assert.Empty(t, Calculate(plain, schema.Python, 10))
}

func FuzzCalculate(f *testing.F) {
	f.Add(javaScore, "java", 3)
	f.Add(pythonProcess, "python", 1)
	f.Add("const a = () => b ? c : d;", "typescript", 0)
	f.Add("}}}{{{", "c", -5)

	f.Fuzz(func(t *testing.T, text string, lang string, threshold int) {
		issues := Calculate(text, schema.Language(lang), threshold)
		require.NotNil(t, issues)
		for _, is := range issues {
			assert.GreaterOrEqual(t, is.Complexity, threshold)
			assert.GreaterOrEqual(t, is.Complexity, 1)
			assert.GreaterOrEqual(t, is.Line, 0)
		}
	})
}
