package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RenderTrace renders a result as stable text: a header, then one line per
// command (">") and reply ("<") with its seq and quoted text.
//
//	scenario: echo_basic
//	engine: echo
//	[1] > "hello"
//	[2] < "hello"
func RenderTrace(scenarioName, engineName string, result *Result) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scenario: %s\n", scenarioName)
	fmt.Fprintf(&sb, "engine: %s\n", engineName)
	for _, l := range result.Commands {
		fmt.Fprintf(&sb, "[%d] > %q\n", l.Seq, l.Text)
	}
	for _, l := range result.Replies {
		fmt.Fprintf(&sb, "[%d] < %q\n", l.Seq, l.Text)
	}
	return []byte(sb.String())
}

// RunWithGolden executes a scenario and compares the rendered trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if scenario execution fails. A trace mismatch fails t.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, RenderTrace(scenario.Name, scenario.Engine, result))

	return result, nil
}
