package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It carries the reply trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Replies  []TraceLine
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nReplies:\n")
	for _, l := range e.Replies {
		fmt.Fprintf(&buf, "  [%d] %q\n", l.Seq, l.Text)
	}
	return buf.String()
}

// EvaluateAssertions runs all assertions and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		if err := evaluate(result.Replies, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluate(replies []TraceLine, a Assertion) error {
	switch a.Type {
	case AssertReplyContains:
		return assertReplyContains(replies, a)
	case AssertReplyEquals:
		return assertReplyEquals(replies, a)
	case AssertReplyOrder:
		return assertReplyOrder(replies, a)
	case AssertReplyCount:
		return assertReplyCount(replies, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertReplyContains checks that some reply contains a.Text.
func assertReplyContains(replies []TraceLine, a Assertion) error {
	for _, l := range replies {
		if strings.Contains(l.Text, a.Text) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertReplyContains,
		Expected: fmt.Sprintf("a reply containing %q", a.Text),
		Actual:   "not found",
		Replies:  replies,
	}
}

// assertReplyEquals checks that the replies are exactly a.Lines.
func assertReplyEquals(replies []TraceLine, a Assertion) error {
	equal := len(replies) == len(a.Lines)
	for i := 0; equal && i < len(replies); i++ {
		equal = replies[i].Text == a.Lines[i]
	}
	if equal {
		return nil
	}
	return &AssertionError{
		Type:     AssertReplyEquals,
		Expected: fmt.Sprintf("%q", a.Lines),
		Actual:   fmt.Sprintf("%q", texts(replies)),
		Replies:  replies,
	}
}

// assertReplyOrder checks that a.Lines appear in order. Other replies may
// appear in between.
func assertReplyOrder(replies []TraceLine, a Assertion) error {
	next := 0
	for _, l := range replies {
		if next < len(a.Lines) && l.Text == a.Lines[next] {
			next++
		}
	}
	if next == len(a.Lines) {
		return nil
	}
	return &AssertionError{
		Type:     AssertReplyOrder,
		Expected: fmt.Sprintf("%q in order", a.Lines),
		Actual:   fmt.Sprintf("matched up to %d, missing %q", next, a.Lines[next]),
		Replies:  replies,
	}
}

// assertReplyCount checks that exactly a.Count replies equal a.Text.
func assertReplyCount(replies []TraceLine, a Assertion) error {
	n := 0
	for _, l := range replies {
		if l.Text == a.Text {
			n++
		}
	}
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertReplyCount,
		Expected: fmt.Sprintf("%d replies equal to %q", a.Count, a.Text),
		Actual:   fmt.Sprintf("%d", n),
		Replies:  replies,
	}
}

func texts(lines []TraceLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}
