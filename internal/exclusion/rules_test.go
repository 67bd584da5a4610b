package exclusion

import "testing"

var testPath = []string{
	"something/test.go",
	"something/something.go",
	"internal/test.go",
}

func TestRules_IsExcluded(t *testing.T) {
	t.Run("must exclude files by regexp", func(t *testing.T) {
		rules, err := New([]string{"test", "internal"})
		if err != nil || countTrue(testPath, rules.IsExcluded) != 2 {
			t.Error("must match 2 paths")
		}
	})

	t.Run("must return parsing error", func(t *testing.T) {
		rules, err := New([]string{"test", "internal[[["})
		if err == nil || rules != nil {
			t.Error("must return error")
		}
	})

	t.Run("no rules", func(t *testing.T) {
		rules, err := New(nil)
		if err != nil || len(rules) != 0 {
			t.Error("must return empty rules")
		}
		if countTrue(testPath, rules.IsExcluded) != 0 {
			t.Error("must not match any")
		}
	})
}

func countTrue(ss []string, f func(s string) bool) int {
	count := 0
	for _, s := range ss {
		if f(s) {
			count++
		}
	}
	return count
}
