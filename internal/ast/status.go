package ast

// Status is the outcome of executing a step. A step starts Unstarted and
// moves to exactly one of the other values at most once.
type Status int

const (
	StatusUnstarted Status = iota
	StatusPassed
	StatusFailed
	StatusSkipped
	StatusUndefined
	StatusPending
)

var statusNames = [...]string{"", "passed", "failed", "skipped", "undefined", "pending"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// ParseStatus is the inverse of String for terminal statuses.
func ParseStatus(name string) (Status, bool) {
	for i, n := range statusNames {
		if n != "" && n == name {
			return Status(i), true
		}
	}
	return StatusUnstarted, false
}

// Terminal reports whether the status has been decided.
func (s Status) Terminal() bool {
	return s != StatusUnstarted
}

// severity orders statuses for summarising several steps into one.
var severity = map[Status]int{
	StatusUnstarted: 0,
	StatusPassed:    1,
	StatusSkipped:   2,
	StatusPending:   3,
	StatusUndefined: 4,
	StatusFailed:    5,
}

// Worst returns whichever of a and b is the more severe outcome.
func Worst(a, b Status) Status {
	if severity[b] > severity[a] {
		return b
	}
	return a
}

// Keyword is the Given/When/Then/And/But prefix of a step.
type Keyword string

const (
	Given Keyword = "Given"
	When  Keyword = "When"
	Then  Keyword = "Then"
	And   Keyword = "And"
	But   Keyword = "But"
)

var keywords = []Keyword{Given, When, Then, And, But}

// ParseKeyword recognises a step keyword at the start of a trimmed line and
// returns it with the remaining step text.
func ParseKeyword(line string) (Keyword, string, bool) {
	for _, kw := range keywords {
		k := string(kw)
		if len(line) > len(k) && line[:len(k)] == k && (line[len(k)] == ' ' || line[len(k)] == '\t') {
			return kw, trimLeft(line[len(k):]), true
		}
	}
	return "", "", false
}

func trimLeft(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	return s
}
