package coverage

const (
	linePercent   = "line_percent"
	branchPercent = "branch_percent"
	lineCovered   = "line_covered"
	lineTotal     = "line_total"
	branchCovered = "branch_covered"
	branchTotal   = "branch_total"
)

// fieldLayout tells how a strategy turns report fields into percentages.
type fieldLayout int

const (
	// percentFields carries ready percentages.
	percentFields fieldLayout = iota
	// ratioFields carries covered and total counts.
	ratioFields
)

// strategy is one place in a JSON report where coverage figures may live.
// An empty scope means the top level of the document.
type strategy struct {
	name   string
	scope  string
	layout fieldLayout
}

// strategies are tried in order and the first one whose fields are present wins.
var strategies = []strategy{
	{name: "direct", layout: percentFields},
	{name: "root", scope: "root", layout: ratioFields},
	{name: "summary", scope: "summary", layout: percentFields},
}

func (s strategy) fields() []string {
	if s.layout == ratioFields {
		return []string{lineCovered, lineTotal, branchCovered, branchTotal}
	}
	return []string{linePercent, branchPercent}
}

func (s strategy) qualify(field string) string {
	if s.scope == "" {
		return field
	}
	return s.scope + "." + field
}
