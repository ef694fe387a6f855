package classification

import (
	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/cases"
)

// Rule is a keyword-triggered short circuit. A rule fires when the folded
// description contains any of its keywords as a substring.
type Rule struct {
	Name       string
	Category   string
	Department string
	Summary    string
	Keywords   []string
}

// DefaultRules returns the built-in rule tiers in precedence order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "utilities",
			Keywords:   []string{"water", "leak", "pipe", "flooding", "sewage", "drain"},
			Category:   "Water/Utilities",
			Department: "Utilities Department",
			Summary:    "Water or plumbing issue detected",
		},
		{
			Name:       "traffic",
			Keywords:   []string{"pothole", "road", "street light", "broken light", "traffic"},
			Category:   "Traffic/Infrastructure",
			Department: "Traffic Department",
			Summary:    "Road or traffic infrastructure issue",
		},
		{
			Name:       "sanitation",
			Keywords:   []string{"garbage", "trash", "litter", "waste", "dirty"},
			Category:   "Sanitation",
			Department: "Sanitation Department",
			Summary:    "Garbage or waste management issue",
		},
	}
}

// ruleSet matches every rule keyword in a single pass and reports the
// earliest rule that fired.
type ruleSet struct {
	matcher *ahocorasick.Matcher
	rules   []Rule
	owner   []int // keyword index -> rule index
}

func newRuleSet(rules []Rule) *ruleSet {
	rs := &ruleSet{rules: rules}

	var keywords []string
	seen := make(map[string]bool)
	for i, rule := range rules {
		for _, kw := range rule.Keywords {
			folded := fold(kw)
			// A keyword shared by two rules always resolves to the earlier one.
			if folded == "" || seen[folded] {
				continue
			}
			seen[folded] = true
			keywords = append(keywords, folded)
			rs.owner = append(rs.owner, i)
		}
	}

	if len(keywords) > 0 {
		rs.matcher = ahocorasick.NewStringMatcher(keywords)
	}
	return rs
}

// match returns the highest-precedence rule found in normalized text.
func (rs *ruleSet) match(normalized string) (Rule, bool) {
	if rs.matcher == nil || normalized == "" {
		return Rule{}, false
	}

	best := -1
	for _, hit := range rs.matcher.MatchThreadSafe([]byte(normalized)) {
		if hit < 0 || hit >= len(rs.owner) {
			continue
		}
		if ruleIdx := rs.owner[hit]; best == -1 || ruleIdx < best {
			best = ruleIdx
		}
	}

	if best == -1 {
		return Rule{}, false
	}
	return rs.rules[best], true
}

// fold produces the case-insensitive comparable form of s.
// A new Caser is created per call because Casers are not safe for concurrent use.
func fold(s string) string {
	return cases.Fold().String(s)
}
