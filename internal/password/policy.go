// Package password implements credential hashing and the configurable
// password strength policy used at registration and password reset.
package password

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Rule names accepted in configuration
const (
	RuleMinimumLength  = "min_length"
	RuleNumeric        = "numeric"
	RuleSimilarity     = "similarity"
	RuleCommonPassword = "common"
)

// DefaultRules is the rule set used when none is configured
var DefaultRules = []string{RuleMinimumLength, RuleNumeric, RuleSimilarity, RuleCommonPassword}

const (
	DefaultMinLength     = 8
	DefaultMaxSimilarity = 0.7
)

var ErrUnknownRule = errors.New("unknown password rule")

//go:embed common_passwords.txt
var commonPasswordsList string

var attributeSplitter = regexp.MustCompile(`\W+`)

// Attributes are the account values a password must not resemble
type Attributes struct {
	Username string
	Email    string
}

// Rule checks one aspect of password strength and returns a user-facing
// message when the password fails it
type Rule interface {
	Name() string
	Check(password string, attrs Attributes) (string, bool)
}

// Policy is an ordered list of rules; every failing rule is reported
type Policy struct {
	rules []Rule
}

// PolicyConfig lists the enabled rules explicitly
type PolicyConfig struct {
	Rules         []string
	MinLength     int
	MaxSimilarity float64
}

// NewPolicy builds a policy from configuration, rejecting unknown rule names
func NewPolicy(cfg PolicyConfig) (*Policy, error) {
	names := cfg.Rules
	if len(names) == 0 {
		names = DefaultRules
	}
	minLength := cfg.MinLength
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	maxSimilarity := cfg.MaxSimilarity
	if maxSimilarity <= 0 {
		maxSimilarity = DefaultMaxSimilarity
	}

	rules := make([]Rule, 0, len(names))
	for _, name := range names {
		switch strings.TrimSpace(name) {
		case RuleMinimumLength:
			rules = append(rules, minimumLength{min: minLength})
		case RuleNumeric:
			rules = append(rules, numeric{})
		case RuleSimilarity:
			rules = append(rules, similarity{max: maxSimilarity})
		case RuleCommonPassword:
			rules = append(rules, newCommonPassword(commonPasswordsList))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
		}
	}

	return &Policy{rules: rules}, nil
}

// Rules returns the names of the enabled rules in order
func (p *Policy) Rules() []string {
	names := make([]string, len(p.rules))
	for i, r := range p.rules {
		names[i] = r.Name()
	}
	return names
}

// Validate returns every message produced by failing rules, or nil
func (p *Policy) Validate(password string, attrs Attributes) []string {
	var problems []string
	for _, r := range p.rules {
		if msg, ok := r.Check(password, attrs); !ok {
			problems = append(problems, msg)
		}
	}
	return problems
}

type minimumLength struct {
	min int
}

func (r minimumLength) Name() string { return RuleMinimumLength }

func (r minimumLength) Check(password string, _ Attributes) (string, bool) {
	if len([]rune(password)) < r.min {
		return fmt.Sprintf("This password is too short. It must contain at least %d characters.", r.min), false
	}
	return "", true
}

type numeric struct{}

func (numeric) Name() string { return RuleNumeric }

func (numeric) Check(password string, _ Attributes) (string, bool) {
	if password == "" {
		return "", true
	}
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return "", true
		}
	}
	return "This password is entirely numeric.", false
}

type similarity struct {
	max float64
}

func (similarity) Name() string { return RuleSimilarity }

func (r similarity) Check(password string, attrs Attributes) (string, bool) {
	pw := strings.ToLower(password)
	checks := []struct{ field, value string }{
		{"username", attrs.Username},
		{"email address", attrs.Email},
	}
	for _, c := range checks {
		field, value := c.field, strings.ToLower(c.value)
		if value == "" {
			continue
		}
		parts := append(attributeSplitter.Split(value, -1), value)
		for _, part := range parts {
			if part == "" {
				continue
			}
			if similarityRatio(pw, part) >= r.max {
				return fmt.Sprintf("The password is too similar to the %s.", field), false
			}
		}
	}
	return "", true
}

// similarityRatio approximates difflib's ratio: 2*M/T where M counts
// characters in recursively matched longest common blocks
func similarityRatio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingChars(a, b)) / float64(total)
}

func matchingChars(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	i, j, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingChars(a[:i], b[:j]) + matchingChars(a[i+size:], b[j+size:])
}

func longestCommonBlock(a, b string) (int, int, int) {
	bestI, bestJ, bestSize := 0, 0, 0
	prev := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		cur := make([]int, len(b)+1)
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > bestSize {
					bestI, bestJ, bestSize = i-cur[j], j-cur[j], cur[j]
				}
			}
		}
		prev = cur
	}
	return bestI, bestJ, bestSize
}

type commonPassword struct {
	passwords map[string]struct{}
}

func newCommonPassword(list string) commonPassword {
	passwords := make(map[string]struct{})
	for _, line := range strings.Split(list, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			passwords[strings.ToLower(line)] = struct{}{}
		}
	}
	return commonPassword{passwords: passwords}
}

func (commonPassword) Name() string { return RuleCommonPassword }

func (r commonPassword) Check(password string, _ Attributes) (string, bool) {
	if _, found := r.passwords[strings.ToLower(strings.TrimSpace(password))]; found {
		return "This password is too common.", false
	}
	return "", true
}
