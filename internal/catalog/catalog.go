// Package catalog holds the pattern groups used for prompt classification
// and instruction routing.
//
// All matching in this package and its consumers is case-insensitive
// substring containment. Groups are ordered and checked first-match-wins;
// the order of the groups themselves (require-user before critical-impact
// before auto-approve before auto-decline) is enforced by the classifier,
// not here.
package catalog

import "strings"

// Catalog is the process-wide classification configuration.
//
// A Catalog is immutable after construction: New copies every slice it is
// given, and no method mutates the receiver. Substitute an alternate
// catalog in tests by constructing one with New.
type Catalog struct {
	requireUser []string
	autoApprove []string
	autoDecline []string
	critical    []string
	triggers    []string
	prefixes    []string
	keywords    []string
}

// Groups carries the raw pattern lists used to build a Catalog.
type Groups struct {
	// RequireUser patterns force escalation regardless of any other match.
	RequireUser []string `toml:"require_user"`
	// AutoApprove patterns are safe to auto-confirm.
	AutoApprove []string `toml:"auto_approve"`
	// AutoDecline patterns are auto-negated.
	AutoDecline []string `toml:"auto_decline"`
	// Critical is the destructive-action vocabulary. It only sets the
	// critical-impact flag; it is not one of the three decision groups.
	Critical []string `toml:"critical_vocabulary"`
	// Triggers decide whether a captured line is a prompt at all.
	Triggers []string `toml:"prompt_triggers"`
	// Prefixes are assistant-intent instruction prefixes for routing.
	Prefixes []string `toml:"assistant_prefixes"`
	// Keywords are the code keywords for the "how to" routing rule.
	Keywords []string `toml:"code_keywords"`
}

// New builds a Catalog from the given groups. Every pattern is lowercased
// once here so matching never re-normalizes.
func New(g Groups) *Catalog {
	return &Catalog{
		requireUser: lowerCopy(g.RequireUser),
		autoApprove: lowerCopy(g.AutoApprove),
		autoDecline: lowerCopy(g.AutoDecline),
		critical:    lowerCopy(g.Critical),
		triggers:    lowerCopy(g.Triggers),
		prefixes:    lowerCopy(g.Prefixes),
		keywords:    lowerCopy(g.Keywords),
	}
}

// Default returns the builtin catalog.
//
// Destructive phrases ("delete file", "force push", ...) live in the
// require-user group rather than auto-decline: escalating to a human is
// strictly safer than silently answering no.
func Default() *Catalog {
	return New(Groups{
		RequireUser: []string{
			"api key",
			"password",
			"credential",
			"authentication",
			"secret",
			"token",
			"delete file",
			"remove file",
			"overwrite existing",
			"force push",
		},
		AutoApprove: []string{
			"do you want to create a claude.md file",
			"would you like me to commit these changes",
			"do you want me to add comments to this code",
			"start a new session",
			"do you want to see more examples",
		},
		AutoDecline: []string{
			"clear all settings",
			"erase",
		},
		Critical: []string{
			"delete",
			"remove",
			"overwrite",
			"permanent",
			"force",
		},
		Triggers: []string{
			"do you want to",
			"would you like to",
			"proceed with",
			"are you sure",
			"[y/n]",
			"(y/n)",
			"yes/no",
			"please select:",
			"enter your api key",
			"provide your password",
			"authentication token",
		},
		Prefixes: []string{
			"explain",
			"analyze",
			"summarize",
			"refactor",
			"optimize",
			"document",
			"find bug",
			"fix bug",
			"add test",
			"implement",
			"create function",
			"improve",
			"rewrite",
			"debug",
			"add comments",
		},
		Keywords: []string{
			"function",
			"class",
			"method",
			"api",
			"interface",
			"code",
			"script",
		},
	})
}

// MatchRequireUser reports whether text contains a require-user pattern,
// returning the first pattern that matched.
func (c *Catalog) MatchRequireUser(text string) (string, bool) {
	return matchAny(text, c.requireUser)
}

// MatchAutoApprove reports whether text contains an auto-approve pattern.
func (c *Catalog) MatchAutoApprove(text string) (string, bool) {
	return matchAny(text, c.autoApprove)
}

// MatchAutoDecline reports whether text contains an auto-decline pattern.
func (c *Catalog) MatchAutoDecline(text string) (string, bool) {
	return matchAny(text, c.autoDecline)
}

// MatchCritical reports whether text contains a destructive-action word.
func (c *Catalog) MatchCritical(text string) (string, bool) {
	return matchAny(text, c.critical)
}

// MatchTrigger reports whether text contains a prompt trigger phrase.
func (c *Catalog) MatchTrigger(text string) (string, bool) {
	return matchAny(text, c.triggers)
}

// MatchPrefix reports whether the instruction starts with an
// assistant-intent prefix.
func (c *Catalog) MatchPrefix(instruction string) (string, bool) {
	lower := strings.ToLower(instruction)
	for _, p := range c.prefixes {
		if strings.HasPrefix(lower, p) {
			return p, true
		}
	}
	return "", false
}

// MatchKeyword reports whether text contains a code keyword.
func (c *Catalog) MatchKeyword(text string) (string, bool) {
	return matchAny(text, c.keywords)
}

// Groups returns a copy of the pattern lists, suitable for export.
func (c *Catalog) Groups() Groups {
	return Groups{
		RequireUser: append([]string(nil), c.requireUser...),
		AutoApprove: append([]string(nil), c.autoApprove...),
		AutoDecline: append([]string(nil), c.autoDecline...),
		Critical:    append([]string(nil), c.critical...),
		Triggers:    append([]string(nil), c.triggers...),
		Prefixes:    append([]string(nil), c.prefixes...),
		Keywords:    append([]string(nil), c.keywords...),
	}
}

// Extend returns a new Catalog with extra patterns appended to each group.
// The receiver is not modified. Builtin patterns keep their position so
// first-match-wins ordering stays stable.
func (c *Catalog) Extend(extra Groups) *Catalog {
	base := c.Groups()
	return New(Groups{
		RequireUser: append(base.RequireUser, extra.RequireUser...),
		AutoApprove: append(base.AutoApprove, extra.AutoApprove...),
		AutoDecline: append(base.AutoDecline, extra.AutoDecline...),
		Critical:    append(base.Critical, extra.Critical...),
		Triggers:    append(base.Triggers, extra.Triggers...),
		Prefixes:    append(base.Prefixes, extra.Prefixes...),
		Keywords:    append(base.Keywords, extra.Keywords...),
	})
}

func matchAny(text string, patterns []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	return "", false
}

func lowerCopy(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(strings.ToLower(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
