// Package perm decides whether scripts may touch the outside world. Rules
// are matched against a capability name and an optional resource; the
// ambient context carries the active rule set so natives can check without
// threading it through every call.
package perm

import (
	"path"
	"path/filepath"
	"strings"
)

// Policy is the fallback when no rule matches.
type Policy string

const (
	PolicyAllow Policy = "allow"
	PolicyDeny  Policy = "deny"
	PolicyAsk   Policy = "ask"
)

// Check is the outcome of evaluating a capability against the rules.
type Check int

const (
	CheckAllow Check = iota
	CheckDeny
	CheckAsk
)

func (c Check) String() string {
	switch c {
	case CheckAllow:
		return "allow"
	case CheckDeny:
		return "deny"
	case CheckAsk:
		return "ask"
	default:
		return "unknown"
	}
}

// Permissions is a default policy plus allow/ask/deny rule lists. Rules
// have the form "op" or "op:pattern"; the operation side accepts "*" and
// "prefix.*", the pattern side accepts globs, "*.host" suffixes and URL
// hosts.
type Permissions struct {
	Policy Policy   `toml:"policy"`
	Allow  []string `toml:"allow"`
	Ask    []string `toml:"ask"`
	Deny   []string `toml:"deny"`
}

// None denies everything by default.
func None() *Permissions {
	return &Permissions{Policy: PolicyDeny}
}

// All allows everything by default.
func All() *Permissions {
	return &Permissions{Policy: PolicyAllow}
}

// AskAll prompts for everything by default.
func AskAll() *Permissions {
	return &Permissions{Policy: PolicyAsk}
}

// CheckOp evaluates a capability. resource is "" for resource-free
// operations. Priority: deny > ask > allow > policy.
func (p *Permissions) CheckOp(operation, resource string) Check {
	if matchesAny(p.Deny, operation, resource) {
		return CheckDeny
	}
	if matchesAny(p.Ask, operation, resource) {
		return CheckAsk
	}
	if matchesAny(p.Allow, operation, resource) {
		return CheckAllow
	}
	switch p.Policy {
	case PolicyAllow:
		return CheckAllow
	case PolicyAsk:
		return CheckAsk
	default:
		return CheckDeny
	}
}

func matchesAny(rules []string, operation, resource string) bool {
	for _, rule := range rules {
		if matchesRule(rule, operation, resource) {
			return true
		}
	}
	return false
}

func matchesRule(rule, operation, resource string) bool {
	ruleOp, rulePattern, hasPattern := strings.Cut(rule, ":")
	if hasPattern {
		if !matchesOperation(ruleOp, operation) {
			return false
		}
		if resource == "" {
			return rulePattern == "*"
		}
		return matchesPattern(rulePattern, resource)
	}
	return matchesOperation(rule, operation) && resource == ""
}

func matchesOperation(ruleOp, operation string) bool {
	if ruleOp == "*" {
		return true
	}
	if strings.HasSuffix(ruleOp, ".*") {
		prefix := ruleOp[:len(ruleOp)-1]
		return strings.HasPrefix(operation, prefix)
	}
	return ruleOp == operation
}

func matchesPattern(pattern, value string) bool {
	if pattern == "*" {
		return true
	}

	if strings.HasPrefix(pattern, "*.") {
		suffix := pattern[1:]
		host := extractHost(value)
		return strings.HasSuffix(host, suffix) || host == pattern[2:]
	}

	if strings.Contains(pattern, "*") {
		if ok, err := path.Match(pattern, value); err == nil && ok {
			return true
		}
		prefix := strings.TrimRight(pattern, "*")
		if prefix != "" && strings.HasPrefix(value, prefix) {
			return true
		}
	}

	if isURL(value) {
		return extractHost(value) == pattern
	}

	return pattern == value
}

// CheckFsRead and friends name the closed capability set.

func (p *Permissions) CheckFsRead(path string) Check {
	return p.CheckOp("fs.read", path)
}

func (p *Permissions) CheckFsWrite(path string) Check {
	return p.CheckOp("fs.write", path)
}

func (p *Permissions) CheckFsDelete(path string) Check {
	return p.CheckOp("fs.delete", path)
}

func (p *Permissions) CheckHTTP(url string) Check {
	return p.CheckOp("net.http", url)
}

func (p *Permissions) CheckWS(url string) Check {
	return p.CheckOp("net.ws", url)
}

// CheckProcessRun checks the full binary path, falling back to its basename
// so "process.run:git" also covers "/usr/bin/git".
func (p *Permissions) CheckProcessRun(binary string) Check {
	binName := filepath.Base(binary)

	check := p.CheckOp("process.run", binary)
	if check == CheckAllow {
		return check
	}
	if binary != binName {
		if nameCheck := p.CheckOp("process.run", binName); nameCheck == CheckAllow {
			return nameCheck
		}
	}
	return check
}

func (p *Permissions) CheckProcessShell() Check {
	return p.CheckOp("process.shell", "")
}

func (p *Permissions) CheckEnvRead(name string) Check {
	return p.CheckOp("env.read", name)
}

func (p *Permissions) CheckEnvWrite() Check {
	return p.CheckOp("env.write", "")
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "ws://") ||
		strings.HasPrefix(s, "wss://")
}

func extractHost(url string) string {
	withoutScheme := url
	for _, scheme := range []string{"https://", "http://", "wss://", "ws://"} {
		if strings.HasPrefix(url, scheme) {
			withoutScheme = url[len(scheme):]
			break
		}
	}
	host, _, _ := strings.Cut(withoutScheme, "/")
	host, _, _ = strings.Cut(host, ":")
	return host
}
