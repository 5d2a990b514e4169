package threat

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule names, in evaluation order.
const (
	RuleIPHost          = "ip_host"
	RuleLongURL         = "long_url"
	RuleAtSymbol        = "at_symbol"
	RuleNoHTTPS         = "no_https"
	RuleKeyword         = "keyword"
	RuleSubdomains      = "subdomains"
	RuleDigitsInHost    = "digits_in_host"
	RuleHyphenInHost    = "hyphen_in_host"
	RuleShortener       = "shortener"
	RuleSlashes         = "slashes"
	RuleImpersonation   = "impersonation"
	RuleDomainStructure = "domain_structure"
	RuleSuspiciousTLD   = "suspicious_tld"
	RuleMisspelling     = "misspelling"
)

const (
	reasonIPHost          = "Uses IP address instead of domain name"
	reasonLongURL         = "Unusually long URL"
	reasonAtSymbol        = "Contains @ symbol - hides real destination"
	reasonNoHTTPS         = "Not using HTTPS"
	reasonSubdomains      = "Too many subdomains"
	reasonDigitsInHost    = "Contains numbers in domain"
	reasonHyphenInHost    = "Contains hyphens in domain"
	reasonSlashes         = "Multiple redirects"
	reasonDomainStructure = "Unusual domain structure"
)

const (
	// subdomainDots is the dot count a host must exceed to have too many subdomains.
	subdomainDots = 3
	// structureDots is the dot count at which a host's structure is unusual.
	structureDots = 3
)

// ipv4Pattern matches any decimal digit, not only ASCII, like ruleDigitsInHost.
var ipv4Pattern = regexp.MustCompile(`\p{Nd}{1,3}\.\p{Nd}{1,3}\.\p{Nd}{1,3}\.\p{Nd}{1,3}`)

func defaultRules() []rule {
	return []rule{
		{RuleIPHost, ruleIPHost},
		{RuleLongURL, ruleLongURL},
		{RuleAtSymbol, ruleAtSymbol},
		{RuleNoHTTPS, ruleNoHTTPS},
		{RuleKeyword, ruleKeywords},
		{RuleSubdomains, ruleSubdomains},
		{RuleDigitsInHost, ruleDigitsInHost},
		{RuleHyphenInHost, ruleHyphenInHost},
		{RuleShortener, ruleShortener},
		{RuleSlashes, ruleSlashes},
		{RuleImpersonation, ruleImpersonation},
		{RuleDomainStructure, ruleDomainStructure},
		{RuleSuspiciousTLD, ruleSuspiciousTLD},
		{RuleMisspelling, ruleMisspelling},
	}
}

// ── Rules over the raw URL ──────────────────────────────────────────────────

func ruleLongURL(rs *RuleSet, t *target) []finding {
	if utf8.RuneCountInString(t.raw) <= rs.LongURLLength {
		return nil
	}
	return []finding{{points: rs.Weights.LongURL, reason: reasonLongURL}}
}

func ruleAtSymbol(rs *RuleSet, t *target) []finding {
	if !strings.Contains(t.raw, "@") {
		return nil
	}
	return []finding{{points: rs.Weights.AtSymbol, reason: reasonAtSymbol}}
}

// ruleKeywords adds points for every distinct keyword in the URL but only
// describes the first MaxKeywordReasons of them.
func ruleKeywords(rs *RuleSet, t *target) []finding {
	var findings []finding
	for _, kw := range rs.Keywords {
		if !strings.Contains(t.full, kw) {
			continue
		}
		f := finding{points: rs.Weights.Keyword}
		if len(findings) < rs.MaxKeywordReasons {
			f.reason = fmt.Sprintf("Contains suspicious word: '%s'", kw)
		}
		findings = append(findings, f)
	}
	return findings
}

func ruleSlashes(rs *RuleSet, t *target) []finding {
	if strings.Count(t.raw, "/") <= rs.MaxSlashes {
		return nil
	}
	return []finding{{points: rs.Weights.Slashes, reason: reasonSlashes}}
}

// ── Rules over the parsed URL ───────────────────────────────────────────────

func ruleIPHost(rs *RuleSet, t *target) []finding {
	if !ipv4Pattern.MatchString(t.host) {
		return nil
	}
	return []finding{{points: rs.Weights.IPHost, reason: reasonIPHost}}
}

func ruleNoHTTPS(rs *RuleSet, t *target) []finding {
	if !t.parsed || t.scheme == "https" {
		return nil
	}
	return []finding{{points: rs.Weights.NoHTTPS, reason: reasonNoHTTPS}}
}

func ruleSubdomains(rs *RuleSet, t *target) []finding {
	if strings.Count(t.host, ".") <= subdomainDots {
		return nil
	}
	return []finding{{points: rs.Weights.Subdomains, reason: reasonSubdomains}}
}

func ruleDigitsInHost(rs *RuleSet, t *target) []finding {
	if strings.IndexFunc(t.host, unicode.IsDigit) < 0 {
		return nil
	}
	return []finding{{points: rs.Weights.DigitsInHost, reason: reasonDigitsInHost}}
}

func ruleHyphenInHost(rs *RuleSet, t *target) []finding {
	if !strings.Contains(t.host, "-") {
		return nil
	}
	return []finding{{points: rs.Weights.HyphenInHost, reason: reasonHyphenInHost}}
}

func ruleShortener(rs *RuleSet, t *target) []finding {
	s, ok := firstContained(t.host, rs.Shorteners)
	if !ok {
		return nil
	}
	return []finding{{points: rs.Weights.Shortener, reason: "Uses URL shortener: " + s}}
}

// ruleImpersonation flags a brand name that appears in the host somewhere
// other than its leading label, when the host also carries a lure word.
func ruleImpersonation(rs *RuleSet, t *target) []finding {
	if t.host == "" {
		return nil
	}
	if _, ok := firstContained(t.host, rs.BrandContext); !ok {
		return nil
	}
	lead := t.leadingLabel()
	for _, brand := range rs.Brands {
		if brand != lead && strings.Contains(t.host, brand) {
			return []finding{{
				points: rs.Weights.Impersonation,
				reason: fmt.Sprintf("Possible %s impersonation", brand),
			}}
		}
	}
	return nil
}

// ruleDomainStructure overlaps ruleSubdomains. Both add points; its reason is
// omitted once the subdomain reason is present.
func ruleDomainStructure(rs *RuleSet, t *target) []finding {
	if strings.Count(t.host, ".") < structureDots {
		return nil
	}
	return []finding{{
		points: rs.Weights.DomainStructure,
		reason: reasonDomainStructure,
		unless: reasonSubdomains,
	}}
}

func ruleSuspiciousTLD(rs *RuleSet, t *target) []finding {
	if t.host == "" {
		return nil
	}
	for _, tld := range rs.SuspiciousTLDs {
		if strings.HasSuffix(t.host, tld) {
			return []finding{{points: rs.Weights.SuspiciousTLD, reason: "Suspicious TLD: " + tld}}
		}
	}
	return nil
}

func ruleMisspelling(rs *RuleSet, t *target) []finding {
	m, ok := firstContained(t.host, rs.Misspellings)
	if !ok {
		return nil
	}
	return []finding{{points: rs.Weights.Misspelling, reason: "Misspelled brand name: " + m}}
}

// firstContained returns the first needle, in list order, found in s.
func firstContained(s string, needles []string) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, n := range needles {
		if strings.Contains(s, n) {
			return n, true
		}
	}
	return "", false
}
