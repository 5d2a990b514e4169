package threat

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Weights holds the points each rule adds when it triggers.
type Weights struct {
	IPHost          int `mapstructure:"ip_host" json:"ip_host" validate:"gte=0"`
	LongURL         int `mapstructure:"long_url" json:"long_url" validate:"gte=0"`
	AtSymbol        int `mapstructure:"at_symbol" json:"at_symbol" validate:"gte=0"`
	NoHTTPS         int `mapstructure:"no_https" json:"no_https" validate:"gte=0"`
	Keyword         int `mapstructure:"keyword" json:"keyword" validate:"gte=0"`
	Subdomains      int `mapstructure:"subdomains" json:"subdomains" validate:"gte=0"`
	DigitsInHost    int `mapstructure:"digits_in_host" json:"digits_in_host" validate:"gte=0"`
	HyphenInHost    int `mapstructure:"hyphen_in_host" json:"hyphen_in_host" validate:"gte=0"`
	Shortener       int `mapstructure:"shortener" json:"shortener" validate:"gte=0"`
	Slashes         int `mapstructure:"slashes" json:"slashes" validate:"gte=0"`
	Impersonation   int `mapstructure:"impersonation" json:"impersonation" validate:"gte=0"`
	DomainStructure int `mapstructure:"domain_structure" json:"domain_structure" validate:"gte=0"`
	SuspiciousTLD   int `mapstructure:"suspicious_tld" json:"suspicious_tld" validate:"gte=0"`
	Misspelling     int `mapstructure:"misspelling" json:"misspelling" validate:"gte=0"`
}

// RuleSet is the data the rules evaluate against. List order matters:
// "first match" rules report the earliest entry that matches, and the keyword
// rule emits reasons for the earliest MaxKeywordReasons matches only.
type RuleSet struct {
	Weights Weights `mapstructure:"weights" json:"weights"`

	// LongURLLength is the length (in characters) a URL must exceed to count as long.
	LongURLLength int `mapstructure:"long_url_length" json:"long_url_length" validate:"gte=1"`

	// MaxSlashes is the number of '/' characters a URL may contain before it
	// is treated as a redirect chain.
	MaxSlashes int `mapstructure:"max_slashes" json:"max_slashes" validate:"gte=0"`

	// MaxKeywordReasons caps the reasons emitted by the keyword rule. Points
	// are still added for every matched keyword.
	MaxKeywordReasons int `mapstructure:"max_keyword_reasons" json:"max_keyword_reasons" validate:"gte=0"`

	// Lists are matched against the lowercased URL and host, so entries must
	// be lowercase. Misspellings is exempt to keep the legacy "appIe" entry.
	Keywords       []string `mapstructure:"keywords" json:"keywords" validate:"dive,required,lowercase"`
	Shorteners     []string `mapstructure:"shorteners" json:"shorteners" validate:"dive,required,lowercase"`
	Brands         []string `mapstructure:"brands" json:"brands" validate:"dive,required,lowercase"`
	BrandContext   []string `mapstructure:"brand_context" json:"brand_context" validate:"dive,required,lowercase"`
	SuspiciousTLDs []string `mapstructure:"suspicious_tlds" json:"suspicious_tlds" validate:"dive,required,lowercase"`
	Misspellings   []string `mapstructure:"misspellings" json:"misspellings" validate:"dive,required"`
}

// DefaultRuleSet returns the built-in weights and indicator lists.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Weights: Weights{
			IPHost:          30,
			LongURL:         20,
			AtSymbol:        25,
			NoHTTPS:         10,
			Keyword:         15,
			Subdomains:      15,
			DigitsInHost:    10,
			HyphenInHost:    10,
			Shortener:       20,
			Slashes:         15,
			Impersonation:   25,
			DomainStructure: 15,
			SuspiciousTLD:   10,
			Misspelling:     30,
		},
		LongURLLength:     75,
		MaxSlashes:        6,
		MaxKeywordReasons: 3,
		Keywords: []string{
			"login", "signin", "verify", "secure", "account",
			"update", "confirm", "banking", "password", "credential",
			"verification", "unlock", "restore", "limited", "suspend",
		},
		Shorteners: []string{
			"bit.ly", "tinyurl", "goo.gl", "ow.ly", "is.gd", "buff.ly", "short.link",
		},
		Brands: []string{
			"paypal", "apple", "amazon", "microsoft", "netflix",
			"chase", "wellsfargo", "facebook", "instagram", "gmail",
		},
		BrandContext: []string{
			"secure", "verify", "login", "account", "help",
		},
		SuspiciousTLDs: []string{
			".xyz", ".top", ".club", ".online", ".site", ".win", ".bid",
		},
		// Matched against the lowercased host, so "appIe" can never match.
		// Kept verbatim so detection output stays stable.
		Misspellings: []string{
			"paypall", "paypal-security", "pay-pal", "appIe", "microsft",
			"amaz0n", "faceboook", "gmaill", "whatsapp-web",
		},
	}
}

// Validate reports the first invalid field in rs.
func (rs RuleSet) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(rs); err != nil {
		return fmt.Errorf("invalid rule set: %w", err)
	}
	return nil
}

// clone returns a deep copy so a scorer never shares list storage with its caller.
func (rs RuleSet) clone() RuleSet {
	out := rs
	out.Keywords = append([]string(nil), rs.Keywords...)
	out.Shorteners = append([]string(nil), rs.Shorteners...)
	out.Brands = append([]string(nil), rs.Brands...)
	out.BrandContext = append([]string(nil), rs.BrandContext...)
	out.SuspiciousTLDs = append([]string(nil), rs.SuspiciousTLDs...)
	out.Misspellings = append([]string(nil), rs.Misspellings...)
	return out
}
