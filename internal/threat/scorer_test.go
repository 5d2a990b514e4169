package threat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskFor_boundaries(t *testing.T) {
	tests := []struct {
		confidence int
		want       Risk
	}{
		{0, RiskMinimal},
		{19, RiskMinimal},
		{20, RiskLow},
		{21, RiskLow},
		{39, RiskLow},
		{40, RiskMedium},
		{41, RiskMedium},
		{69, RiskMedium},
		{70, RiskHigh},
		{71, RiskHigh},
		{100, RiskHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskFor(tt.confidence), "confidence %d", tt.confidence)
	}
}

func TestNewVerdict_capsConfidenceNotScore(t *testing.T) {
	v := newVerdict(190, nil)
	assert.Equal(t, 190, v.Score)
	assert.Equal(t, 100, v.Confidence)
	assert.Equal(t, RiskHigh, v.Risk)
	assert.True(t, v.IsPhishing)
	assert.Equal(t, []string{}, v.Reasons)
}

func TestNewVerdict_phishingThreshold(t *testing.T) {
	assert.False(t, newVerdict(29, nil).IsPhishing)
	assert.True(t, newVerdict(30, nil).IsPhishing)
	assert.True(t, newVerdict(31, nil).IsPhishing)
}

func TestUniqueReasons(t *testing.T) {
	in := []string{"a", "b", "a", "c", "b", "d", "e", "f", "g"}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, uniqueReasons(in, 5))
	assert.Equal(t, []string{"a", "b"}, uniqueReasons([]string{"a", "a", "b"}, 5))
	assert.Equal(t, []string{}, uniqueReasons(nil, 5))
}

func TestVerdict_JSONShape(t *testing.T) {
	b, err := json.Marshal(newVerdict(45, []string{"x"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"is_phishing": true,
		"confidence": 45,
		"risk": "MEDIUM",
		"score": 45,
		"reasons": ["x"]
	}`, string(b))
}

func TestParseTarget(t *testing.T) {
	tg := parseTarget("HTTP://Admin@WWW.Example.COM:8080/Login/Path?q=1")
	assert.True(t, tg.parsed)
	assert.Equal(t, "http", tg.scheme)
	assert.Equal(t, "admin@www.example.com:8080", tg.host)
	assert.Equal(t, "/login/path", tg.path)
	assert.Equal(t, "http://admin@www.example.com:8080/login/path?q=1", tg.full)
	assert.Equal(t, "admin@www", tg.leadingLabel())

	// Rejected by net/url but still split into its parts.
	loose := parseTarget("HTTP://Paypall-Secure.XYZ:8o/A%zz?q=%#frag")
	assert.True(t, loose.parsed)
	assert.Equal(t, "http", loose.scheme)
	assert.Equal(t, "paypall-secure.xyz:8o", loose.host)
	assert.Equal(t, "/a%zz", loose.path)

	spaced := parseTarget("https://user name@secure login.com")
	assert.True(t, spaced.parsed)
	assert.Equal(t, "https", spaced.scheme)
	assert.Equal(t, "user name@secure login.com", spaced.host)
	assert.Empty(t, spaced.path)

	bad := parseTarget("http://[::1/Login")
	assert.False(t, bad.parsed)
	assert.Empty(t, bad.host)
	assert.Equal(t, "http://[::1/login", bad.full)
}

func TestLeadingLabel_stripsOnlyLeadingWWW(t *testing.T) {
	assert.Equal(t, "paypal", (&target{host: "www.paypal.com"}).leadingLabel())
	assert.Equal(t, "secure", (&target{host: "secure.www.paypal.com"}).leadingLabel())
	assert.Equal(t, "localhost", (&target{host: "localhost"}).leadingLabel())
}
