package txtparse

import (
	"testing"

	"github.com/dnsfleet/mhost/internal/diffset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSPFBasic(t *testing.T) {
	spf, ok := ParseSPF("v=spf1 ip4:192.0.2.0/24 include:_spf.example.com ~all")
	require.True(t, ok)
	assert.Equal(t, "spf1", spf.Version)
	require.Len(t, spf.Mechanisms, 3)

	assert.Equal(t, QualifierPass, spf.Mechanisms[0].Qualifier)
	assert.Equal(t, "ip4", spf.Mechanisms[0].Name)
	assert.Equal(t, "192.0.2.0", spf.Mechanisms[0].DomainSpec)
	assert.Equal(t, "24", spf.Mechanisms[0].CIDR)

	assert.Equal(t, "include", spf.Mechanisms[1].Name)
	assert.Equal(t, "_spf.example.com", spf.Mechanisms[1].DomainSpec)

	assert.Equal(t, QualifierSoftFail, spf.Mechanisms[2].Qualifier)
	assert.Equal(t, "all", spf.Mechanisms[2].Name)
}

func TestParseSPFModifiers(t *testing.T) {
	spf, ok := ParseSPF("v=spf1 redirect=_spf.example.com exp=explain.example.com")
	require.True(t, ok)
	require.Len(t, spf.Modifiers, 2)
	assert.Equal(t, "redirect", spf.Modifiers[0].Name)
	assert.Equal(t, "_spf.example.com", spf.Modifiers[0].Value)
}

func TestParseSPFRejectsNonSPF(t *testing.T) {
	_, ok := ParseSPF("some unrelated txt record")
	assert.False(t, ok)
}

func TestParseSPFRejectsInvalidVersionSuffix(t *testing.T) {
	_, ok := ParseSPF("v=spfx -all")
	assert.False(t, ok)
}

func TestIsSPFCaseInsensitivePrefix(t *testing.T) {
	assert.True(t, IsSPF("V=SPF1 -all"))
	assert.False(t, IsSPF("v=DKIM1"))
}

func TestIsDomainVerificationVendorForms(t *testing.T) {
	assert.True(t, IsDomainVerification("MS=ms12345678"))
	assert.True(t, IsDomainVerification("ZOOM_verify_abcdef"))
	assert.True(t, IsDomainVerification("google-site-verification=abc123"))
}

func TestIsDomainVerificationThreeHyphenPrefix(t *testing.T) {
	assert.True(t, IsDomainVerification("foo-bar-baz=someid123"))
	assert.False(t, IsDomainVerification("foo-bar=someid123"))
	assert.False(t, IsDomainVerification("justsometext"))
}

func TestSPFDifferAntiReflexive(t *testing.T) {
	spf, ok := ParseSPF("v=spf1 ip4:192.0.2.0/24 -all")
	require.True(t, ok)
	_, differs := SPFDiffer(spf, spf)
	assert.False(t, differs)
}

func TestSPFDifferDetectsMechanismDivergence(t *testing.T) {
	a, ok := ParseSPF("v=spf1 -all")
	require.True(t, ok)
	b, ok := ParseSPF("v=spf1 +all")
	require.True(t, ok)

	tags, differs := SPFDiffer(a, b)
	require.True(t, differs)
	assert.Contains(t, tags, diffset.FieldTag("Mechanisms"))
}
