package entity

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/miekg/dns"
)

// AliasTarget points a record at another DNS name instead of literal values.
type AliasTarget struct {
	DNSName              string `json:"dnsName" yaml:"dnsName"`
	HostedZoneID         string `json:"hostedZoneId,omitempty" yaml:"hostedZoneId,omitempty"`
	EvaluateTargetHealth bool   `json:"evaluateTargetHealth" yaml:"evaluateTargetHealth"`
}

func (a *AliasTarget) Equal(b *AliasTarget) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.DNSName == b.DNSName &&
		a.HostedZoneID == b.HostedZoneID &&
		a.EvaluateTargetHealth == b.EvaluateTargetHealth
}

type Record struct {
	Name        string       `json:"name" yaml:"name"`
	Type        string       `json:"type" yaml:"type"`
	TTL         int64        `json:"ttl" yaml:"ttl"`
	Values      []string     `json:"values" yaml:"values"`
	AliasTarget *AliasTarget `json:"aliasTarget,omitempty" yaml:"aliasTarget,omitempty"`
}

// RecordKey identifies a record slot within one zone.
type RecordKey struct {
	Name string
	Type string
}

func (k RecordKey) String() string {
	return fmt.Sprintf("%s:%s", k.Name, k.Type)
}

func CanonicalName(name string) string {
	if name == "" {
		return ""
	}
	return dns.CanonicalName(name)
}

// DecodeName turns the \NNN octal escapes Route 53 uses for special
// characters (\052 for a leading wildcard) back into bytes and returns the
// canonical form. Escapes outside the byte range are kept as written.
func DecodeName(name string) string {
	if !strings.Contains(name, `\`) {
		return CanonicalName(name)
	}

	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		if name[i] == '\\' && i+3 < len(name) && isOctal(name[i+1:i+4]) {
			if n, err := strconv.ParseUint(name[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(name[i])
	}
	return CanonicalName(b.String())
}

func isOctal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '7' {
			return false
		}
	}
	return true
}

func (r *Record) Key() RecordKey {
	return RecordKey{
		Name: CanonicalName(r.Name),
		Type: strings.ToUpper(r.Type),
	}
}

// Equal compares everything but the name, which is already matched by Key.
// Nil and empty value lists are equal; value order matters.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if !strings.EqualFold(r.Type, other.Type) || r.TTL != other.TTL {
		return false
	}
	if !slices.Equal(r.Values, other.Values) {
		return false
	}
	return r.AliasTarget.Equal(other.AliasTarget)
}

// Normalize canonicalises the name and replaces absent values with an empty list.
func (r *Record) Normalize() {
	r.Name = CanonicalName(r.Name)
	r.Type = strings.ToUpper(r.Type)
	if r.TTL < 0 {
		r.TTL = 0
	}
	if r.Values == nil {
		r.Values = []string{}
	}
	if r.AliasTarget != nil {
		r.AliasTarget.DNSName = CanonicalName(r.AliasTarget.DNSName)
	}
}

func (r *Record) Clone() Record {
	c := *r
	c.Values = slices.Clone(r.Values)
	if c.Values == nil {
		c.Values = []string{}
	}
	if r.AliasTarget != nil {
		alias := *r.AliasTarget
		c.AliasTarget = &alias
	}
	return c
}

func (r *Record) IsAlias() bool {
	return r.AliasTarget != nil
}
