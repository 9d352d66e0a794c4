package entity

import "testing"

func TestRecord_Equal(t *testing.T) {
	base := func() Record {
		return Record{Name: "www.example.com.", Type: "A", TTL: 300, Values: []string{"1.2.3.4", "5.6.7.8"}}
	}

	tests := []struct {
		name     string
		mutate   func(r *Record)
		expected bool
	}{
		{name: "identical", mutate: func(r *Record) {}, expected: true},
		{name: "different ttl", mutate: func(r *Record) { r.TTL = 600 }, expected: false},
		{name: "different value", mutate: func(r *Record) { r.Values[1] = "9.9.9.9" }, expected: false},
		{name: "value order matters", mutate: func(r *Record) { r.Values = []string{"5.6.7.8", "1.2.3.4"} }, expected: false},
		{name: "fewer values", mutate: func(r *Record) { r.Values = r.Values[:1] }, expected: false},
		{name: "different type", mutate: func(r *Record) { r.Type = "AAAA" }, expected: false},
		{name: "type case ignored", mutate: func(r *Record) { r.Type = "a" }, expected: true},
		{name: "alias added", mutate: func(r *Record) { r.AliasTarget = &AliasTarget{DNSName: "lb.example.net."} }, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := base()
			b := base()
			tt.mutate(&b)
			if got := a.Equal(&b); got != tt.expected {
				t.Errorf("Equal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRecord_Equal_NilAndEmptyValues(t *testing.T) {
	a := Record{Name: "alias.example.com.", Type: "A", AliasTarget: &AliasTarget{DNSName: "lb.example.net."}}
	b := Record{Name: "alias.example.com.", Type: "A", Values: []string{}, AliasTarget: &AliasTarget{DNSName: "lb.example.net."}}
	if !a.Equal(&b) {
		t.Error("expected nil and empty values to compare equal")
	}
}

func TestRecord_Equal_IsDeep(t *testing.T) {
	a := Record{Type: "CNAME", AliasTarget: &AliasTarget{DNSName: "x.example.net.", HostedZoneID: "Z1"}}
	b := Record{Type: "CNAME", AliasTarget: &AliasTarget{DNSName: "x.example.net.", HostedZoneID: "Z1"}}
	if a.AliasTarget == b.AliasTarget {
		t.Fatal("test needs distinct pointers")
	}
	if !a.Equal(&b) {
		t.Error("expected structurally equal alias targets to compare equal")
	}
	b.AliasTarget.EvaluateTargetHealth = true
	if a.Equal(&b) {
		t.Error("expected differing alias health flag to compare unequal")
	}
}

func TestRecord_Key(t *testing.T) {
	r := Record{Name: "WWW.Example.COM", Type: "cname"}
	key := r.Key()
	if key.Name != "www.example.com." {
		t.Errorf("expected canonical name, got %q", key.Name)
	}
	if key.Type != "CNAME" {
		t.Errorf("expected upper-case type, got %q", key.Type)
	}
	if key.String() != "www.example.com.:CNAME" {
		t.Errorf("unexpected key string %q", key.String())
	}
}

func TestRecord_Normalize(t *testing.T) {
	r := Record{Name: "Mail.Example.com", Type: "mx", TTL: -5}
	r.Normalize()

	if r.Name != "mail.example.com." {
		t.Errorf("expected canonical name, got %q", r.Name)
	}
	if r.Type != "MX" {
		t.Errorf("expected MX, got %q", r.Type)
	}
	if r.TTL != 0 {
		t.Errorf("expected ttl clamped to 0, got %d", r.TTL)
	}
	if r.Values == nil || len(r.Values) != 0 {
		t.Errorf("expected empty non-nil values, got %#v", r.Values)
	}
}

func TestRecord_Clone(t *testing.T) {
	r := Record{Name: "a.example.com.", Type: "A", Values: []string{"1.1.1.1"}, AliasTarget: &AliasTarget{DNSName: "b.example.com."}}
	c := r.Clone()
	c.Values[0] = "2.2.2.2"
	c.AliasTarget.DNSName = "c.example.com."

	if r.Values[0] != "1.1.1.1" {
		t.Error("clone shares values slice")
	}
	if r.AliasTarget.DNSName != "b.example.com." {
		t.Error("clone shares alias target")
	}
}

func TestDecodeName(t *testing.T) {
	tests := map[string]string{
		`\052.example.com.`: "*.example.com.",
		`WWW.Example.com`:   "www.example.com.",
		`a\100b.example.`:   "a@b.example.",
		`trailing\05`:       `trailing\05.`,
		`a\400b.example.`:   `a\400b.example.`,
		`x\777.example.`:    `x\777.example.`,
		"":                  "",
	}
	for in, want := range tests {
		if got := DecodeName(in); got != want {
			t.Errorf("DecodeName(%q) = %q, want %q", in, got, want)
		}
	}
}
