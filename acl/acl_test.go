package acl

import (
	"net"
	"testing"
)

// TestACLAllowRuleValid tests that valid allow rules are accepted
func TestACLAllowRuleValid(t *testing.T) {
	acl, err := FromRules(
		[]string{"192.168.0.0/16", "10.0.0.0/8"},
		[]string{},
	)
	if err != nil {
		t.Fatalf("failed to create ACL: %v", err)
	}

	if acl == nil {
		t.Fatal("ACL should not be nil")
	}

	t.Log("✓ Allow rules accepted")
}

// TestACLDenyRuleValid tests that valid deny rules are accepted
func TestACLDenyRuleValid(t *testing.T) {
	acl, err := FromRules(
		[]string{},
		[]string{"203.0.113.0/24", "198.51.100.0/24"},
	)
	if err != nil {
		t.Fatalf("failed to create ACL: %v", err)
	}

	if acl == nil {
		t.Fatal("ACL should not be nil")
	}

	t.Log("✓ Deny rules accepted")
}

// TestACLBothRulesValid tests ACL with both allow and deny rules
func TestACLBothRulesValid(t *testing.T) {
	acl, err := FromRules(
		[]string{"192.168.0.0/16", "10.0.0.0/8"},
		[]string{"203.0.113.0/24"},
	)
	if err != nil {
		t.Fatalf("failed to create ACL: %v", err)
	}

	if acl == nil {
		t.Fatal("ACL should not be nil")
	}

	t.Log("✓ Both allow and deny rules accepted")
}

// TestACLInvalidCIDRLogged tests that invalid CIDR is logged but doesn't fail load
func TestACLInvalidCIDRLogged(t *testing.T) {
	acl, err := FromRules(
		[]string{"192.168.0.0/33"}, // Invalid mask (> 32)
		[]string{},
	)
	if err != nil {
		t.Fatalf("failed to create ACL: %v", err)
	}

	// ACL loads but with no valid rules (invalid line was skipped)
	if acl == nil {
		t.Fatal("ACL should not be nil")
	}

	t.Log("✓ Invalid CIDR logged, ACL still loads")
}

// TestACLInvalidIPLogged tests that invalid IP is logged but doesn't fail load
func TestACLInvalidIPLogged(t *testing.T) {
	acl, err := FromRules(
		[]string{"not an ip address"},
		[]string{},
	)
	if err != nil {
		t.Fatalf("failed to create ACL: %v", err)
	}

	// ACL loads but with no valid rules (invalid line was skipped)
	if acl == nil {
		t.Fatal("ACL should not be nil")
	}

	t.Log("✓ Invalid IP logged, ACL still loads")
}

// TestACLEmptyRulesValid tests empty ACL is valid
func TestACLEmptyRulesValid(t *testing.T) {
	acl, err := FromRules([]string{}, []string{})
	if err != nil {
		t.Fatalf("failed to create empty ACL: %v", err)
	}

	if acl == nil {
		t.Fatal("ACL should not be nil")
	}

	t.Log("✓ Empty ACL accepted")
}

func TestAllowQueryDenyTakesPrecedence(t *testing.T) {
	acl, err := FromRules([]string{"10.0.0.0/8"}, []string{"10.0.1.0/24"})
	if err != nil {
		t.Fatalf("FromRules: %v", err)
	}

	if acl.AllowQuery(net.ParseIP("10.0.1.5")) {
		t.Fatal("expected deny rule to override overlapping allow rule")
	}
	if !acl.AllowQuery(net.ParseIP("10.0.2.5")) {
		t.Fatal("expected address outside deny range to be allowed")
	}
}

func TestAllowQueryOutsideAllowListRejected(t *testing.T) {
	acl, err := FromRules([]string{"10.0.0.0/8"}, nil)
	if err != nil {
		t.Fatalf("FromRules: %v", err)
	}

	if acl.AllowQuery(net.ParseIP("192.0.2.1")) {
		t.Fatal("expected address outside the allow list to be rejected")
	}
}

func TestAllowQueryNoRulesPermitsAll(t *testing.T) {
	acl, err := FromRules(nil, nil)
	if err != nil {
		t.Fatalf("FromRules: %v", err)
	}

	if !acl.AllowQuery(net.ParseIP("192.0.2.1")) {
		t.Fatal("expected no rules to permit all addresses")
	}
}

func TestLoadFileEmptyPathPermissive(t *testing.T) {
	acl, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !acl.AllowQuery(net.ParseIP("203.0.113.7")) {
		t.Fatal("expected empty ACL file path to permit all addresses")
	}
}
