package stack

import (
	"fmt"

	"github.com/cloudshore/webvpc/internal/config"
)

// Validate checks the graph invariants. A graph that fails validation is
// rejected before any resource is touched.
func (s *Stack) Validate() error {
	if _, err := s.CreationOrder(); err != nil {
		return err
	}

	if err := s.validateAddressing(); err != nil {
		return err
	}
	if err := s.validateRouting(); err != nil {
		return err
	}
	if err := s.validateRuleSet(); err != nil {
		return err
	}
	if err := s.validateIdentity(); err != nil {
		return err
	}
	if err := s.validateInstances(); err != nil {
		return err
	}
	return nil
}

// validateAddressing checks both subnet blocks lie strictly inside the
// network block and do not overlap.
func (s *Stack) validateAddressing() error {
	for _, subnet := range []Subnet{s.PublicSubnet, s.PrivateSubnet} {
		if !config.PrefixInside(subnet.CIDR, s.Network.CIDR) || subnet.CIDR.Bits() <= s.Network.CIDR.Bits() {
			return fmt.Errorf("subnet %s block %s is not a strict subset of network block %s",
				subnet.Name, subnet.CIDR, s.Network.CIDR)
		}
	}
	if s.PublicSubnet.CIDR.Overlaps(s.PrivateSubnet.CIDR) {
		return fmt.Errorf("subnet blocks %s and %s overlap", s.PublicSubnet.CIDR, s.PrivateSubnet.CIDR)
	}
	return nil
}

// validateRouting checks the default-route targets and the load-bearing
// ordering edges around the gateway attachment and the NAT gateway.
func (s *Stack) validateRouting() error {
	if s.PublicRoute.TargetKind != KindInternetGateway || s.PublicRoute.Target != s.InternetGateway {
		return fmt.Errorf("public default route must target the internet gateway, targets %s", s.PublicRoute.Target)
	}
	if s.PrivateRoute.TargetKind != KindNATGateway || s.PrivateRoute.Target != s.NAT.Name {
		return fmt.Errorf("private default route must target the NAT gateway, targets %s", s.PrivateRoute.Target)
	}

	// A route through the internet gateway must order after the attachment;
	// without the edge the route could reference a gateway not yet bound to
	// the network.
	publicRoute, ok := s.Lookup(s.PublicRoute.Name)
	if !ok || !dependsOn(publicRoute, s.Attachment.Name) {
		return fmt.Errorf("route %s must depend on gateway attachment %s", s.PublicRoute.Name, s.Attachment.Name)
	}
	privateRoute, ok := s.Lookup(s.PrivateRoute.Name)
	if !ok || !dependsOn(privateRoute, s.NAT.Name) {
		return fmt.Errorf("route %s must depend on NAT gateway %s", s.PrivateRoute.Name, s.NAT.Name)
	}

	if s.NAT.Subnet != s.PublicSubnet.Name {
		return fmt.Errorf("NAT gateway must reside in the public subnet, declared in %s", s.NAT.Subnet)
	}
	if s.NAT.Allocation == "" {
		return fmt.Errorf("NAT gateway requires an allocated public address")
	}
	nat, ok := s.Lookup(s.NAT.Name)
	if !ok || !dependsOn(nat, s.NAT.Allocation) || !dependsOn(nat, s.Attachment.Name) {
		return fmt.Errorf("NAT gateway %s must depend on its allocation and on the gateway attachment", s.NAT.Name)
	}

	// Each subnet is associated with exactly one route table.
	assoc := map[string]string{}
	for _, a := range []Association{s.PublicAssoc, s.PrivateAssoc} {
		if prev, dup := assoc[a.Subnet]; dup {
			return fmt.Errorf("subnet %s associated with both %s and %s", a.Subnet, prev, a.Table)
		}
		assoc[a.Subnet] = a.Table
	}
	if assoc[s.PublicSubnet.Name] != s.PublicTable {
		return fmt.Errorf("public subnet must associate with the public route table")
	}
	if assoc[s.PrivateSubnet.Name] != s.PrivateTable {
		return fmt.Errorf("private subnet must associate with the private route table")
	}
	return nil
}

// validateRuleSet checks the ingress allow-list permits exactly TCP 22 and
// TCP 80 from any source, and nothing else.
func (s *Stack) validateRuleSet() error {
	want := map[int]bool{22: false, 80: false}
	for _, r := range s.RuleSet.Ingress {
		if r.Protocol != "tcp" {
			return fmt.Errorf("unexpected ingress protocol %q", r.Protocol)
		}
		if r.FromPort != r.ToPort {
			return fmt.Errorf("unexpected ingress port range %d-%d", r.FromPort, r.ToPort)
		}
		seen, expected := want[r.FromPort]
		if !expected {
			return fmt.Errorf("unexpected ingress port %d", r.FromPort)
		}
		if seen {
			return fmt.Errorf("duplicate ingress rule for port %d", r.FromPort)
		}
		if r.Source.String() != "0.0.0.0/0" {
			return fmt.Errorf("ingress rule for port %d must allow any source, got %s", r.FromPort, r.Source)
		}
		want[r.FromPort] = true
	}
	for port, seen := range want {
		if !seen {
			return fmt.Errorf("missing ingress rule for port %d", port)
		}
	}
	return nil
}

// validateIdentity checks the role trust principal matches the compute
// service and the profile wraps the role.
func (s *Stack) validateIdentity() error {
	if s.Role.TrustPrincipal != EC2TrustPrincipal {
		return fmt.Errorf("role trust principal must be %s, got %s", EC2TrustPrincipal, s.Role.TrustPrincipal)
	}
	if s.Role.PolicyARN == "" {
		return fmt.Errorf("role requires the managed session-management policy")
	}
	profile, ok := s.Lookup(s.Profile)
	if !ok || !dependsOn(profile, s.Role.Name) {
		return fmt.Errorf("instance profile %s must depend on role %s", s.Profile, s.Role.Name)
	}
	return nil
}

// validateInstances checks subnet placement and the reachability contract:
// the public instance gets a public address and the first-boot script, the
// private instance gets neither.
func (s *Stack) validateInstances() error {
	if s.PublicInstance.Subnet != s.PublicSubnet.Name || !s.PublicInstance.PublicIP {
		return fmt.Errorf("public instance must launch in the public subnet with a public address")
	}
	if s.PublicInstance.UserData == "" {
		return fmt.Errorf("public instance requires a first-boot script")
	}
	if s.PrivateInstance.Subnet != s.PrivateSubnet.Name {
		return fmt.Errorf("private instance must launch in the private subnet")
	}
	if s.PrivateInstance.PublicIP {
		return fmt.Errorf("private instance must not get a public address")
	}
	if s.PrivateInstance.UserData != "" {
		return fmt.Errorf("private instance must not declare a first-boot script")
	}

	for _, inst := range []Instance{s.PublicInstance, s.PrivateInstance} {
		node, ok := s.Lookup(inst.Name)
		if !ok {
			return fmt.Errorf("instance %s not declared in the graph", inst.Name)
		}
		for _, dep := range []string{inst.Subnet, inst.RuleSet, inst.Profile} {
			if !dependsOn(node, dep) {
				return fmt.Errorf("instance %s must depend on %s", inst.Name, dep)
			}
		}
		if inst.KeyName == "" {
			return fmt.Errorf("instance %s requires a key pair reference", inst.Name)
		}
	}
	return nil
}

func dependsOn(r Resource, name string) bool {
	for _, dep := range r.DependsOn {
		if dep == name {
			return true
		}
	}
	return false
}
