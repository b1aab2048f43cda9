// Package main is the entry point for the webvpc CLI.
//
// webvpc provisions a two-tier web environment on AWS: a VPC with one
// public and one private subnet, internet and NAT gateways, routing, a
// security group, an instance role and two EC2 instances. It takes a
// stateless, declarative approach without requiring Terraform or other
// IaC tools.
//
// Commands: init, plan, apply, destroy, outputs, keygen.
//
// For detailed usage information, run:
//
//	webvpc --help
package main

import (
	"fmt"
	"os"

	"github.com/cloudshore/webvpc/cmd/webvpc/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
