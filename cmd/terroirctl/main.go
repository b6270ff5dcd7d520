// terroirctl runs the dossier import pipeline from the command line.
//
// Usage:
//
//	terroirctl sanitize [file|-]
//	terroirctl preview [file|-] [--strict] [--territory=<id> --dossier=<id>] [--format=json|yaml|csv|xlsx] [-o out]
//	terroirctl commit [file|-] --territory=<id> --dossier=<id> [--db=terroir.db] [--strict]
//	terroirctl rules
//	terroirctl token --subject=<operator> [--ttl=24h]
package main

import (
	"fmt"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
