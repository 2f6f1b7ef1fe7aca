// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ldapber decodes BER-encoded LDAP control values.
//
// Usage:
//
//	ldapber decode [flags] <hex>...
//	ldapber grammar [flags]
//	ldapber tlv [flags] <hex>
//	ldapber version
//
// Flags may also be set in $HOME/.ldapber.yaml or via LDAPBER_* environment
// variables.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
