// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

// Package hostkey maps user supplied host key algorithm names onto the closed
// set of algorithms the SSH transport negotiates with. Lookup is exact and
// case-sensitive; names that are not recognised are dropped, never rejected.
package hostkey
