// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

// Package ssh turns outbound SSH entries into handlers that tunnel TCP
// connections through an SSH server.
//
// ResolveOptions is the pure conversion step: it copies the entry's identity
// and credentials and maps host key algorithm names to canonical algorithms.
// Everything that can fail (parsing keys, checking that some authentication
// method exists, rejecting an empty algorithm list) happens later, in
// Handler.ClientConfig and Handler.Connect.
package ssh
