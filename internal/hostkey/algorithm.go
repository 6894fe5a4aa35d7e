// Copyright (c) 2026 Keymaster Team
// sshoutbound - SSH outbound proxy handlers
// This source code is licensed under the MIT license found in the LICENSE file.

package hostkey

import (
	"golang.org/x/crypto/ssh"
)

// Family is the public key family of a host key algorithm.
type Family int

const (
	FamilyEd25519 Family = iota + 1
	FamilyRSA
	FamilyECDSA
)

// Hash is the signature hash used with RSA host keys.
type Hash int

const (
	// HashNone is the legacy ssh-rsa signature (SHA-1).
	HashNone Hash = iota
	HashSHA256
	HashSHA512
)

// Curve is the elliptic curve of an ECDSA host key.
type Curve int

const (
	CurveNone Curve = iota
	CurveNistP256
	CurveNistP384
	CurveNistP521
)

// Algorithm is a canonical host key algorithm. Values are comparable.
type Algorithm struct {
	Family Family
	Hash   Hash
	Curve  Curve
}

var (
	Ed25519   = Algorithm{Family: FamilyEd25519}
	RSASHA256 = Algorithm{Family: FamilyRSA, Hash: HashSHA256}
	RSASHA512 = Algorithm{Family: FamilyRSA, Hash: HashSHA512}
	RSA       = Algorithm{Family: FamilyRSA, Hash: HashNone}
	ECDSAP256 = Algorithm{Family: FamilyECDSA, Curve: CurveNistP256}
	ECDSAP384 = Algorithm{Family: FamilyECDSA, Curve: CurveNistP384}
	ECDSAP521 = Algorithm{Family: FamilyECDSA, Curve: CurveNistP521}
)

// KeyAlgo returns the wire name of the algorithm as understood by
// golang.org/x/crypto/ssh, or an empty string for the zero Algorithm.
func (a Algorithm) KeyAlgo() string {
	switch a {
	case Ed25519:
		return ssh.KeyAlgoED25519
	case RSASHA256:
		return ssh.KeyAlgoRSASHA256
	case RSASHA512:
		return ssh.KeyAlgoRSASHA512
	case RSA:
		return ssh.KeyAlgoRSA
	case ECDSAP256:
		return ssh.KeyAlgoECDSA256
	case ECDSAP384:
		return ssh.KeyAlgoECDSA384
	case ECDSAP521:
		return ssh.KeyAlgoECDSA521
	}
	return ""
}

// String returns a human readable label, e.g. "RSA/SHA-256".
func (a Algorithm) String() string {
	switch a.Family {
	case FamilyEd25519:
		return "Ed25519"
	case FamilyRSA:
		switch a.Hash {
		case HashSHA256:
			return "RSA/SHA-256"
		case HashSHA512:
			return "RSA/SHA-512"
		default:
			return "RSA"
		}
	case FamilyECDSA:
		switch a.Curve {
		case CurveNistP256:
			return "ECDSA/P-256"
		case CurveNistP384:
			return "ECDSA/P-384"
		case CurveNistP521:
			return "ECDSA/P-521"
		}
	}
	return "unknown"
}

// Entry pairs a recognised configuration name with its algorithm.
type Entry struct {
	Name      string
	Algorithm Algorithm
}

// table is the complete set of accepted names. Only ed25519 and rsa have a
// short alias; the ECDSA variants are accepted by wire name only.
var table = [...]Entry{
	{"ssh-ed25519", Ed25519},
	{"ed25519", Ed25519},
	{"rsa-sha2-256", RSASHA256},
	{"rsa-sha2-512", RSASHA512},
	{"ssh-rsa", RSA},
	{"rsa", RSA},
	{"ecdsa-sha2-nistp256", ECDSAP256},
	{"ecdsa-sha2-nistp384", ECDSAP384},
	{"ecdsa-sha2-nistp521", ECDSAP521},
}

// Names returns the recognised names in table order.
func Names() []Entry {
	out := make([]Entry, len(table))
	copy(out, table[:])
	return out
}

// Resolve returns the algorithm denoted by name. The match is exact: no
// trimming or case folding is applied.
func Resolve(name string) (Algorithm, bool) {
	for _, e := range table {
		if e.Name == name {
			return e.Algorithm, true
		}
	}
	return Algorithm{}, false
}

// ResolveAll maps names through Resolve, dropping names without a match.
// Order and duplicates are kept. A nil input yields nil; any non-nil input
// yields a non-nil slice, which is empty when nothing matched.
func ResolveAll(names []string) []Algorithm {
	if names == nil {
		return nil
	}
	out := make([]Algorithm, 0, len(names))
	for _, n := range names {
		if a, ok := Resolve(n); ok {
			out = append(out, a)
		}
	}
	return out
}

// Unresolved returns the names ResolveAll would drop, in input order.
func Unresolved(names []string) []string {
	var out []string
	for _, n := range names {
		if _, ok := Resolve(n); !ok {
			out = append(out, n)
		}
	}
	return out
}

// KeyAlgos converts algorithms to their wire names, keeping nil as nil.
func KeyAlgos(algos []Algorithm) []string {
	if algos == nil {
		return nil
	}
	out := make([]string, 0, len(algos))
	for _, a := range algos {
		out = append(out, a.KeyAlgo())
	}
	return out
}
