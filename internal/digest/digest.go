// Package digest computes content hashes for SQL text recorded in the
// rewrite history.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes keep input and output hashes of identical text distinct.
// Version suffix enables future algorithm migration.
const (
	DomainInput  = "decteify/input/v1"
	DomainOutput = "decteify/output/v1"
)

// Input hashes the text of a query before rewriting.
func Input(sql string) string {
	return hashWithDomain(DomainInput, Canonical(sql))
}

// Output hashes the text of a rewritten query.
func Output(sql string) string {
	return hashWithDomain(DomainOutput, Canonical(sql))
}

// Canonical returns the bytes that are hashed for sql: NFC-normalized, with
// CRLF line endings folded to LF and surrounding whitespace trimmed.
func Canonical(sql string) []byte {
	sql = strings.ReplaceAll(sql, "\r\n", "\n")
	return []byte(norm.NFC.String(strings.TrimSpace(sql)))
}

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
