// Package docnum generates human-readable document numbers.
//
// Numbers follow the pattern PREFIX-<unix-timestamp>-<4 random digits>,
// e.g. PO-1714066800-0427. The timestamp keeps numbers roughly sortable
// by creation time; the random suffix avoids collisions for documents
// created within the same second. Uniqueness is still enforced by the
// database constraint on the number column.
package docnum

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// Prefixes used across the service.
const (
	PrefixPurchaseOrder = "PO"
	PrefixGoodsReceipt  = "GR"
	PrefixAssetRequest  = "REQ"
)

// Generator produces document numbers. The zero value is usable;
// Now can be overridden in tests.
type Generator struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// New creates a Generator with default clock.
func New() *Generator {
	return &Generator{Now: time.Now}
}

// Next returns the next number for the given prefix.
func (g *Generator) Next(prefix string) string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, now().Unix(), randomDigits())
}

// randomDigits returns a number in [0, 10000).
func randomDigits() uint16 {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failure means the process is in a bad state;
		// fall back to a time-derived suffix rather than panic.
		return uint16(time.Now().UnixNano() % 10000)
	}
	return binary.BigEndian.Uint16(buf[:]) % 10000
}
