package docnum

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_Format(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	g := &Generator{Now: func() time.Time { return fixed }}

	num := g.Next(PrefixPurchaseOrder)

	re := regexp.MustCompile(`^PO-(\d+)-(\d{4})$`)
	m := re.FindStringSubmatch(num)
	require.NotNil(t, m, "unexpected format: %s", num)
	assert.Equal(t, "1773480600", m[1])
}

func TestNext_Prefixes(t *testing.T) {
	g := New()

	assert.Regexp(t, `^GR-\d+-\d{4}$`, g.Next(PrefixGoodsReceipt))
	assert.Regexp(t, `^REQ-\d+-\d{4}$`, g.Next(PrefixAssetRequest))
}
