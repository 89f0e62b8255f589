package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Defaults(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		symbol string
		want   SymbolClass
	}{
		{"ES=F", Futures},
		{"NQ=F", Futures},
		{"GC=F", Futures},
		{"NG=F", Futures},
		{"BTC-USD", Crypto},
		{"SOL-USD", Crypto},
		{"AAPL", SessionBound},
		{"^GSPC", SessionBound},
		{"XLK", SessionBound},
		{"", SessionBound},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.symbol), "symbol %s", tt.symbol)
	}
}

func TestClassifier_Custom(t *testing.T) {
	c := NewClassifier([]string{"ZB=F"}, []string{"DOGE-USD"})

	assert.Equal(t, Futures, c.Classify("ZB=F"))
	assert.Equal(t, Crypto, c.Classify("DOGE-USD"))
	// Defaults do not leak into a custom table.
	assert.Equal(t, SessionBound, c.Classify("ES=F"))
}

func TestSymbolClass_String(t *testing.T) {
	assert.Equal(t, "futures", Futures.String())
	assert.Equal(t, "crypto", Crypto.String())
	assert.Equal(t, "session", SessionBound.String())
}

func TestClassifier_Continuous(t *testing.T) {
	c := DefaultClassifier()

	assert.True(t, c.Continuous("ES=F"))
	assert.True(t, c.Continuous("ETH-USD"))
	assert.False(t, c.Continuous("SPY"))
}
