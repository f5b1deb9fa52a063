package prices

import (
	"sync"
)

// instrumentMapper maps exchange trading symbols to Kite instrument tokens
type instrumentMapper struct {
	symbolToToken map[string]int
	mu            sync.RWMutex
}

func newInstrumentMapper() *instrumentMapper {
	return &instrumentMapper{
		symbolToToken: make(map[string]int),
	}
}

func mapperKey(exchange, symbol string) string {
	return exchange + ":" + symbol
}

// addMapping adds a symbol-token mapping
func (im *instrumentMapper) addMapping(exchange, symbol string, token int) {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.symbolToToken[mapperKey(exchange, symbol)] = token
}

// getToken retrieves the token for a symbol
func (im *instrumentMapper) getToken(exchange, symbol string) (int, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	token, exists := im.symbolToToken[mapperKey(exchange, symbol)]
	return token, exists
}
