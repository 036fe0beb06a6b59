package memory

import (
	"testing"

	"github.com/DrChat/razmount/pkg/rangestore"
	storetesting "github.com/DrChat/razmount/pkg/rangestore/testing"
)

func TestMemoryStore_Suite(t *testing.T) {
	storetesting.RunStoreSuite(t, func(t *testing.T) rangestore.Store {
		return New()
	})
}
