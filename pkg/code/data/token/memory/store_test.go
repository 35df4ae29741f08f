package memory

import (
	"testing"

	"github.com/code-payments/affiliate-market/pkg/code/data/token/tests"
)

func TestTokenMemoryStore(t *testing.T) {
	testStore := New()
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunTests(t, testStore, teardown)
}
