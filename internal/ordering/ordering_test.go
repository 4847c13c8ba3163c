package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewestFirstReversesDiscoveryOrder(t *testing.T) {
	t.Parallel()

	links := []string{"L1", "L2", "L3"}
	got := NewestFirst{}.Order(links)

	assert.Equal(t, []string{"L3", "L2", "L1"}, got)
	assert.Equal(t, []string{"L1", "L2", "L3"}, links, "input must not be mutated")
}

func TestOldestFirstKeepsDiscoveryOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"L1", "L2"}, OldestFirst{}.Order([]string{"L1", "L2"}))
	assert.Empty(t, OldestFirst{}.Order(nil))
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	strategy, err := reg.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, NewestFirstName, strategy.Name())

	strategy, err = reg.Resolve(OldestFirstName)
	require.NoError(t, err)
	assert.Equal(t, OldestFirstName, strategy.Name())

	_, err = reg.Resolve("by-date")
	assert.ErrorContains(t, err, "by-date")
}
