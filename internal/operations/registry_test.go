package operations_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demandprep/internal/operations"
	"demandprep/internal/operations/testutil"
)

func stepIDs(steps []operations.Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID()
	}
	return ids
}

func TestRegistryRegister(t *testing.T) {
	r := operations.NewRegistry()

	require.NoError(t, r.Register(testutil.CreateSuccessfulStage("load", "Load")))
	assert.True(t, r.Has("load"))
	assert.Equal(t, 1, r.Count())

	assert.ErrorContains(t, r.Register(testutil.CreateSuccessfulStage("load", "Again")), "already registered")
	assert.ErrorContains(t, r.Register(testutil.CreateSuccessfulStage("", "Empty")), "cannot be empty")
	assert.ErrorContains(t, r.Register(nil), "nil step")

	step, err := r.Get("load")
	require.NoError(t, err)
	assert.Equal(t, "Load", step.Name())

	_, err = r.Get("missing")
	assert.Error(t, err)
}

func TestRegistryListIDsKeepsRegistrationOrder(t *testing.T) {
	r := testutil.CreateTestRegistry(
		testutil.CreateSuccessfulStage("c", "C"),
		testutil.CreateSuccessfulStage("a", "A"),
		testutil.CreateSuccessfulStage("b", "B"),
	)
	assert.Equal(t, []string{"c", "a", "b"}, r.ListIDs())
}

func TestRegistryGetDependencyOrder(t *testing.T) {
	t.Run("preprocessing graph", func(t *testing.T) {
		r := testutil.CreateTestRegistry(
			testutil.CreateSuccessfulStage("load", "Load"),
			testutil.CreateSuccessfulStage("validate", "Validate", "load"),
			testutil.CreateSuccessfulStage("profile", "Profile", "load"),
			testutil.CreateSuccessfulStage("clean_transactions", "Clean", "validate"),
			testutil.CreateSuccessfulStage("encode_products", "Products", "validate"),
			testutil.CreateSuccessfulStage("encode_stores", "Stores", "validate"),
			testutil.CreateSuccessfulStage("write", "Write", "clean_transactions", "encode_products", "encode_stores"),
		)

		ordered, err := r.GetDependencyOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{
			"load", "validate", "profile",
			"clean_transactions", "encode_products", "encode_stores",
			"write",
		}, stepIDs(ordered))
	})

	t.Run("ties follow registration order", func(t *testing.T) {
		r := testutil.CreateTestRegistry(
			testutil.CreateSuccessfulStage("z", "Z", "root"),
			testutil.CreateSuccessfulStage("root", "Root"),
			testutil.CreateSuccessfulStage("y", "Y"),
			testutil.CreateSuccessfulStage("x", "X", "root"),
		)

		ordered, err := r.GetDependencyOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"root", "z", "y", "x"}, stepIDs(ordered))
	})

	t.Run("missing dependency", func(t *testing.T) {
		r := testutil.CreateTestRegistry(testutil.CreateSuccessfulStage("write", "Write", "encode"))
		_, err := r.GetDependencyOrder()
		assert.ErrorContains(t, err, "non-existent step encode")
		assert.Error(t, r.ValidateDependencies())
	})

	t.Run("cycle", func(t *testing.T) {
		r := testutil.CreateTestRegistry(
			testutil.CreateSuccessfulStage("a", "A", "c"),
			testutil.CreateSuccessfulStage("b", "B", "a"),
			testutil.CreateSuccessfulStage("c", "C", "b"),
		)
		_, err := r.GetDependencyOrder()
		assert.ErrorContains(t, err, "cycle")
	})
}

func TestRegistryGetDependents(t *testing.T) {
	r := testutil.CreateTestRegistry(
		testutil.CreateSuccessfulStage("load", "Load"),
		testutil.CreateSuccessfulStage("validate", "Validate", "load"),
		testutil.CreateSuccessfulStage("profile", "Profile", "load"),
		testutil.CreateSuccessfulStage("write", "Write", "validate"),
	)

	assert.Equal(t, []string{"validate", "profile"}, r.GetDependents("load"))
	assert.Equal(t, []string{"write"}, r.GetDependents("validate"))
	assert.Empty(t, r.GetDependents("write"))
}

func TestRegistryConcurrentRegister(t *testing.T) {
	r := operations.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.Register(testutil.CreateSuccessfulStage(fmt.Sprintf("s%d", i), "S"))
			_ = r.Has("s0")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, r.Count())
}
