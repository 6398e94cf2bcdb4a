package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReturnPolicyRequiresReturn(t *testing.T) {
	assert.True(t, ReturnRequired.RequiresReturn())
	assert.False(t, Reusable.RequiresReturn())
	assert.False(t, Consumable.RequiresReturn())
}

func TestReturnPolicyIsValid(t *testing.T) {
	assert.True(t, ReturnRequired.IsValid())
	assert.True(t, Reusable.IsValid())
	assert.True(t, Consumable.IsValid())
	assert.False(t, ReturnPolicy("DISPOSABLE").IsValid())
}

func TestDefaultCategoriesCoverEveryPolicy(t *testing.T) {
	seen := map[ReturnPolicy]bool{}
	for _, c := range DefaultCategories {
		assert.True(t, c.ReturnPolicy.IsValid(), c.Name)
		seen[c.ReturnPolicy] = true
	}
	assert.True(t, seen[ReturnRequired])
	assert.True(t, seen[Reusable])
	assert.True(t, seen[Consumable])
}
