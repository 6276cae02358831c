package flavorbuild

import (
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRuleParamsOutputDir(t *testing.T) {
	params := testParams(NewBuildTarget("//Libraries/Foo", "Foo"))
	assert.Equal(t, "buck-out/gen/Libraries/Foo/Foo", params.RelativeOutputDir())
	assert.Equal(t, "/my/repo/root/buck-out/gen/Libraries/Foo/Foo", params.OutputDir())

	flavored := params.WithTarget(params.Target.WithFlavors(FlavorShared, platformLinux))
	assert.Equal(t, "buck-out/gen/Libraries/Foo/Foo#linux-x86_64,shared", flavored.RelativeOutputDir())
	assert.Equal(t, "//Libraries/Foo:Foo", params.Target.String(), "WithTarget should not modify the receiver")

	params.OutputRoot = "out"
	assert.Equal(t, "out/Libraries/Foo/Foo", params.RelativeOutputDir())
}

func TestRuleResolver(t *testing.T) {
	resolver := NewRuleResolver()
	a := &fakeRule{target: NewBuildTarget("//a", "a")}
	b := &fakeRule{target: NewBuildTarget("//b", "b", FlavorShared)}
	require.NoError(t, resolver.AddRule(b))
	require.NoError(t, resolver.AddRule(a))
	assert.Error(t, resolver.AddRule(&fakeRule{target: NewBuildTarget("//a", "a")}))

	rule, ok := resolver.GetRule(NewBuildTarget("//b", "b", FlavorShared))
	assert.True(t, ok)
	assert.Same(t, b, rule)
	_, ok = resolver.GetRule(NewBuildTarget("//b", "b"))
	assert.False(t, ok, "flavors are part of the identity")

	_, err := resolver.RequireRule(NewBuildTarget("//c", "c"))
	assert.Equal(t, ErrNoSuchRule, errors.Cause(err))

	assert.Equal(t, []Rule{a, b}, resolver.Rules())
}

func TestRuleResolverConcurrentAdd(t *testing.T) {
	resolver := NewRuleResolver()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := NewBuildTarget("//lib", fmt.Sprintf("l%02d", i))
			assert.NoError(t, resolver.AddRule(&fakeRule{target: target}))
			_, ok := resolver.GetRule(target)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()
	assert.Len(t, resolver.Rules(), 32)
}

func TestJoinPathes(t *testing.T) {
	assert.Equal(t, "a/b/c", JoinPathes("a", "b/", "./c"))
	assert.Equal(t, "../x", JoinPathes("..", "y/../x"))
	assert.Equal(t, ".", JoinPathes())
}
