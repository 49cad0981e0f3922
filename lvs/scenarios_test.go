package lvs_test

import (
	"testing"

	"github.com/named-data/lvs/lvs"
	"github.com/named-data/lvs/ndn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blogSchema = `
#platform: "ndn"/"blog"
#KEY: "KEY"/_/_/_
#root: #platform/#KEY
#admin: #platform/_role/adminID/#KEY & {_role: "admin"} <= #root
#author: #platform/_role/ID/#KEY & {_role: "author", ID: $isValidID()} <= #admin
#user: #platform/_role/ID/#KEY & {_role: "reader"|"author", ID: $isValidID()} <= #admin
#article: #platform/ID/"post"/year/articleID & {year: $isValidYear()} <= #admin | #author
`

func blogUserFns() map[string]lvs.UserFn {
	fns := lvs.DefaultUserFns()
	fns["$isValidID"] = func(comp lvs.Value, args []lvs.ResolvedArg) bool {
		return len(comp.Comp) == 6
	}
	fns["$isValidYear"] = func(comp lvs.Value, args []lvs.ResolvedArg) bool {
		return len(comp.Comp) == 4
	}
	return fns
}

// blogCheckers returns two checkers over the same schema: one freshly
// compiled, one round-tripped through encode/decode — every scenario
// below must pass identically against both.
func blogCheckers(t *testing.T) []*lvs.Checker {
	t.Helper()
	m1, err := lvs.Compile(blogSchema)
	require.NoError(t, err)

	wire, err := lvs.Encode(m1)
	require.NoError(t, err)
	m2, err := lvs.Decode(wire)
	require.NoError(t, err)

	return []*lvs.Checker{
		lvs.NewChecker(m1, blogUserFns()),
		lvs.NewChecker(m2, blogUserFns()),
	}
}

func forEachBlogChecker(t *testing.T, f func(t *testing.T, c *lvs.Checker)) {
	for i, c := range blogCheckers(t) {
		variant := "fresh"
		if i == 1 {
			variant = "roundtrip"
		}
		t.Run(variant, func(t *testing.T) { f(t, c) })
	}
}

func TestScenarioS1AdminSignsSelf(t *testing.T) {
	forEachBlogChecker(t, func(t *testing.T, c *lvs.Checker) {
		ok, err := c.Check(
			ndn.MustParseName("/ndn/blog/admin/000001/KEY/1/root/1"),
			ndn.MustParseName("/ndn/blog/KEY/1/self/1"),
		)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestScenarioS2CaseMismatchOnLiteral(t *testing.T) {
	forEachBlogChecker(t, func(t *testing.T, c *lvs.Checker) {
		ok, err := c.Check(
			ndn.MustParseName("/ndn/blog/admin/000001/key/1/root/1"),
			ndn.MustParseName("/ndn/blog/KEY/1/self/1"),
		)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestScenarioS3AdminNotSignedByAdmin(t *testing.T) {
	forEachBlogChecker(t, func(t *testing.T, c *lvs.Checker) {
		ok, err := c.Check(
			ndn.MustParseName("/ndn/blog/admin/000002/KEY/1/root/1"),
			ndn.MustParseName("/ndn/blog/admin/000001/KEY/1/root/1"),
		)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestScenarioS4AuthorSignedByAdmin(t *testing.T) {
	forEachBlogChecker(t, func(t *testing.T, c *lvs.Checker) {
		ok, err := c.Check(
			ndn.MustParseName("/ndn/blog/author/100001/KEY/1/000001/1"),
			ndn.MustParseName("/ndn/blog/admin/000001/KEY/1/root/1"),
		)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestScenarioS5InvalidIDLength(t *testing.T) {
	forEachBlogChecker(t, func(t *testing.T, c *lvs.Checker) {
		ok, err := c.Check(
			ndn.MustParseName("/ndn/blog/author/1000/KEY/1/000001/1"),
			ndn.MustParseName("/ndn/blog/admin/000001/KEY/1/root/1"),
		)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestScenarioS6ArticleSignedByAuthor(t *testing.T) {
	forEachBlogChecker(t, func(t *testing.T, c *lvs.Checker) {
		ok, err := c.Check(
			ndn.MustParseName("/ndn/blog/100001/post/2022/1"),
			ndn.MustParseName("/ndn/blog/author/100001/KEY/1/000001/1"),
		)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestScenarioS7ArticleIDMismatchBetweenPacketAndKey(t *testing.T) {
	forEachBlogChecker(t, func(t *testing.T, c *lvs.Checker) {
		ok, err := c.Check(
			ndn.MustParseName("/ndn/blog/100001/post/2022/1"),
			ndn.MustParseName("/ndn/blog/author/100002/KEY/1/000001/1"),
		)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestScenarioS8SuggestSkipsReaderPicksAuthor(t *testing.T) {
	forEachBlogChecker(t, func(t *testing.T, c *lvs.Checker) {
		reader := ndn.MustParseName("/ndn/blog/reader/100001/KEY/1/000001/1")
		author := ndn.MustParseName("/ndn/blog/author/100001/KEY/1/000001/1")
		inventory := []lvs.Name{reader, author}

		chosen, ok, err := c.Suggest(ndn.MustParseName("/ndn/blog/100001/post/2022/1"), inventory)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, author.String(), chosen.(ndn.Name).String())
	})
}
