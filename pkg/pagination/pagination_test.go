package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	p := Params{}.Normalize(12)
	require.Equal(t, Params{Page: 1, Limit: 12}, p)

	p = Params{Page: 3, Limit: 500}.Normalize(12)
	require.Equal(t, Params{Page: 3, Limit: MaxLimit}, p)
	require.Equal(t, 200, p.Offset())
}

func TestResultPages(t *testing.T) {
	require.Equal(t, Page{Page: 1, Limit: 10, Total: 21, Pages: 3}, Params{Page: 1, Limit: 10}.Result(21))
	require.Equal(t, 0, Params{Page: 1, Limit: 10}.Result(0).Pages)
}

func TestFromQuery(t *testing.T) {
	q := url.Values{"page": {"2"}, "limit": {"abc"}}
	require.Equal(t, Params{Page: 2, Limit: DefaultLimit}, FromQuery(q, 0))
}
