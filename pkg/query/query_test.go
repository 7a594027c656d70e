// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	assert.Equal(t, "%dune%", Contains("dune"))
	assert.Equal(t, `%100\%\_off\\%`, Contains(`100%_off\`))
}

func TestOptionalInt(t *testing.T) {
	values := url.Values{"year": {"1984"}, "bad": {"x"}, "blank": {" "}}

	year, err := OptionalInt(values, "year")
	require.NoError(t, err)
	require.NotNil(t, year)
	assert.Equal(t, 1984, *year)

	missing, err := OptionalInt(values, "missing")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	blank, err := OptionalInt(values, "blank")
	assert.NoError(t, err)
	assert.Nil(t, blank)

	_, err = OptionalInt(values, "bad")
	assert.Error(t, err)
}
