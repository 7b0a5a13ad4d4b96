package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortPrice, ParseSort("price"))
	assert.Equal(t, SortNewest, ParseSort("newest"))
	assert.Equal(t, SortNewest, ParseSort(""))
	assert.Equal(t, SortNewest, ParseSort("PRICE; DROP TABLE"))
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "price ASC, id ASC", SortPrice.orderBy())
	assert.Equal(t, "date_listed DESC, id DESC", SortNewest.orderBy())
	assert.Equal(t, "date_listed DESC, id DESC", Sort("bogus").orderBy())
}
