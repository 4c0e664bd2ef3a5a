package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/snmpval"
)

func TestObjectCache_GetUncached(t *testing.T) {
	c := New()
	_, err := c.Get(oid.New(1))
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestObjectCache_SetThenGet(t *testing.T) {
	c := New()
	c.Set(oid.New(1, 1), snmpval.Integer(5))
	v, err := c.Get(oid.New(1, 1))
	require.NoError(t, err)
	assert.Equal(t, snmpval.Integer(5), v)
}

func TestObjectCache_SetNextValue_synthesizesNoSuchObjectWithinGap(t *testing.T) {
	c := New()
	// Assert the successor of .1.1 is .1.5, bound to 10: every OID strictly
	// between them is therefore proven empty.
	c.SetNextValue(oid.New(1, 1), oid.New(1, 5), snmpval.Integer(10))

	v, err := c.Get(oid.New(1, 3))
	require.NoError(t, err)
	assert.True(t, snmpval.IsNoSuchObject(v))

	v, err = c.Get(oid.New(1, 5))
	require.NoError(t, err)
	assert.Equal(t, snmpval.Integer(10), v)

	// Endpoints themselves are not inside the open interval.
	_, err = c.Get(oid.New(1, 1))
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestObjectCache_GetNext_fromInterval(t *testing.T) {
	c := New()
	c.SetNextValue(oid.New(1, 1), oid.New(1, 5), snmpval.Integer(10))

	no, v, err := c.GetNext(oid.New(1, 2))
	require.NoError(t, err)
	assert.True(t, no.Equal(oid.New(1, 5)))
	assert.Equal(t, snmpval.Integer(10), v)

	_, _, err = c.GetNext(oid.New(1, 5))
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestObjectCache_SetEnd_synthesizesEndOfMibView(t *testing.T) {
	c := New()
	c.SetEnd(oid.New(1, 9, 9))

	no, v, err := c.GetNext(oid.New(1, 9, 9))
	require.NoError(t, err)
	assert.True(t, no.Equal(oid.New(1, 9, 9)))
	assert.True(t, snmpval.IsEndOfMibView(v))

	no, v, err = c.GetNext(oid.New(2, 0, 0))
	require.NoError(t, err)
	assert.True(t, snmpval.IsEndOfMibView(v))
	_ = no
}

func TestObjectCache_SetEnd_retainsTighterBound(t *testing.T) {
	c := New()
	c.SetEnd(oid.New(1, 1))
	c.SetEnd(oid.New(1, 5)) // looser bound, must not widen Last

	no, v, err := c.GetNext(oid.New(1, 2))
	require.NoError(t, err, "tighter Last assertion must survive a looser SetEnd")
	assert.True(t, no.Equal(oid.New(1, 2)))
	assert.True(t, snmpval.IsEndOfMibView(v))
}

func TestObjectCache_SetNext_overlapCollapse(t *testing.T) {
	c := New()
	// A wider existing interval already covering the new, narrower
	// assertion must make the narrower one a no-op.
	c.SetNext(oid.New(1), oid.New(10))
	c.SetNext(oid.New(2), oid.New(5))

	v, err := c.Get(oid.New(2))
	require.NoError(t, err)
	assert.True(t, snmpval.IsNoSuchObject(v))
	v, err = c.Get(oid.New(7))
	require.NoError(t, err)
	assert.True(t, snmpval.IsNoSuchObject(v))
}

func TestObjectCache_Invalidate(t *testing.T) {
	c := New()
	c.Set(oid.New(1), snmpval.Integer(1))
	c.Invalidate(oid.New(1))
	_, err := c.Get(oid.New(1))
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestObjectCache_Invalidate_clearsLastWhenAtOrPastIt(t *testing.T) {
	c := New()
	c.SetEnd(oid.New(5))
	c.Invalidate(oid.New(5))
	_, _, err := c.GetNext(oid.New(5))
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestFromPairs(t *testing.T) {
	pairs := []Pair{
		{OID: oid.New(1, 3), Value: snmpval.Integer(3)},
		{OID: oid.New(1, 1), Value: snmpval.Integer(1)},
		{OID: oid.New(1, 5), Value: snmpval.Integer(5)},
	}
	c := FromPairs(pairs)

	v, err := c.Get(oid.New(1, 1))
	require.NoError(t, err)
	assert.Equal(t, snmpval.Integer(1), v)

	no, v, err := c.GetNext(oid.New(1, 1))
	require.NoError(t, err)
	assert.True(t, no.Equal(oid.New(1, 3)))
	assert.Equal(t, snmpval.Integer(3), v)

	no, v, err = c.GetNext(oid.New(1, 5))
	require.NoError(t, err)
	assert.True(t, no.Equal(oid.New(1, 5)))
	assert.True(t, snmpval.IsEndOfMibView(v))
}

func TestFromPairs_empty(t *testing.T) {
	c := FromPairs(nil)
	_, err := c.Get(oid.New(1))
	assert.ErrorIs(t, err, ErrNotCached)
}
