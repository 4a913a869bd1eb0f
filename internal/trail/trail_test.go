package trail

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Trail {
	return Trail{
		ID:          "t1",
		Name:        "Coastline",
		PointIDs:    []string{"a", "b", "c"},
		Description: "salt and wind",
		CreatedAt:   time.UnixMilli(1700000000123).UTC(),
	}
}

func TestJSONShape(t *testing.T) {
	b, err := json.Marshal(sample())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"t1","name":"Coastline","pointIds":["a","b","c"],"description":"salt and wind","createdAt":1700000000123}`, string(b))

	noDesc := sample()
	noDesc.Description = ""
	b, err = json.Marshal(noDesc)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "description")
}

func TestJSONRoundTrip(t *testing.T) {
	in := sample()
	b, err := json.Marshal(in)
	require.NoError(t, err)
	var out Trail
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, in.Equal(out))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, sample().Validate())

	bad := sample()
	bad.Name = " "
	assert.ErrorIs(t, bad.Validate(), ErrEmptyName)

	bad = sample()
	bad.PointIDs = []string{"a"}
	assert.ErrorIs(t, bad.Validate(), ErrTooFewPoints)

	edge := sample()
	edge.Name = strings.Repeat("é", MaxNameLen)
	edge.PointIDs = make([]string, MaxPoints)
	for i := range edge.PointIDs {
		edge.PointIDs[i] = strings.Repeat("p", MaxPointIDLen)
	}
	assert.NoError(t, edge.Validate())

	bad = edge.Clone()
	bad.Name += "é"
	assert.ErrorIs(t, bad.Validate(), ErrNameTooLong)

	bad = edge.Clone()
	bad.PointIDs = append(bad.PointIDs, "p")
	assert.ErrorIs(t, bad.Validate(), ErrTooManyPoints)

	bad = edge.Clone()
	bad.PointIDs[3] += "p"
	assert.ErrorIs(t, bad.Validate(), ErrBadPointID)

	bad = sample()
	bad.PointIDs[1] = ""
	assert.ErrorIs(t, bad.Validate(), ErrBadPointID)
}

func TestEditApply(t *testing.T) {
	out, err := Edit{Name: " Renamed ", Description: " "}.Apply(sample())
	require.NoError(t, err)
	assert.Equal(t, "Renamed", out.Name)
	assert.Empty(t, out.Description)
	assert.Equal(t, sample().PointIDs, out.PointIDs)

	_, err = Edit{Name: ""}.Apply(sample())
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = Edit{Name: strings.Repeat("n", MaxNameLen+1)}.Apply(sample())
	assert.ErrorIs(t, err, ErrNameTooLong)
}

func TestEqual(t *testing.T) {
	a := sample()
	b := a.Clone()
	assert.True(t, a.Equal(b))
	b.PointIDs[0] = "x"
	assert.False(t, a.Equal(b))
	assert.Equal(t, "a", a.PointIDs[0])
}

func TestCopy(t *testing.T) {
	at := time.UnixMilli(1720000000000)
	c := sample().Copy("other", at)
	assert.Equal(t, "other", c.ID)
	assert.True(t, c.CreatedAt.Equal(at))
	assert.False(t, c.Equal(sample()))
	assert.True(t, c.SameShape(sample()))

	c.PointIDs[0] = "x"
	assert.Equal(t, "a", sample().PointIDs[0])
	assert.False(t, c.SameShape(sample()))
}

func TestNewID(t *testing.T) {
	id := NewID()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, id, NewID())
}

func TestDefaultName(t *testing.T) {
	assert.Equal(t, "Constellation-09:05", DefaultName(time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC)))
}
