package status

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTag(t *testing.T) {
	for _, tag := range AllTags() {
		got, err := ParseTag(string(tag))
		require.NoError(t, err)
		assert.Equal(t, tag, got)
	}

	got, err := ParseTag("faltan examenes")
	require.NoError(t, err)
	assert.Equal(t, FaltanNotas, got)

	got, err = ParseTag(" no REGULARIZADA ")
	require.NoError(t, err)
	assert.Equal(t, NoRegularizada, got)

	_, err = ParseTag("Cursando")
	assert.Error(t, err)
}

func TestTagTiers(t *testing.T) {
	assert.True(t, Promocionada.Approved())
	assert.True(t, Aprobada.Approved())
	assert.False(t, Regularizada.Approved())

	assert.True(t, Regularizada.Regularized())
	assert.True(t, Aprobada.Regularized())
	assert.False(t, Desaprobada.Regularized())

	assert.True(t, Desaprobada.Terminal())
	assert.False(t, FaltanNotas.Terminal())
	assert.False(t, NoRegularizada.Terminal())
	assert.False(t, Tag("").Valid())
}

func TestTag_UnmarshalText(t *testing.T) {
	var doc struct {
		Status Tag `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"Faltan examenes"}`), &doc))
	assert.Equal(t, FaltanNotas, doc.Status)
	require.NoError(t, json.Unmarshal([]byte(`{"status":"Libre"}`), &doc))
	assert.Equal(t, Tag("Libre"), doc.Status)
	assert.False(t, doc.Status.Valid())
}
