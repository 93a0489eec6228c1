package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	AccountID int64
	Count     int
	Ids       []int64
}

func TestSerializers(t *testing.T) {
	in := snapshot{AccountID: 42, Count: 3, Ids: []int64{7, 8}}

	for _, s := range []Serializer{NewJSON(), NewMsgPack()} {
		t.Run(s.ContentType(), func(t *testing.T) {
			data, err := s.Serialize(in)
			require.NoError(t, err)

			var out snapshot
			require.NoError(t, s.Deserialize(data, &out))
			assert.Equal(t, in.AccountID, out.AccountID)
			assert.Equal(t, in.Ids, out.Ids)
			assert.Equal(t, in.Count, out.Count)
		})
	}
}

func TestDecodeGarbage(t *testing.T) {
	var out snapshot
	assert.Error(t, Decode([]byte{0xc1}, &out))
}

func TestEncodeDoesNotAliasPool(t *testing.T) {
	a, err := Encode(map[string]any{"k": "first"})
	require.NoError(t, err)
	_, err = Encode(map[string]any{"k": "second-value"})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, Decode(a, &out))
	assert.Equal(t, "first", out["k"])
}
