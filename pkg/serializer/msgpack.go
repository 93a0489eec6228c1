package serializer

import (
	"bytes"
	"reflect"

	"github.com/hashicorp/go-msgpack/v2/codec"
	"github.com/lk2023060901/xdooria-reward/pkg/pool/bytebuff"
)

// RawToString=true, MapType=map[string]interface{}
var msgpackHandle = &codec.MsgpackHandle{}

func init() {
	msgpackHandle.MapType = reflect.TypeOf(map[string]interface{}{})
	msgpackHandle.RawToString = true
}

// MsgPack msgpack 序列化器
type MsgPack struct{}

// NewMsgPack 创建 msgpack 序列化器
func NewMsgPack() *MsgPack { return &MsgPack{} }

func (s *MsgPack) Serialize(v any) ([]byte, error) { return Encode(v) }

func (s *MsgPack) Deserialize(data []byte, v any) error { return Decode(data, v) }

func (s *MsgPack) ContentType() string { return "application/msgpack" }

// Encode 使用 msgpack 编码数据
func Encode(v any) ([]byte, error) {
	buf := bytebuff.Get()
	defer bytebuff.Put(buf)

	if err := codec.NewEncoder(buf, msgpackHandle).Encode(v); err != nil {
		return nil, err
	}

	// buf 会被回收复用
	result := make([]byte, buf.Len())
	copy(result, buf.B)
	return result, nil
}

// Decode 使用 msgpack 解码数据
func Decode(data []byte, v any) error {
	return codec.NewDecoder(bytes.NewReader(data), msgpackHandle).Decode(v)
}
