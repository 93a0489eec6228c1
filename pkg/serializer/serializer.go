// Package serializer 缓存与消息载荷的编解码
package serializer

import (
	"encoding/json"
)

// Serializer 序列化器接口
type Serializer interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
	// ContentType 内容类型 (用于消息头和日志)
	ContentType() string
}

// JSON JSON 序列化器
type JSON struct{}

// NewJSON 创建 JSON 序列化器
func NewJSON() *JSON { return &JSON{} }

func (s *JSON) Serialize(v any) ([]byte, error) { return json.Marshal(v) }

func (s *JSON) Deserialize(data []byte, v any) error { return json.Unmarshal(data, v) }

func (s *JSON) ContentType() string { return "application/json" }
