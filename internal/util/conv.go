package util

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// FlexBool 宽松布尔参数：接受 true/false、1/0、"1"/"0"、"true"/"false"。
// 区分"未提供"与"提供了 false"，权限覆盖请求依赖这一区别
type FlexBool struct {
	Set   bool
	Value bool
}

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		b.Set, b.Value = true, v
		return nil
	}
	switch {
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("1")):
		b.Set, b.Value = true, true
	case bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte("0")):
		b.Set, b.Value = true, false
	default:
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		b.Set, b.Value = true, v
	}
	return nil
}

// Ptr 返回值指针，未提供时为 nil
func (b *FlexBool) Ptr() *bool {
	if !b.Set {
		return nil
	}
	v := b.Value
	return &v
}
