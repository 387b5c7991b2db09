package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Options 按首次出现顺序保存的选项映射
// 同一字母重复出现时保留首次位置，内容以最后一次为准
type Options struct {
	letters []string
	content map[string]string
}

// NewOptions 创建空的选项映射
func NewOptions() *Options {
	return &Options{content: make(map[string]string)}
}

// Set 设置选项内容
func (o *Options) Set(letter, text string) {
	if o.content == nil {
		o.content = make(map[string]string)
	}
	if _, ok := o.content[letter]; !ok {
		o.letters = append(o.letters, letter)
	}
	o.content[letter] = text
}

// Get 获取选项内容
func (o *Options) Get(letter string) (string, bool) {
	if o == nil {
		return "", false
	}
	text, ok := o.content[letter]
	return text, ok
}

// Letters 返回按出现顺序排列的选项字母
func (o *Options) Letters() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.letters))
	copy(out, o.letters)
	return out
}

// Len 返回选项数量
func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.letters)
}

// IsEmpty 是否没有任何选项
func (o *Options) IsEmpty() bool {
	return o.Len() == 0
}

// MarshalJSON 按选项顺序输出JSON对象
func (o *Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if o != nil {
		for i, letter := range o.letters {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := marshalNoEscape(letter)
			if err != nil {
				return nil, err
			}
			value, err := marshalNoEscape(o.content[letter])
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 读取JSON对象并保留键的顺序
func (o *Options) UnmarshalJSON(data []byte) error {
	o.letters = nil
	o.content = make(map[string]string)

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("options: expected JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("options: expected string key, got %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("options: invalid value for %q: %w", key, err)
		}
		o.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// marshalNoEscape 序列化字符串且不转义HTML字符
func marshalNoEscape(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
