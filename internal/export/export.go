// Package export 题目记录的JSON导入导出
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyerfyer/question-bank/internal/extractor"
)

// DefaultIndent 导出文件的默认缩进空格数
const DefaultIndent = 4

// DefaultFileName 未指定输出路径时使用的文件名
const DefaultFileName = "questions.json"

// WriteJSON 将记录写为JSON数组
// 非ASCII字符原样输出，indent小于等于0时输出紧凑格式
func WriteJSON(w io.Writer, records []extractor.Record, indent int) error {
	if records == nil {
		records = []extractor.Record{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return nil
}

// ReadJSON 读取WriteJSON输出的JSON数组
func ReadJSON(r io.Reader) ([]extractor.Record, error) {
	var records []extractor.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	for i := range records {
		if records[i].Options == nil {
			records[i].Options = extractor.NewOptions()
		}
	}
	return records, nil
}

// WriteFile 将记录写入文件，文件已存在时覆盖
func WriteFile(path string, records []extractor.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := WriteJSON(file, records, DefaultIndent); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ReadFile 从文件读取记录
func ReadFile(path string) ([]extractor.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}
	defer file.Close()

	return ReadJSON(file)
}

// DefaultOutputPath 输入文件同目录下的questions.json
func DefaultOutputPath(inputPath string) string {
	return filepath.Join(filepath.Dir(inputPath), DefaultFileName)
}
