package extractor

import (
	"regexp"
	"strings"
)

// 选项标记只能出现在字符串开头或空白之后，避免匹配单词内部的字母
const markerPrefix = `(?:^|` + space + `)`

var (
	firstOptionPattern = regexp.MustCompile(markerPrefix + `A[.、]`)
	optionMarkerRegexp = regexp.MustCompile(markerPrefix + `([A-Z])[.、]`)
)

// SplitFields 在拼接后的题干文本中定位第一个"A."/"A、"标记
// 返回标记之前的题干和从标记开始的原始选项段，找不到标记时选项段为空
func SplitFields(joined string) (body, optionsSegment string) {
	loc := firstOptionPattern.FindStringIndex(joined)
	if loc == nil {
		return strings.TrimSpace(joined), ""
	}

	// 匹配包含了前导空白时跳过它
	start := loc[1] - len("A.")
	if strings.HasSuffix(joined[loc[0]:loc[1]], "、") {
		start = loc[1] - len("A、")
	}

	return strings.TrimSpace(joined[:start]), joined[start:]
}

// ParseOptions 将原始选项段解析为有序的字母到内容映射
// 每个选项的内容从当前标记结束处延伸到下一个标记开始处
func ParseOptions(segment string) *Options {
	opts := NewOptions()

	matches := optionMarkerRegexp.FindAllStringSubmatchIndex(segment, -1)
	if len(matches) == 0 {
		return opts
	}

	for i, m := range matches {
		letter := segment[m[2]:m[3]]
		start := m[1]
		end := len(segment)
		if i < len(matches)-1 {
			end = matches[i+1][0]
		}
		opts.Set(letter, strings.TrimSpace(segment[start:end]))
	}

	return opts
}

// joinLines 用单个空格拼接多行文本
func joinLines(lines ...[]string) string {
	var all []string
	for _, group := range lines {
		all = append(all, group...)
	}
	return strings.Join(all, " ")
}
