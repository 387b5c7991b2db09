package extractor

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// State 状态机状态
type State int

const (
	// StateIdle 没有正在累积的题目内容
	StateIdle State = iota
	// StateQuestion 正在累积题干和选项
	StateQuestion
	// StateAnswer 正在累积答案
	StateAnswer
	// StateExplanation 正在累积解析
	StateExplanation
)

var stateNames = [...]string{"IDLE", "QUESTION", "ANSWER", "EXPLANATION"}

// String 返回状态名称
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "UNKNOWN"
}

// accumulator 当前题目的四类原始行
type accumulator struct {
	question    []string
	options     []string
	answer      []string
	explanation []string
}

// Segmenter 逐行消费文本并切分题目的状态机
// 同一时间最多只有一道正在累积的题目
type Segmenter struct {
	state   State
	section string
	current *accumulator
	records []Record
	logger  *logrus.Logger
	lineNo  int
}

// NewSegmenter 创建状态机，logger为nil时不输出日志
func NewSegmenter(logger *logrus.Logger) *Segmenter {
	return &Segmenter{
		state:   StateIdle,
		section: DefaultSection,
		logger:  logger,
	}
}

// State 返回当前状态
func (s *Segmenter) State() State {
	return s.state
}

// Section 返回当前大题标题
func (s *Segmenter) Section() string {
	return s.section
}

// Feed 处理一行原始文本
func (s *Segmenter) Feed(raw string) {
	s.lineNo++
	line := strings.TrimSpace(raw)

	kind := Classify(line)
	switch kind {
	case Blank:
		return
	case PageNumber, TocEntry:
		s.debug(kind, line, "line discarded")
		return
	case SectionHeader:
		s.finalize()
		s.section = line
		s.state = StateIdle
		s.debug(kind, line, "section changed")
	case QuestionStart:
		s.finalize()
		s.current = &accumulator{question: []string{line}}
		s.state = StateQuestion
	case AnswerMarker:
		s.state = StateAnswer
		if text := stripMarker(line, answerToken); text != "" {
			s.append(kind, line, func(acc *accumulator) { acc.answer = append(acc.answer, text) })
		}
	case ExplanationMarker:
		s.state = StateExplanation
		if text := stripMarker(line, explanationToken); text != "" {
			s.append(kind, line, func(acc *accumulator) { acc.explanation = append(acc.explanation, text) })
		}
	default:
		s.feedContent(line)
	}
}

// feedContent 按当前状态分派普通内容行
func (s *Segmenter) feedContent(line string) {
	switch s.state {
	case StateQuestion:
		if IsOptionStart(line) {
			s.append(OptionStart, line, func(acc *accumulator) { acc.options = append(acc.options, line) })
		} else {
			s.append(Content, line, func(acc *accumulator) { acc.question = append(acc.question, line) })
		}
	case StateAnswer:
		s.append(Content, line, func(acc *accumulator) { acc.answer = append(acc.answer, line) })
	case StateExplanation:
		s.append(Content, line, func(acc *accumulator) { acc.explanation = append(acc.explanation, line) })
	default:
		s.debug(Content, line, "line dropped in idle state")
	}
}

// append 将行写入当前题目，没有打开的题目时丢弃
func (s *Segmenter) append(kind LineKind, line string, write func(*accumulator)) {
	if s.current == nil {
		s.debug(kind, line, "line dropped without open question")
		return
	}
	write(s.current)
}

// finalize 结束当前题目并生成记录
// 只在大题标题、题目起始和输入结束三处调用
func (s *Segmenter) finalize() {
	if s.current == nil {
		return
	}

	record := buildRecord(s.current, s.section)
	s.records = append(s.records, record)
	s.current = nil

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"line":    s.lineNo,
			"type":    record.Type,
			"options": record.Options.Len(),
			"section": s.section,
		}).Debug("Question finalized")
	}
}

// Close 结束输入，返回按文档顺序排列的全部记录
func (s *Segmenter) Close() []Record {
	s.finalize()
	s.state = StateIdle
	records := s.records
	s.records = nil
	if records == nil {
		records = []Record{}
	}
	return records
}

func (s *Segmenter) debug(kind LineKind, line, msg string) {
	if s.logger == nil {
		return
	}
	s.logger.WithFields(logrus.Fields{
		"line":  s.lineNo,
		"kind":  kind.String(),
		"state": s.state.String(),
		"text":  line,
	}).Debug(msg)
}
