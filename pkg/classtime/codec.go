// Package classtime 课程上课时间的文本编解码。
//
// courses.class_time 以单个文本字段存储有序的上课时间列表，格式（v1）：
//
//	Sunday at 08:30 in 601, Tuesday at 10:00
//
// 条目之间以 ", " 分隔；每个条目为 "<day> at <time>"，有教室时追加 " in <classroom>"。
// 该格式与存量数据保持字节级兼容，因此不引入转义；取而代之的是 Encode 拒绝
// 字段中出现分隔符，保证凡是能写入的值都能被 Decode 原样读回。
package classtime

import (
	"fmt"
	"strings"
)

const (
	entrySep     = ", "
	timeSep      = " at "
	classroomSep = " in "
)

// Entry 单个上课时间条目
type Entry struct {
	Day       string `json:"day"`
	Time      string `json:"time"`
	Classroom string `json:"classroom,omitempty"`
}

// MalformedScheduleError 解码时某个片段不符合格式
type MalformedScheduleError struct {
	Index    int
	Fragment string
}

func (e *MalformedScheduleError) Error() string {
	return fmt.Sprintf("malformed class time at entry %d: %q", e.Index, e.Fragment)
}

// DelimiterError 编码时某个字段包含保留分隔符
type DelimiterError struct {
	Index int
	Field string
	Value string
}

func (e *DelimiterError) Error() string {
	return fmt.Sprintf("class time entry %d: %s %q contains a reserved delimiter", e.Index, e.Field, e.Value)
}

// Encode 将上课时间列表编码为存储文本
// day 与 time 为必填；空列表编码为空串
func Encode(entries []Entry) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(entries))
	for i, e := range entries {
		day := strings.TrimSpace(e.Day)
		tm := strings.TrimSpace(e.Time)
		room := strings.TrimSpace(e.Classroom)

		if day == "" || tm == "" {
			return "", &MalformedScheduleError{Index: i, Fragment: day + timeSep + tm}
		}
		s := day + timeSep + tm
		if room != "" {
			s += classroomSep + room
		}
		// 单条目必须能被无歧义地读回
		if strings.Contains(s, entrySep) || !roundTrips(s, Entry{Day: day, Time: tm, Classroom: room}) {
			field, value := offendingField(day, tm, room)
			return "", &DelimiterError{Index: i, Field: field, Value: value}
		}
		parts = append(parts, s)
	}

	return strings.Join(parts, entrySep), nil
}

// Decode 将存储文本解码为上课时间列表
// 片段含 " in " 时按最右侧一次出现切出教室，剩余部分按第一个 " at " 切出星期与时间
func Decode(s string) ([]Entry, error) {
	if strings.TrimSpace(s) == "" {
		return []Entry{}, nil
	}

	fragments := strings.Split(s, entrySep)
	entries := make([]Entry, 0, len(fragments))
	for i, frag := range fragments {
		timePart := frag
		room := ""
		if idx := strings.LastIndex(frag, classroomSep); idx >= 0 {
			timePart = frag[:idx]
			room = strings.TrimSpace(frag[idx+len(classroomSep):])
		}

		day, tm, ok := strings.Cut(timePart, timeSep)
		day = strings.TrimSpace(day)
		tm = strings.TrimSpace(tm)
		if !ok || day == "" || tm == "" {
			return nil, &MalformedScheduleError{Index: i, Fragment: frag}
		}

		entries = append(entries, Entry{Day: day, Time: tm, Classroom: room})
	}

	return entries, nil
}

// DecodeLenient 尽力解码：格式错误的片段被跳过，返回成功解析的条目
// 用于读路径展示历史数据，写路径必须使用 Decode
func DecodeLenient(s string) []Entry {
	if strings.TrimSpace(s) == "" {
		return []Entry{}
	}
	var entries []Entry
	for _, frag := range strings.Split(s, entrySep) {
		decoded, err := Decode(frag)
		if err != nil {
			continue
		}
		entries = append(entries, decoded...)
	}
	if entries == nil {
		return []Entry{}
	}
	return entries
}

func roundTrips(s string, want Entry) bool {
	got, err := Decode(s)
	return err == nil && len(got) == 1 && got[0] == want
}

func offendingField(day, tm, room string) (string, string) {
	for _, f := range []struct{ name, value string }{
		{"day", day}, {"time", tm}, {"classroom", room},
	} {
		for _, d := range []string{",", " at", "at ", " in", "in "} {
			if strings.Contains(f.value, d) {
				return f.name, f.value
			}
		}
	}
	return "day", day
}
