// Package logging 构建全局使用的 logrus 记录器。
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New 按级别与格式创建记录器；format 为 json 时输出 JSON，否则输出带完整时间戳的文本。
// 无法识别的级别回退到 info。
func New(level, format string) *logrus.Logger {
	return NewWithOutput(os.Stderr, level, format)
}

func NewWithOutput(w io.Writer, level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// Component 返回带 comp 字段的子记录器。
func Component(l *logrus.Logger, name string) *logrus.Entry {
	return l.WithField("comp", name)
}

// Discard 返回丢弃所有输出的记录器，测试与 CLI 静默模式使用。
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
