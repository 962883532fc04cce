package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRunRenderWritesPDFAndDebug(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "doc.json")
	record := `{"personalInfo":{"name":"Ada Lovelace","email":"ada@example.com"},
"achievements":[{"id":"a1","title":"First program","description":"Note G"}]}`
	if err := os.WriteFile(in, []byte(record), 0o644); err != nil {
		t.Fatalf("写入输入失败: %v", err)
	}
	out := filepath.Join(dir, "out", "resume.pdf")
	debug := filepath.Join(dir, "fit.json")

	res, err := runRender(in, out, debug)
	if err != nil {
		t.Fatalf("runRender 失败: %v", err)
	}
	if res.Fit.Truncated {
		t.Fatalf("短简历不应被截断")
	}
	pdf, err := os.ReadFile(out)
	if err != nil || !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("PDF 输出无效: %v", err)
	}
	if _, err := os.Stat(debug); err != nil {
		t.Fatalf("调试 JSON 未生成: %v", err)
	}
}

func TestRunRenderDefaultDocument(t *testing.T) {
	out := filepath.Join(t.TempDir(), "resume.pdf")
	if _, err := runRender("", out, ""); err != nil {
		t.Fatalf("默认文档渲染失败: %v", err)
	}
}

func TestRunRenderMissingInput(t *testing.T) {
	if _, err := runRender(filepath.Join(t.TempDir(), "nope.json"), "x.pdf", ""); err == nil {
		t.Fatalf("缺失输入应报错")
	}
}
