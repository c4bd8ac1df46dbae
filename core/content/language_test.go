package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferLanguage(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{name: "empty", code: "", want: DefaultLanguage},
		{name: "whitespace", code: " \n\t ", want: DefaultLanguage},
		{name: "plain text", code: "hello world", want: DefaultLanguage},
		{name: "python def", code: "def foo():", want: LangPython},
		{name: "python def with body", code: "def add(a, b) -> int:\n    return a + b", want: LangPython},
		{name: "python import", code: "import os\nprint(os.getcwd())", want: LangPython},
		{name: "python from import", code: "from typing import List", want: LangPython},
		{name: "javascript function", code: "function f() { return 1; }", want: LangJavaScript},
		{name: "javascript arrow", code: "const add = (a, b) => a + b;", want: LangJavaScript},
		{name: "es module beats python import", code: "import React from 'react'\nexport default App", want: LangJavaScript},
		{name: "javascript export default", code: "export default function App() {}", want: LangJavaScript},
		{name: "typescript interface", code: "interface User {\n  name: string;\n}", want: LangTypeScript},
		{name: "typescript annotation", code: "function greet(name: string) { return name; }", want: LangTypeScript},
		{name: "java", code: "public class Main {\n  public static void main(String[] args) {}\n}", want: LangJava},
		{name: "java println", code: "System.out.println(\"hi\");", want: LangJava},
		{name: "cpp", code: "#include <iostream>\nint main() { std::cout << 1; }", want: LangCpp},
		{name: "go", code: "package main\n\nfunc main() {\n\tfmt.Println(1)\n}", want: LangGo},
		{name: "go func", code: "func add(a, b int) int { return a + b }", want: LangGo},
		{name: "html", code: "<div class=\"card\">\n  <p>hi</p>\n</div>", want: LangHTML},
		{name: "html doctype", code: "<!DOCTYPE html><html></html>", want: LangHTML},
		{name: "css", code: ".card {\n  color: red;\n}", want: LangCSS},
		{name: "css media", code: "@media (max-width: 600px) { body { margin: 0; } }", want: LangCSS},
		{name: "sql", code: "SELECT id, name FROM users WHERE id = 1;", want: LangSQL},
		{name: "bash shebang", code: "#!/bin/bash\necho hi", want: LangBash},
		{name: "bash npm", code: "npm install --save katex", want: LangBash},
		{name: "markdown image", code: "![graph](https://cdn.test/graph.png)", want: LangMarkdown},
		{name: "invalid utf8", code: string([]byte{0xff, 0xfe}), want: DefaultLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferLanguage(tt.code))
		})
	}
}

func TestInferLanguage_deterministic(t *testing.T) {
	code := "function load() {}\nimport x from 'y'\ndef maybe():"
	first := InferLanguage(code)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, InferLanguage(code))
	}
}

func TestLanguages(t *testing.T) {
	langs := Languages()
	assert.Contains(t, langs, DefaultLanguage)
	for _, l := range langs {
		assert.True(t, IsLanguage(l), l)
	}
	assert.False(t, IsLanguage("cobol"))

	// callers cannot mutate the package list
	langs[0] = "cobol"
	assert.False(t, IsLanguage("cobol"))
}
