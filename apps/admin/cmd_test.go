package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-studio/core/content"
)

func setup(stdin string) (*commandLine, *bytes.Buffer) {
	isTerminalFunc = func(int) bool { return false }
	var out bytes.Buffer
	return &commandLine{
		in:            strings.NewReader(stdin),
		out:           &out,
		defaultFormat: content.FormatLegacy,
		maxPayload:    content.DefaultMaxPayload,
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	stdin      string
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCLITests(t *testing.T, tests []cliTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(tt.stdin)
			err := cli.run(append([]string{"admin"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			case tt.wantErrStr != "":
				assert.EqualError(t, err, tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
			if tt.wantOut != "" {
				assert.Equal(t, tt.wantOut, out.String())
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	runCLITests(t, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "-h", args: []string{"decode", "-h"}, wantErr: errHelp},
		{name: "convert without format", args: []string{"convert"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"decode", "-lol"}, wantErrStr: "flag provided but not defined: -lol"},
	})
}

func Test_commandLine_lang(t *testing.T) {
	runCLITests(t, []cliTest{
		{name: "flag", args: []string{"lang", "-code", "def foo():"}, wantOut: "python\n"},
		{name: "stdin", args: []string{"lang"}, stdin: "#include <stdio.h>\n", wantOut: "cpp\n"},
		{name: "empty stdin", args: []string{"lang"}, wantOut: content.DefaultLanguage + "\n"},
	})

	t.Run("interactive stdin", func(t *testing.T) {
		cli, _ := setup("")
		isTerminalFunc = func(int) bool { return true }
		assert.Equal(t, errHelp, cli.run([]string{"admin", "lang"}))
	})
}

func Test_commandLine_encodeDecode(t *testing.T) {
	blocks := `[{"code":"a","explanation":"x"},{"code":"b","explanation":"y"}]`
	wantCols := `{
  "code": "a\n\n// Next Code Block\n\nb",
  "explanation": "x\n\n<hr />\n\ny",
  "format": "legacy"
}
`
	runCLITests(t, []cliTest{
		{name: "encode legacy", args: []string{"encode"}, stdin: blocks, wantOut: wantCols},
		{name: "encode unknown format", args: []string{"encode", "-format", "xml"}, stdin: blocks, wantErr: content.ErrUnknownFormat},
		{name: "encode bad json", args: []string{"encode"}, stdin: `{`, wantErrStr: "reading blocks: unexpected end of JSON input"},
		{
			name: "decode", args: []string{"decode"}, stdin: `{"code":"SELECT id FROM t","explanation":"query"}`,
			wantOut: "[\n  {\n    \"id\": 0,\n    \"code\": \"SELECT id FROM t\",\n    \"explanation\": \"query\",\n    \"language\": \"sql\"\n  }\n]\n",
		},
		{name: "decode nulls", args: []string{"decode"}, stdin: `{"code":null,"explanation":null}`, wantOut: "[]\n"},
		{name: "decode unsupported version", args: []string{"decode"}, stdin: `{"code":"masomo:blocks:v1:json:eyJ2Ijo5LCJiIjpbXX0"}`, wantErr: content.ErrUnsupportedVersion},
	})
}

func Test_commandLine_fileInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cols.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"code":"x","explanation":"y"}`), 0o600))

	cli, out := setup("")
	isTerminalFunc = func(int) bool { return true } // never read
	require.NoError(t, cli.run([]string{"admin", "decode", "-file", path}))

	var got []content.Block
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Len(t, got, 1)

	assert.Error(t, cli.run([]string{"admin", "decode", "-file", path + ".missing"}))
}

func Test_commandLine_convert(t *testing.T) {
	legacy := `{"code":"npm install katex\n\n// Next Code Block\n\nSELECT 1 FROM dual","explanation":"install\n\n<hr />\n\nquery"}`

	cli, out := setup(legacy)
	require.NoError(t, cli.run([]string{"admin", "convert", "-format", "json", "-verify"}))

	var cols struct {
		Code        string         `json:"code"`
		Explanation string         `json:"explanation"`
		Format      content.Format `json:"format"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &cols))
	assert.Equal(t, content.FormatJSON, cols.Format)
	assert.Empty(t, cols.Explanation)

	blocks, err := content.Read(content.Columns{Code: cols.Code})
	require.NoError(t, err)
	if assert.Len(t, blocks, 2) {
		assert.Equal(t, content.LangBash, blocks[0].Language)
		assert.Equal(t, content.LangSQL, blocks[1].Language)
	}
}

func Test_commandLine_convert_lossy(t *testing.T) {
	// a code separator inside a block cannot be stored in legacy columns
	codec, err := content.NewCodec(content.FormatCBOR)
	require.NoError(t, err)
	structured, err := codec.Encode([]content.Block{
		{Code: "a" + content.CodeSeparator + "b", Explanation: "one", Language: content.LangJavaScript},
	})
	require.NoError(t, err)
	stdin, err := json.Marshal(map[string]string{"code": structured.Code})
	require.NoError(t, err)

	cli, out := setup(string(stdin))
	err = cli.run([]string{"admin", "convert", "-format", "legacy", "-verify"})
	assert.Equal(t, errLossyConversion, err)
	assert.Contains(t, out.String(), "--- stored")
	assert.Contains(t, out.String(), "+++ converted")

	// without -verify the lossy columns are written anyway
	cli, out = setup(string(stdin))
	require.NoError(t, cli.run([]string{"admin", "convert", "-format", "legacy"}))
	assert.Contains(t, out.String(), `"format": "legacy"`)
}
