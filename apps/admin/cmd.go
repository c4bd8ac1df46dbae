package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/term"

	"github.com/trezcool/masomo-studio/core/content"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp            = errors.New("help provided")
	errLossyConversion = errors.New("conversion does not round-trip")
)

type commandLine struct {
	in            io.Reader
	out           io.Writer
	stdinFd       int
	defaultFormat content.Format
	maxPayload    int
}

type columnsJSON struct {
	Code        *string        `json:"code"`
	Explanation *string        `json:"explanation"`
	Format      content.Format `json:"format,omitempty"`
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  encode [-format FORMAT] [-file PATH]          - join a JSON block list into storage columns")
	fmt.Fprintln(cli.out, "  decode [-file PATH]                           - split JSON storage columns into blocks")
	fmt.Fprintln(cli.out, "  convert -format FORMAT [-verify] [-file PATH] - re-encode JSON storage columns")
	fmt.Fprintln(cli.out, "  lang [-code CODE]                             - guess the language of a code snippet")
	fmt.Fprintln(cli.out, "Input is read from PATH, or from stdin when -file is not set.")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	encodeCmd := cli.newFlagSet("encode")
	encodeFormat := encodeCmd.String("format", string(cli.defaultFormat), "Storage format: "+formatList()+".")
	encodeFile := encodeCmd.String("file", "", "JSON file holding a list of {code, explanation, language} blocks.")

	decodeCmd := cli.newFlagSet("decode")
	decodeFile := decodeCmd.String("file", "", "JSON file holding {code, explanation} columns.")

	convertCmd := cli.newFlagSet("convert")
	convertFormat := convertCmd.String("format", "", "Target storage format: "+formatList()+".")
	convertVerify := convertCmd.Bool("verify", false, "Fail with a diff if the converted columns do not decode to the same blocks.")
	convertFile := convertCmd.String("file", "", "JSON file holding {code, explanation} columns.")

	langCmd := cli.newFlagSet("lang")
	langCode := langCmd.String("code", "", "The code snippet. Read from stdin when empty.")

	switch args[1] {
	case "encode":
		if err := parse(encodeCmd, args[2:]); err != nil {
			return err
		}
		return cli.encode(*encodeFormat, *encodeFile)
	case "decode":
		if err := parse(decodeCmd, args[2:]); err != nil {
			return err
		}
		return cli.decode(*decodeFile)
	case "convert":
		if err := parse(convertCmd, args[2:]); err != nil {
			return err
		}
		if *convertFormat == "" {
			convertCmd.Usage()
			return errHelp
		}
		return cli.convert(*convertFormat, *convertFile, *convertVerify)
	case "lang":
		if err := parse(langCmd, args[2:]); err != nil {
			return err
		}
		code := *langCode
		if code == "" {
			data, err := cli.readInput("")
			if err != nil {
				if err == errHelp {
					langCmd.Usage()
				}
				return err
			}
			code = string(data)
		}
		fmt.Fprintln(cli.out, content.InferLanguage(code))
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

// readInput reads `path`, or stdin when path is empty. An interactive stdin is refused.
func (cli *commandLine) readInput(path string) ([]byte, error) {
	if path != "" {
		return ioutil.ReadFile(path)
	}
	if isTerminalFunc(cli.stdinFd) {
		return nil, errHelp
	}
	return ioutil.ReadAll(cli.in)
}

func (cli *commandLine) readColumns(path string) (content.Columns, error) {
	data, err := cli.readInput(path)
	if err != nil {
		return content.Columns{}, err
	}
	var cj columnsJSON
	if err = json.Unmarshal(data, &cj); err != nil {
		return content.Columns{}, errors.Wrap(err, "reading columns")
	}
	var cols content.Columns
	if cj.Code != nil {
		cols.Code = *cj.Code
	}
	if cj.Explanation != nil {
		cols.Explanation = *cj.Explanation
	}
	return cols, nil
}

func (cli *commandLine) writeJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetEscapeHTML(false) // explanations are HTML
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (cli *commandLine) writeColumns(cols content.Columns) error {
	return cli.writeJSON(columnsJSON{Code: &cols.Code, Explanation: &cols.Explanation, Format: content.Detect(cols)})
}

func (cli *commandLine) codec(format string) (content.Codec, error) {
	f, err := content.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return content.NewCodec(f, content.WithMaxPayload(cli.maxPayload))
}

func (cli *commandLine) encode(format, path string) error {
	codec, err := cli.codec(format)
	if err != nil {
		return err
	}
	data, err := cli.readInput(path)
	if err != nil {
		return err
	}
	var blocks []content.Block
	if err = json.Unmarshal(data, &blocks); err != nil {
		return errors.Wrap(err, "reading blocks")
	}
	cols, err := codec.Encode(blocks)
	if err != nil {
		return err
	}
	return cli.writeColumns(cols)
}

func (cli *commandLine) decode(path string) error {
	cols, err := cli.readColumns(path)
	if err != nil {
		return err
	}
	blocks, err := content.Read(cols, content.WithMaxPayload(cli.maxPayload))
	if err != nil {
		return err
	}
	return cli.writeJSON(blocks)
}

func (cli *commandLine) convert(format, path string, verify bool) error {
	codec, err := cli.codec(format)
	if err != nil {
		return err
	}
	cols, err := cli.readColumns(path)
	if err != nil {
		return err
	}
	blocks, err := codec.Decode(cols)
	if err != nil {
		return err
	}
	converted, err := codec.Encode(blocks)
	if err != nil {
		return err
	}

	if verify {
		after, err := codec.Decode(converted)
		if err != nil {
			return err
		}
		if diff, err := blocksDiff(blocks, after); err != nil {
			return err
		} else if diff != "" {
			fmt.Fprint(cli.out, diff)
			return errLossyConversion
		}
	}
	return cli.writeColumns(converted)
}

// blocksDiff returns a unified diff of the indented JSON of `a` and `b`, or "" if they match.
func blocksDiff(a, b []content.Block) (string, error) {
	aj, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", err
	}
	bj, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", err
	}
	if string(aj) == string(bj) {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(aj) + "\n"),
		B:        difflib.SplitLines(string(bj) + "\n"),
		FromFile: "stored",
		ToFile:   "converted",
		Context:  2,
	})
}

func stdinFd() int {
	return int(os.Stdin.Fd())
}

func formatList() string {
	names := make([]string, 0, len(content.Formats))
	for _, f := range content.Formats {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
