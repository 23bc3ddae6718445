package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/heathj/gobrowse/parser"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, data []byte) string {
	path := filepath.Join(t.TempDir(), "in.html")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func newLintParser() *parser.Parser {
	logger, _ := test.NewNullLogger()
	return parser.NewParser(parser.WithMaxErrors(10), parser.WithLogger(logger))
}

func TestLint(t *testing.T) {
	tests := []struct {
		name     string
		opts     cmdopts
		in       []byte
		expected string
		errors   int
	}{
		{
			name:     "clean document",
			opts:     cmdopts{Encoding: "utf-8"},
			in:       []byte("<!DOCTYPE html><title>x</title>"),
			expected: "",
		},
		{
			name:     "reports positions",
			opts:     cmdopts{Encoding: "utf-8"},
			in:       []byte("<!DOCTYPE html>\n<p>\x00"),
			expected: "IN:2:4: unexpected-null-character\nIN:2:5: unexpected-null-character\n",
			errors:   2,
		},
		{
			name:     "dump",
			opts:     cmdopts{Encoding: "utf-8", Dump: true},
			in:       []byte("<!DOCTYPE html>x"),
			expected: "#document\n| <!DOCTYPE html>\n| <html>\n|   <head>\n|   <body>\n|     \"x\"\n",
		},
		{
			name:     "tokens",
			opts:     cmdopts{Encoding: "utf-8", Tokens: true},
			in:       []byte("<a href=x>y"),
			expected: "<a>\n\"y\"\nEOF\n",
		},
		{
			name:     "fragment",
			opts:     cmdopts{Encoding: "utf-8", Fragment: "tr", Render: true},
			in:       []byte("<td>x"),
			expected: "<td>x</td>\n",
		},
		{
			name:     "legacy encoding",
			opts:     cmdopts{Encoding: "windows-1252", Render: true, Fragment: "div"},
			in:       []byte("caf\xe9"),
			expected: "café\n",
		},
		{
			name:     "byte order mark wins",
			opts:     cmdopts{Encoding: "windows-1252", Render: true, Fragment: "div"},
			in:       []byte("\xef\xbb\xbfcaf\xc3\xa9"),
			expected: "café\n",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeInput(t, tt.in)
			var out bytes.Buffer
			n, err := lint(newLintParser(), &tt.opts, path, &out)
			require.NoError(t, err)
			assert.Equal(t, tt.errors, n)
			assert.Equal(t, tt.expected, string(bytes.ReplaceAll(out.Bytes(), []byte(path), []byte("IN"))))
		})
	}
}

func TestLintFailures(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	_, err := lint(newLintParser(), &cmdopts{Encoding: "no-such-encoding"}, writeInput(t, []byte("x")), &out)
	assert.Error(t, err)

	_, err = lint(newLintParser(), &cmdopts{Encoding: "utf-8", Fragment: "1x"}, writeInput(t, []byte("x")), &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrUnresolvableContext)

	_, err = lint(newLintParser(), &cmdopts{Encoding: "utf-8"}, filepath.Join(t.TempDir(), "missing.html"), &out)
	assert.Error(t, err)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, "warning", logLevel(0).String())
	assert.Equal(t, "debug", logLevel(1).String())
	assert.Equal(t, "trace", logLevel(3).String())
}

func TestMainExitStatus(t *testing.T) {
	clean := writeInput(t, []byte("<!DOCTYPE html><title>x</title>"))
	broken := writeInput(t, []byte("<!DOCTYPE html></x>"))
	tests := []struct {
		name string
		argv []string
		want int
	}{
		{"clean", []string{clean}, 0},
		{"parse errors", []string{clean, broken}, 1},
		{"errors not tracked", []string{"--max-errors=0", broken}, 0},
		{"unknown flag", []string{"--no-such-flag", clean}, 2},
		{"bad flag value", []string{"--max-errors=many", clean}, 2},
		{"help", []string{"--help"}, 0},
		{"missing file", []string{filepath.Join(t.TempDir(), "missing.html")}, 2},
		{"bad fragment context", []string{"--fragment=1x", clean}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, _main(tt.argv))
		})
	}
}
