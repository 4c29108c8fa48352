// Package scaffold creates the files a fresh installation needs:
//
//	config.toml
//	www/
//	|- favicon.ico
//	|- index.md
//	|- style/
//	   |- default.scss
//	   |- font/
//
// Existing files are never touched.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"webserver/internal/common"
)

// DefaultConfig is written when the configuration file is missing
const DefaultConfig = `[server]
address = "127.0.0.1:7878"
threads = 4
www_path = "www/"
err404_path = "404.md"
title = ""

[markdown]
stylesheets = ["default.scss"]
metadata = "metadata.json"

# Multiplexed (yamux) listener, disabled while address is empty
[tunnel]
address = ""
xor_key = ""

# SOCKS5 gateway, disabled while address is empty
[socks]
address = ""
hostname = "site.local"
`

// DefaultIndex is the content of the first page
const DefaultIndex = "Hello World!\n"

// DefaultStylesheet is style/default.scss
const DefaultStylesheet = `$text: #222;
$background: #fdfdfd;
$accent: #1a5fb4;
$width: 46rem;

body {
  max-width: $width;
  margin: 2rem auto;
  padding: 0 1rem;
  font-family: sans-serif;
  line-height: 1.6;
  color: $text;
  background: $background;
}

a {
  color: $accent;
  &:hover { text-decoration: underline; }
}

pre, code {
  font-family: monospace;
  background: darken($background, 5%);
}

table {
  border-collapse: collapse;
  th, td { border: 1px solid darken($background, 20%); padding: .25rem .5rem; }
}
`

// entry is a file to create. Names ending in "/" are directories.
type entry struct {
	name    string
	content string
}

var contentEntries = []entry{
	{"index.md", DefaultIndex},
	{"favicon.ico", ""},
	{"style/default.scss", DefaultStylesheet},
	{"style/font/", ""},
}

// Config writes the default configuration file at path if it is missing.
// It reports whether the file was created.
func Config(path string, log zerolog.Logger) (bool, error) {
	return ensure(path, DefaultConfig, log)
}

// Content creates the missing parts of the content root
func Content(root string, log zerolog.Logger) error {
	for _, e := range contentEntries {
		target := filepath.Join(root, filepath.FromSlash(e.name))
		if strings.HasSuffix(e.name, "/") {
			target += string(filepath.Separator)
		}
		if _, err := ensure(target, e.content, log); err != nil {
			return err
		}
	}
	return nil
}

func ensure(path, content string, log zerolog.Logger) (bool, error) {
	if common.FileExists(path) {
		return false, nil
	}

	if strings.HasSuffix(path, string(filepath.Separator)) {
		if err := os.MkdirAll(path, 0755); err != nil {
			return false, fmt.Errorf("unable to create %s: %w", path, err)
		}
	} else if err := common.SaveBlob(path, []byte(content)); err != nil {
		return false, fmt.Errorf("unable to create %s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("created missing file")
	return true, nil
}
