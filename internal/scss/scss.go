// Package scss compiles SCSS stylesheets to CSS with libsass
package scss

import (
	"fmt"

	"github.com/bep/golibsass/libsass"
)

// Compiler compiles SCSS source. It is safe for concurrent use: every call
// gets its own libsass context.
type Compiler struct {
	options libsass.Options
}

// NewCompiler returns a compiler producing compressed CSS. Imports are
// resolved against includePaths.
func NewCompiler(includePaths ...string) *Compiler {
	return &Compiler{
		options: libsass.Options{
			IncludePaths: includePaths,
			OutputStyle:  libsass.CompressedStyle,
			Precision:    5,
		},
	}
}

// Compile turns SCSS text into CSS text
func (c *Compiler) Compile(src string) (string, error) {
	transpiler, err := libsass.New(c.options)
	if err != nil {
		return "", fmt.Errorf("scss: %w", err)
	}

	result, err := transpiler.Execute(src)
	if err != nil {
		return "", fmt.Errorf("scss: %w", err)
	}
	return result.CSS, nil
}
