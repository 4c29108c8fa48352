package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
)

// Flags are the command line options
type Flags struct {
	Verbosity  string
	Silent     bool
	ConfigPath string
}

// ParseFlags parses args (without the program name)
func ParseFlags(name string, args []string, output io.Writer) (*Flags, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	f := &Flags{}
	fs.StringVar(&f.Verbosity, "v", "", fmt.Sprintf(
		"verbosity level: 1 = errors, 2 = +warnings, 3 = +info, 4 = +debug (default %d)", DefaultVerbosity))
	fs.BoolVar(&f.Silent, "s", false, "silent mode, takes priority over -v")
	fs.StringVar(&f.ConfigPath, "c", DefaultConfigPath, "path of the configuration file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return f, nil
}

// Level returns the requested verbosity. ok is false when -v held a value
// that is not a level, in which case the default is returned.
func (f *Flags) Level() (v Verbosity, ok bool) {
	if f.Silent {
		return VerbositySilent, true
	}
	if f.Verbosity == "" {
		return DefaultVerbosity, true
	}
	n, err := strconv.Atoi(f.Verbosity)
	if err != nil || n < int(VerbosityError) || n > int(VerbosityDebug) {
		return DefaultVerbosity, false
	}
	return Verbosity(n), true
}

// Resolve loads the configuration file named by the flags and applies the
// command line verbosity on top of it
func Resolve(f *Flags) (Config, error) {
	path := f.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	cfg, err := Load(path)
	if err != nil {
		return Config{}, err
	}
	cfg.Verbosity, _ = f.Level()
	return cfg, nil
}
