// Command argon2 hashes a password read from standard input, in the manner of
// the reference Argon2 command-line utility.
//
//	echo -n password | argon2 -id -t 2 -k 19456 somesalt
//	echo -n password | argon2 -verify '$argon2id$v=19$m=19456,t=2,p=1$...'
//
// On a terminal the password is read without echo. Piped input is used as
// is, including any trailing newline.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/hasbyte1/go-argon2/hashing"
)

const (
	defaultTimeCost    = 3
	defaultLogMemory   = 12 // 4 MiB
	defaultParallelism = 1
	defaultLength      = 32
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type config struct {
	variant     hashing.Variant
	version     hashing.Version
	params      hashing.Params
	encodedOnly bool
	rawOnly     bool
	verify      string
	salt        []byte
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, log, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	password, err := readPassword(stdin, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer clear(password)

	if cfg.verify != "" {
		return verify(cfg.verify, password, stdout, stderr, log)
	}
	return hash(cfg, password, stdout, stderr, log)
}

func parseFlags(args []string, stderr io.Writer) (*config, *slog.Logger, error) {
	fs := flag.NewFlagSet("argon2", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: argon2 [-d|-i|-id] [-t iterations] [-m log2(KiB) | -k KiB] [-p parallelism] [-l length] [-v 10|13] [-e|-r] salt")
		fmt.Fprintln(stderr, "       argon2 -verify encoded")
		fmt.Fprintln(stderr, "Password is read from stdin.")
		fs.PrintDefaults()
	}

	var (
		useD, useI, useID bool
		timeCost          uint
		logMemory         uint
		memoryKiB         uint
		parallelism       uint
		length            uint
		version           uint
		cfg               config
		debug             bool
	)
	fs.BoolVar(&useD, "d", false, "use Argon2d")
	fs.BoolVar(&useI, "i", false, "use Argon2i (default)")
	fs.BoolVar(&useID, "id", false, "use Argon2id")
	fs.UintVar(&timeCost, "t", defaultTimeCost, "number of iterations")
	fs.UintVar(&logMemory, "m", defaultLogMemory, "memory usage of 2^N KiB")
	fs.UintVar(&memoryKiB, "k", 0, "memory usage of N KiB (overrides -m)")
	fs.UintVar(&parallelism, "p", defaultParallelism, "parallelism (lanes)")
	fs.UintVar(&length, "l", defaultLength, "hash output length in bytes")
	fs.UintVar(&version, "v", 13, "Argon2 version: 10 or 13")
	fs.BoolVar(&cfg.encodedOnly, "e", false, "output only the encoded hash")
	fs.BoolVar(&cfg.rawOnly, "r", false, "output only the raw hash bytes in hex")
	fs.StringVar(&cfg.verify, "verify", "", "verify the password against an encoded hash")
	fs.BoolVar(&debug, "debug", false, "log debug records to stderr")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if cfg.verify != "" {
		if fs.NArg() != 0 {
			return nil, nil, errors.New("-verify takes no salt argument")
		}
		return &cfg, log, nil
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return nil, nil, errors.New("exactly one salt argument is required")
	}
	cfg.salt = []byte(fs.Arg(0))

	switch {
	case btoi(useD)+btoi(useI)+btoi(useID) > 1:
		return nil, nil, errors.New("only one of -d, -i, -id may be given")
	case useD:
		cfg.variant = hashing.Argon2d
	case useID:
		cfg.variant = hashing.Argon2id
	default:
		cfg.variant = hashing.Argon2i
	}

	switch version {
	case 10:
		cfg.version = hashing.Version10
	case 13:
		cfg.version = hashing.Version13
	default:
		return nil, nil, fmt.Errorf("unknown version %d, use 10 or 13", version)
	}

	if cfg.encodedOnly && cfg.rawOnly {
		return nil, nil, errors.New("-e and -r are mutually exclusive")
	}

	memory := memoryKiB
	if memory == 0 {
		if logMemory >= 32 {
			return nil, nil, fmt.Errorf("-m %d: memory cost too large", logMemory)
		}
		memory = 1 << logMemory
	}
	for name, v := range map[string]uint{"-t": timeCost, "-k": memory, "-p": parallelism, "-l": length} {
		if uint64(v) > uint64(^uint32(0)) {
			return nil, nil, fmt.Errorf("%s %d: value out of range", name, v)
		}
	}
	cfg.params = hashing.Params{
		TimeCost:     uint32(timeCost),
		MemoryCost:   uint32(memory),
		Parallelism:  uint32(parallelism),
		OutputLength: uint32(length),
	}
	return &cfg, log, nil
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

// readPassword reads the password from stdin, without echo when stdin is a
// terminal.
func readPassword(stdin io.Reader, stderr io.Writer) ([]byte, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(stderr, "Password: ")
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(stderr)
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		return pw, nil
	}
	pw, err := io.ReadAll(io.LimitReader(stdin, hashing.MaxPasswordLength))
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}

func hash(cfg *config, password []byte, stdout, stderr io.Writer, log *slog.Logger) int {
	if err := cfg.params.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if len(cfg.salt) < hashing.MinSaltLength {
		fmt.Fprintf(stderr, "Error: %v: %d bytes, minimum is %d\n", hashing.ErrSaltTooShort, len(cfg.salt), hashing.MinSaltLength)
		return 1
	}
	if cfg.params.MemoryCost > hashing.DefaultMemoryCeiling {
		fmt.Fprintf(stderr, "Error: %v: %d KiB, maximum is %d\n", hashing.ErrMemoryAllocation, cfg.params.MemoryCost, hashing.DefaultMemoryCeiling)
		return 1
	}

	start := time.Now()
	key, err := hashing.CorePrimitive{}.Key(cfg.variant, cfg.version, cfg.params, password, cfg.salt, nil)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer clear(key)
	elapsed := time.Since(start)
	log.Debug("argon2 key derived", slog.String("variant", cfg.variant.String()), slog.Duration("elapsed", elapsed))

	phc := hashing.PHC{Variant: cfg.variant, Version: cfg.version, Params: cfg.params, Salt: cfg.salt, Key: key}
	encoded, err := phc.Encode()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	switch {
	case cfg.encodedOnly:
		fmt.Fprintln(stdout, encoded)
		return 0
	case cfg.rawOnly:
		fmt.Fprintln(stdout, hex.EncodeToString(key))
		return 0
	}

	tag := cfg.variant.String()
	fmt.Fprintf(stdout, "Type:\t\t%s\n", strings.ToUpper(tag[:1])+tag[1:])
	fmt.Fprintf(stdout, "Iterations:\t%d\n", cfg.params.TimeCost)
	fmt.Fprintf(stdout, "Memory:\t\t%d KiB\n", cfg.params.MemoryCost)
	fmt.Fprintf(stdout, "Parallelism:\t%d\n", cfg.params.Parallelism)
	fmt.Fprintf(stdout, "Hash:\t\t%s\n", hex.EncodeToString(key))
	fmt.Fprintf(stdout, "Encoded:\t%s\n", encoded)
	fmt.Fprintf(stdout, "%.3f seconds\n", elapsed.Seconds())

	if err := hashing.Compare(encoded, password); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "Verification ok")
	return 0
}

func verify(encoded string, password []byte, stdout, stderr io.Writer, log *slog.Logger) int {
	start := time.Now()
	err := hashing.Compare(encoded, password)
	log.Debug("argon2 verify", slog.Duration("elapsed", time.Since(start)), slog.Int("code", int(hashing.CodeOf(err))))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "Verification ok")
	return 0
}
