package answers

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"

	"github.com/company/ai-scaffold/internal/catalog"
)

// Environment variables consulted by the loader chain.
const (
	EnvContext     = "AI_SCAFFOLD_CONTEXT"
	EnvContextFile = "AI_SCAFFOLD_CONTEXT_FILE"
)

// ErrNotProvided marks a channel that carries no context at all, as opposed
// to one that carries a broken one.
var ErrNotProvided = errors.New("not provided")

// Loader is one channel the feature context can arrive through.
type Loader interface {
	Name() string
	Load() (*Answers, error)
}

// Attempt records why a channel did not yield a context.
type Attempt struct {
	Source string
	Err    error
}

// ContextUnavailableError is returned when no channel yields a context.
type ContextUnavailableError struct {
	Attempts []Attempt
}

func (e *ContextUnavailableError) Error() string {
	var b strings.Builder
	b.WriteString("feature context unavailable")
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  - %s: %v", a.Source, a.Err)
	}
	return b.String()
}

// Chain tries loaders in order.
type Chain []Loader

// Result is the context a chain settled on.
type Result struct {
	Answers *Answers
	Source  string
	// Rejected lists the higher-priority channels that carried a context
	// which failed to load.
	Rejected []Attempt
}

// Load returns the answers from the first loader that succeeds.
func (c Chain) Load() (*Result, error) {
	var attempts []Attempt
	for _, l := range c {
		a, err := l.Load()
		if err == nil {
			res := &Result{Answers: a, Source: l.Name()}
			for _, at := range attempts {
				if !errors.Is(at.Err, ErrNotProvided) {
					res.Rejected = append(res.Rejected, at)
				}
			}
			return res, nil
		}
		attempts = append(attempts, Attempt{Source: l.Name(), Err: err})
	}
	return nil, &ContextUnavailableError{Attempts: attempts}
}

// DefaultChain is the fixed priority order: in-process object, environment
// blob, file named by the environment, side-file at the tree root.
func DefaultChain(cat *catalog.Catalog, obj *Answers, root billy.Basic) Chain {
	return Chain{
		ObjectLoader{Answers: obj},
		EnvBlobLoader{Catalog: cat, Var: EnvContext},
		EnvFileLoader{Catalog: cat, Var: EnvContextFile},
		SiblingFileLoader{FS: root},
	}
}

// ObjectLoader hands back answers already held in process.
type ObjectLoader struct {
	Answers *Answers
}

func (l ObjectLoader) Name() string { return "in-process context" }

func (l ObjectLoader) Load() (*Answers, error) {
	if l.Answers == nil {
		return nil, ErrNotProvided
	}
	return l.Answers.Clone(), nil
}

// EnvBlobLoader parses a JSON or YAML document stored in an environment variable.
type EnvBlobLoader struct {
	Catalog *catalog.Catalog
	Var     string
	Getenv  func(string) string
}

func (l EnvBlobLoader) Name() string { return "$" + l.Var }

func (l EnvBlobLoader) Load() (*Answers, error) {
	blob := getenv(l.Getenv, l.Var)
	if strings.TrimSpace(blob) == "" {
		return nil, ErrNotProvided
	}
	return ParseBlob(l.Catalog, []byte(blob))
}

// EnvFileLoader reads the document from a file whose path is stored in an
// environment variable.
type EnvFileLoader struct {
	Catalog *catalog.Catalog
	Var     string
	Getenv  func(string) string
}

func (l EnvFileLoader) Name() string { return "file named by $" + l.Var }

func (l EnvFileLoader) Load() (*Answers, error) {
	p := getenv(l.Getenv, l.Var)
	if p == "" {
		return nil, ErrNotProvided
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return ParseBlob(l.Catalog, data)
}

// SiblingFileLoader reads the side-file written next to the generated tree.
type SiblingFileLoader struct {
	FS billy.Basic
}

func (l SiblingFileLoader) Name() string { return ContextFile }

func (l SiblingFileLoader) Load() (*Answers, error) {
	if l.FS == nil {
		return nil, ErrNotProvided
	}
	r, err := Load(l.FS)
	if err != nil {
		return nil, err
	}
	return r.Answers, nil
}

func getenv(fn func(string) string, key string) string {
	if fn != nil {
		return fn(key)
	}
	return os.Getenv(key)
}

// ParseBlob decodes a context document. JSON objects are parsed with ojg and
// may wrap the answers in a "cookiecutter" key; anything else is read as YAML.
func ParseBlob(cat *catalog.Catalog, data []byte) (*Answers, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty context document")
	}

	var doc map[string]any
	if trimmed[0] == '{' {
		parsed, err := oj.Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("parsing context JSON: %w", err)
		}
		m, ok := parsed.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("context JSON must be an object")
		}
		doc = m

		x, err := jp.ParseString("$.cookiecutter")
		if err != nil {
			return nil, err
		}
		if inner, ok := x.First(doc).(map[string]any); ok {
			doc = inner
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("parsing context YAML: %w", err)
		}
		if doc == nil {
			return nil, fmt.Errorf("context YAML must be a mapping")
		}
	}

	return FromMap(cat, doc)
}
