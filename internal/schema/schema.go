// Package schema validates inbound request bodies against closed CUE
// definitions and decodes them into typed payloads.
//
// A payload is accepted only if it is a JSON object with exactly the
// fields of its definition, each holding a concrete value of the declared
// type. The rating domain is part of #RatingRequest, so shape and value
// are checked in a single pass.
package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	"golang.org/x/text/unicode/norm"
)

//go:embed schema.cue
var schemaCUE string

// Kind names a payload definition in schema.cue.
type Kind string

const (
	KindButterfly Kind = "#Butterfly"
	KindUser      Kind = "#User"
	KindRating    Kind = "#RatingRequest"
)

// ButterflyPayload is the body of a butterfly creation request.
type ButterflyPayload struct {
	CommonName string `json:"commonName"`
	Species    string `json:"species"`
	Article    string `json:"article"`
}

// UserPayload is the body of a user creation request.
type UserPayload struct {
	Username string `json:"username"`
}

// RatingPayload is the body of a rating submission.
type RatingPayload struct {
	UserID string `json:"userid"`
	Rating string `json:"rating"`
}

// ValidationError reports a payload that does not match its definition.
type ValidationError struct {
	Kind    Kind
	Path    string // Offending field path, empty for whole-document errors
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid %s: %s: %s", e.Kind, e.Path, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Kind, e.Message)
}

// Validator holds the compiled definitions.
//
// CUE values are not safe for concurrent evaluation, so every check runs
// under mu.
type Validator struct {
	mu   sync.Mutex
	ctx  *cue.Context
	defs map[Kind]cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("schema: compile: %w", err)
	}

	defs := make(map[Kind]cue.Value, 3)
	for _, kind := range []Kind{KindButterfly, KindUser, KindRating} {
		def := root.LookupPath(cue.ParsePath(string(kind)))
		if !def.Exists() {
			return nil, fmt.Errorf("schema: definition %s not found", kind)
		}
		defs[kind] = def
	}

	return &Validator{ctx: ctx, defs: defs}, nil
}

// Butterfly validates and decodes a butterfly creation body.
func (v *Validator) Butterfly(data []byte) (ButterflyPayload, error) {
	var p ButterflyPayload
	if err := v.decode(KindButterfly, data, &p); err != nil {
		return ButterflyPayload{}, err
	}
	p.CommonName = norm.NFC.String(p.CommonName)
	p.Species = norm.NFC.String(p.Species)
	p.Article = norm.NFC.String(p.Article)
	return p, nil
}

// User validates and decodes a user creation body.
func (v *Validator) User(data []byte) (UserPayload, error) {
	var p UserPayload
	if err := v.decode(KindUser, data, &p); err != nil {
		return UserPayload{}, err
	}
	p.Username = norm.NFC.String(p.Username)
	return p, nil
}

// Rating validates and decodes a rating submission body.
func (v *Validator) Rating(data []byte) (RatingPayload, error) {
	var p RatingPayload
	if err := v.decode(KindRating, data, &p); err != nil {
		return RatingPayload{}, err
	}
	return p, nil
}

func (v *Validator) decode(kind Kind, data []byte, out any) error {
	expr, err := cuejson.Extract("body", data)
	if err != nil {
		return &ValidationError{Kind: kind, Message: "malformed JSON"}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	val := v.defs[kind].Unify(v.ctx.BuildExpr(expr))
	if err := val.Validate(cue.Concrete(true)); err != nil {
		return toValidationError(kind, err)
	}
	if err := val.Decode(out); err != nil {
		return toValidationError(kind, err)
	}
	return nil
}

// toValidationError keeps the first CUE error and its field path.
func toValidationError(kind Kind, err error) *ValidationError {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Kind: kind, Message: err.Error()}
	}
	first := errs[0]
	format, args := first.Msg()
	return &ValidationError{
		Kind:    kind,
		Path:    strings.Join(first.Path(), "."),
		Message: fmt.Sprintf(format, args...),
	}
}
