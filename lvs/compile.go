package lvs

import "github.com/pkg/errors"

// Compile runs the full LVS compiler pipeline (C1-C4) over source
// text and returns the immutable compiled model. It fails with a
// *SyntaxError or *SemanticError, wrapped with the stage it came from
// so a caller can still recover the typed error via errors.As while
// logging a message that names where in the pipeline it happened.
func Compile(source string) (*Model, error) {
	file, err := parseSource(source)
	if err != nil {
		return nil, errors.Wrap(err, "lvs: parse")
	}
	resolved, err := resolve(file)
	if err != nil {
		return nil, errors.Wrap(err, "lvs: resolve")
	}
	chains, err := expandRules(resolved)
	if err != nil {
		return nil, errors.Wrap(err, "lvs: expand rules")
	}
	model, err := buildTree(resolved, chains)
	if err != nil {
		return nil, errors.Wrap(err, "lvs: build tree")
	}
	return model, nil
}
