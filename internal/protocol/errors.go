package protocol

const (
	// Config rejected by Validate before generation started.
	ErrBadConfig = "E_BAD_CONFIG"
	// Template DSL failed to parse.
	ErrParse = "E_PARSE"
	// Generation or encoding failed server-side.
	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrBadConfig: {},
	ErrParse:     {},
	ErrInternal:  {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
