package ncconf

// SuggestionKind grades an advisory message.
type SuggestionKind uint8

const (
	SuggestInfo SuggestionKind = iota
	SuggestWarning
	SuggestError
)

func (k SuggestionKind) String() string {
	switch k {
	case SuggestWarning:
		return "warning"
	case SuggestError:
		return "error"
	default:
		return "info"
	}
}

// MarshalText renders the kind by name for JSON/YAML reports.
func (k SuggestionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Suggestion is a non-blocking advisory surfaced during import. Remedy and Path
// are optional.
type Suggestion struct {
	Kind    SuggestionKind `json:"kind" yaml:"kind"`
	Message string         `json:"message" yaml:"message"`
	Remedy  string         `json:"remedy,omitempty" yaml:"remedy,omitempty"`
	Path    Path           `json:"path,omitempty" yaml:"path,omitempty"`
}

// Info builds an info-kind suggestion.
func Info(msg, remedy string, p Path) Suggestion {
	return Suggestion{Kind: SuggestInfo, Message: msg, Remedy: remedy, Path: p}
}

// Warning builds a warning-kind suggestion.
func Warning(msg, remedy string, p Path) Suggestion {
	return Suggestion{Kind: SuggestWarning, Message: msg, Remedy: remedy, Path: p}
}

// Failure builds an error-kind suggestion.
func Failure(msg, remedy string, p Path) Suggestion {
	return Suggestion{Kind: SuggestError, Message: msg, Remedy: remedy, Path: p}
}

// CountKind returns how many suggestions have kind k.
func CountKind(ss []Suggestion, k SuggestionKind) int {
	n := 0
	for _, s := range ss {
		if s.Kind == k {
			n++
		}
	}
	return n
}
