package classifier

import (
	"fmt"
	"strconv"
	"strings"

	"filesort/internal/services"
)

// Kind identifies a classification provider.
type Kind string

const (
	KindClaude Kind = "claude"
	KindOpenAI Kind = "openai"
	KindGroq   Kind = "groq"
)

// Kinds lists the providers in legacy index order.
func Kinds() []Kind {
	return []Kind{KindClaude, KindOpenAI, KindGroq}
}

func (k Kind) String() string { return string(k) }

// ParseKind accepts a provider name or its legacy numeric index (0 claude,
// 1 openai, 2 groq).
func ParseKind(value string) (Kind, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if idx, err := strconv.Atoi(trimmed); err == nil {
		kinds := Kinds()
		if idx >= 0 && idx < len(kinds) {
			return kinds[idx], nil
		}
		return "", services.Wrap(services.ErrConfiguration, "classifier", "parse provider", fmt.Sprintf("provider index %d out of range", idx), nil)
	}
	for _, kind := range Kinds() {
		if trimmed == string(kind) {
			return kind, nil
		}
	}
	return "", services.Wrap(services.ErrConfiguration, "classifier", "parse provider", fmt.Sprintf("unsupported provider %q", value), nil)
}
