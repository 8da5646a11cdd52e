package prompt

import (
	"context"
	"strings"

	"github.com/dmorgan81/dallestudio/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

// Styles cycles through a fixed list of style presets.
type Styles struct {
	presets []string
}

func NewStyles(i *do.Injector) (*Styles, error) {
	return StylesOf(do.MustInvokeNamed[[]string](i, "styles")...), nil
}

// StylesOf drops blank and duplicate presets, keeping first occurrences.
func StylesOf(presets ...string) *Styles {
	return &Styles{presets: cleanPresets(presets)}
}

func cleanPresets(presets []string) []string {
	presets = lo.Map(presets, func(p string, _ int) string { return strings.TrimSpace(p) })
	return lo.Uniq(lo.Compact(presets))
}

func (s *Styles) Len() int {
	return len(s.presets)
}

// Next returns the preset following current. An unknown or empty current
// style yields the first preset; the last preset wraps around to "".
func (s *Styles) Next(ctx context.Context, current string) string {
	if len(s.presets) == 0 {
		return current
	}
	idx := lo.IndexOf(s.presets, strings.TrimSpace(current))
	next := ""
	if idx+1 < len(s.presets) {
		next = s.presets[idx+1]
	}
	log.FromContextOrDiscard(ctx).WithGroup("styles").Debug("cycling style", "from", current, "to", next)
	return next
}
