package format

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// Profile is a named, YAML-loadable Options preset, following the
// repo's usual Config/Profile struct-with-yaml-tags pattern.
type Profile struct {
	Name             string `yaml:"name"`
	KeywordCase      string `yaml:"keyword_case"`
	IdentifierEscape string `yaml:"identifier_escape"`
	ParameterSymbol  string `yaml:"parameter_symbol"`
	ParameterStyle   string `yaml:"parameter_style"`
	IndentSize       int    `yaml:"indent_size"`
	CommaBreak       string `yaml:"comma_break"`
	AndBreak         string `yaml:"and_break"`
	OrBreak          string `yaml:"or_break"`
	WithClauseStyle  string `yaml:"with_clause_style"`
	CommentStyle     string `yaml:"comment_style"`
	ExportComment    *bool  `yaml:"export_comment"`
}

// LoadProfile parses a YAML document into a Profile.
func LoadProfile(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("format: parse profile: %w", err)
	}
	return p, nil
}

// Options converts the profile into a full Options value layered over
// Default(), so an omitted YAML field keeps its default behavior.
func (p Profile) Options() (Options, error) {
	o := Default()

	switch p.KeywordCase {
	case "", "lower":
		o.KeywordCase = KeywordLower
	case "upper":
		o.KeywordCase = KeywordUpper
	case "preserve":
		o.KeywordCase = KeywordPreserve
	default:
		return o, fmt.Errorf("format: unknown keyword_case %q", p.KeywordCase)
	}

	switch p.IdentifierEscape {
	case "":
		// keep default
	case "double-quote":
		o.IdentifierEscape = EscapeDoubleQuote
	case "backtick":
		o.IdentifierEscape = EscapeBacktick
	case "bracket":
		o.IdentifierEscape = EscapeBracket
	case "none":
		o.IdentifierEscape = EscapeNone
	default:
		return o, fmt.Errorf("format: unknown identifier_escape %q", p.IdentifierEscape)
	}

	if p.ParameterSymbol != "" {
		o.ParameterSymbol = p.ParameterSymbol
	}
	switch p.ParameterStyle {
	case "", "named":
		o.ParameterStyle = ParamStyleNamed
	case "indexed":
		o.ParameterStyle = ParamStyleIndexed
	case "anonymous":
		o.ParameterStyle = ParamStyleAnonymous
	default:
		return o, fmt.Errorf("format: unknown parameter_style %q", p.ParameterStyle)
	}

	if p.IndentSize > 0 {
		o.IndentSize = p.IndentSize
	}

	breakVal := func(s string) (Break, error) {
		switch s {
		case "", "none":
			return BreakNone, nil
		case "before":
			return BreakBefore, nil
		case "after":
			return BreakAfter, nil
		default:
			return BreakNone, fmt.Errorf("format: unknown break %q", s)
		}
	}
	var err error
	if o.CommaBreak, err = breakVal(p.CommaBreak); err != nil {
		return o, err
	}
	if o.AndBreak, err = breakVal(p.AndBreak); err != nil {
		return o, err
	}
	if o.OrBreak, err = breakVal(p.OrBreak); err != nil {
		return o, err
	}

	switch p.WithClauseStyle {
	case "", "standard":
		o.WithClauseStyle = WithStandard
	case "cte-oneline":
		o.WithClauseStyle = WithCTEOneline
	case "full-oneline":
		o.WithClauseStyle = WithFullOneline
	default:
		return o, fmt.Errorf("format: unknown with_clause_style %q", p.WithClauseStyle)
	}

	switch p.CommentStyle {
	case "", "block":
		o.CommentStyle = CommentBlock
	case "smart":
		o.CommentStyle = CommentSmart
	default:
		return o, fmt.Errorf("format: unknown comment_style %q", p.CommentStyle)
	}

	if p.ExportComment != nil {
		o.ExportComment = *p.ExportComment
	}

	return o, nil
}
